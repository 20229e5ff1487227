// Package photo defines the library data model shared by the grid engine:
// sections, photos, photo details and view filters.
//
// A Section's photo list is either absent (not loaded) or complete. Sections
// carry a Revision that increases with every change, which lets layout caches
// detect in-place content changes without comparing photo data.
package photo

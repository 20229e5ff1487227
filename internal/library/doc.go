// Package library hosts one photo grid: it owns the application store, the
// layout engine, the section lifecycle manager and the thumbnail scheduler,
// and exposes the operations an outer surface (HTTP, CLI) drives them with.
//
// Layout is pulled: callers report the viewport with UpdateViewport and read
// the resulting grid layout. Store changes (a section fetch completing, a
// master size being repaired) trigger a background pass with the last known
// viewport so that the published snapshot, and with it thumbnail priorities,
// stays current.
package library

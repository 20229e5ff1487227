// Package layout turns the section list and the viewport into pixel geometry
// for the justified photo grid.
//
// An Engine keeps the result of its previous pass and reuses every section
// layout whose inputs did not change, so calling GetGridLayout on each
// scroll event only recomputes visible box ranges and section offsets.
// Geometry of sections that scrolled away is kept; only the range of boxes
// to materialise is cleared.
//
// Published layouts are immutable. A pass that changes nothing returns the
// previous *GridLayout so callers can skip rendering by pointer comparison.
//
// Each pass also yields a lifecycle.Plan of evictions and fetches. The
// caller applies it after committing the layout.
package layout

// Package store holds the application state the grid engine reads and
// mutates: the section list with its loaded photo data, the selection, the
// info panel, the detail view and the export dialog.
//
// State changes go through Dispatch with an Action; Reduce computes the next
// state without modifying the previous one, so a State obtained from
// GetState can be read from any goroutine.
package store

package handlers

import (
	"context"
	"time"

	"photo-grid/internal/library"
	"photo-grid/internal/photo"
)

// TagStore reads and writes photo tags.
type TagStore interface {
	ListTags(ctx context.Context) ([]string, error)
	TagPhoto(ctx context.Context, id photo.PhotoID, name string) error
}

// Handlers serves one grid.
type Handlers struct {
	grid      *library.Controller
	tags      TagStore
	startTime time.Time
}

// New creates the handlers for grid. tags may be nil, which disables the
// tag endpoints.
func New(grid *library.Controller, tags TagStore) *Handlers {
	return &Handlers{
		grid:      grid,
		tags:      tags,
		startTime: time.Now(),
	}
}

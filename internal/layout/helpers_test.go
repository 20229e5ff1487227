package layout

import (
	"context"

	"photo-grid/internal/photo"
	"photo-grid/internal/store"
)

// countingStore is a read-only store for planners used in layout tests.
type countingStore struct {
	reads int
}

func (s *countingStore) GetState() store.State {
	s.reads++
	return store.NewState()
}

func (s *countingStore) Dispatch(store.Action) {}

// failingSource fails every section fetch with err.
type failingSource struct {
	err error
}

func (s *failingSource) FetchSectionPhotos(context.Context, photo.SectionID, photo.Filter) ([]*photo.Photo, error) {
	return nil, s.err
}

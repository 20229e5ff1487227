package store

import (
	"photo-grid/internal/photo"
)

// Selection is the set of photos selected in the grid. All selected photos
// belong to one section.
type Selection struct {
	SectionID photo.SectionID `json:"sectionId,omitempty"`
	PhotoIDs  []photo.PhotoID `json:"photoIds,omitempty"`
}

// InfoState describes the photo shown in the info panel.
type InfoState struct {
	SectionID photo.SectionID    `json:"sectionId"`
	PhotoID   photo.PhotoID      `json:"photoId"`
	Detail    *photo.PhotoDetail `json:"detail,omitempty"`
	Loading   bool               `json:"loading"`
	Err       string             `json:"error,omitempty"`
}

// DetailState is the photo open in the full-size detail view.
type DetailState struct {
	SectionID photo.SectionID `json:"sectionId"`
	PhotoID   photo.PhotoID   `json:"photoId"`
}

// ExportState is an open export dialog.
type ExportState struct {
	SectionID photo.SectionID `json:"sectionId"`
	PhotoIDs  []photo.PhotoID `json:"photoIds"`
}

// FetchFailure records the most recent failed section fetch.
type FetchFailure struct {
	SectionID photo.SectionID `json:"sectionId"`
	Err       string          `json:"error"`
}

// State is the application state snapshot. A State must not be modified
// after it was returned from a Store; reducers return modified copies.
type State struct {
	SectionIDs   []photo.SectionID
	SectionsByID map[photo.SectionID]*photo.Section
	Filter       photo.Filter
	Selection    Selection
	Info         *InfoState
	Detail       *DetailState
	Export       *ExportState
	LastFailure  *FetchFailure
	Version      uint64
}

// NewState returns an empty state using the default filter.
func NewState() State {
	return State{
		SectionsByID: map[photo.SectionID]*photo.Section{},
		Filter:       photo.DefaultFilter(),
	}
}

// Section returns the section with the given id, or nil.
func (s State) Section(id photo.SectionID) *photo.Section {
	return s.SectionsByID[id]
}

// Loaded returns the number of sections whose photos are resident and the
// number of photos they hold.
func (s State) Loaded() (sections, photos int) {
	for _, sec := range s.SectionsByID {
		if sec.IsLoaded() {
			sections++
			photos += len(sec.PhotoIDs)
		}
	}
	return sections, photos
}

// ProtectedSections returns the sections that must stay loaded regardless of
// scroll position: the selection, the info photo, the detail photo and the
// export dialog.
func (s State) ProtectedSections() map[photo.SectionID]bool {
	protected := map[photo.SectionID]bool{}
	if s.Selection.SectionID != "" {
		protected[s.Selection.SectionID] = true
	}
	if s.Info != nil && s.Info.SectionID != "" {
		protected[s.Info.SectionID] = true
	}
	if s.Detail != nil {
		protected[s.Detail.SectionID] = true
	}
	if s.Export != nil {
		protected[s.Export.SectionID] = true
	}
	return protected
}

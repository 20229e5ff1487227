package layout

import (
	"photo-grid/internal/justified"
	"photo-grid/internal/photo"
)

// NoBoxIndex marks a section whose boxes are not materialised.
const NoBoxIndex = -1

// Viewport describes the scroll container.
type Viewport struct {
	ScrollTop float64 `json:"scrollTop"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	RowHeight float64 `json:"rowHeight"`
	// Nailed pins NailedSectionIndex to the viewport, e.g. for the
	// single-photo view.
	Nailed             bool `json:"nailed,omitempty"`
	NailedSectionIndex int  `json:"nailedSectionIndex,omitempty"`
}

// SectionLayout is the geometry of one section. SectionTop is the offset of
// the section header; box coordinates are relative to the content below it.
type SectionLayout struct {
	SectionTop      float64         `json:"sectionTop"`
	ContainerHeight float64         `json:"containerHeight"`
	Boxes           []justified.Box `json:"boxes,omitempty"`
	FromBoxIndex    int             `json:"fromBoxIndex"`
	ToBoxIndex      int             `json:"toBoxIndex"`
	// Placeholder is set when the geometry was estimated because the
	// section's photos are not loaded.
	Placeholder bool `json:"placeholder"`
}

// HasRange reports whether some boxes of the section are materialised.
func (sl *SectionLayout) HasRange() bool {
	return sl.FromBoxIndex != NoBoxIndex && sl.ToBoxIndex != NoBoxIndex
}

func (sl *SectionLayout) clone() *SectionLayout {
	c := *sl
	return &c
}

// GridLayout is the result of a layout pass. Sections in
// [FromSectionIndex, ToSectionIndex) are materialised.
type GridLayout struct {
	FromSectionIndex int              `json:"fromSectionIndex"`
	ToSectionIndex   int              `json:"toSectionIndex"`
	SectionLayouts   []*SectionLayout `json:"sectionLayouts"`
}

// Snapshot is the published state of the latest pass, readable from other
// goroutines.
type Snapshot struct {
	SectionIDs  []photo.SectionID
	Sections    map[photo.SectionID]*photo.Section
	Layout      *GridLayout
	Viewport    Viewport
	ViewportTop float64
	HeadHeight  float64

	index map[photo.SectionID]int
}

func newSnapshot(ids []photo.SectionID, sections map[photo.SectionID]*photo.Section, gl *GridLayout, vp Viewport, viewportTop, headHeight float64) *Snapshot {
	index := make(map[photo.SectionID]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	return &Snapshot{
		SectionIDs:  ids,
		Sections:    sections,
		Layout:      gl,
		Viewport:    vp,
		ViewportTop: viewportTop,
		HeadHeight:  headHeight,
		index:       index,
	}
}

// BoxRect is a box in grid coordinates.
type BoxRect struct {
	Left, Top, Width, Height float64
}

// Bottom returns Top + Height.
func (r BoxRect) Bottom() float64 {
	return r.Top + r.Height
}

// LocateBox returns the grid position of a photo's box. It fails when the
// section is unknown or not loaded, or its boxes were never computed.
func (s *Snapshot) LocateBox(sectionID photo.SectionID, photoID photo.PhotoID) (BoxRect, bool) {
	if s == nil || s.Layout == nil {
		return BoxRect{}, false
	}
	i, ok := s.index[sectionID]
	if !ok || i >= len(s.Layout.SectionLayouts) {
		return BoxRect{}, false
	}
	sec := s.Sections[sectionID]
	if sec == nil || !sec.IsLoaded() {
		return BoxRect{}, false
	}
	sl := s.Layout.SectionLayouts[i]
	bi := sec.IndexOf(photoID)
	if bi < 0 || bi >= len(sl.Boxes) {
		return BoxRect{}, false
	}
	b := sl.Boxes[bi]
	return BoxRect{
		Left:   b.Left,
		Top:    sl.SectionTop + s.HeadHeight + b.Top,
		Width:  b.Width,
		Height: b.Height,
	}, true
}

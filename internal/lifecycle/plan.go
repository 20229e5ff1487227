package lifecycle

import (
	"photo-grid/internal/photo"
)

// Extent is the vertical span of one section in grid coordinates.
type Extent struct {
	SectionID photo.SectionID
	Top       float64
	Bottom    float64
	Loaded    bool
	Revision  uint64
}

// Input is what a layout pass hands to the manager.
type Input struct {
	Extents        []Extent
	ViewportTop    float64
	ViewportHeight float64
	// PrevViewportTop is the viewport top of the previous pass and gives the
	// scroll direction.
	PrevViewportTop float64
}

// Plan lists the side effects decided for one layout pass.
type Plan struct {
	Forget []photo.SectionID
	Fetch  photo.SectionID
}

// HasFetch reports whether the plan starts a fetch.
func (p Plan) HasFetch() bool {
	return p.Fetch != ""
}

// IsEmpty reports whether applying the plan would do nothing.
func (p Plan) IsEmpty() bool {
	return len(p.Forget) == 0 && !p.HasFetch()
}

type window struct {
	top, bottom float64
}

func (w window) intersects(e Extent) bool {
	return e.Bottom > w.top && e.Top < w.bottom
}

// distance is 0 when e overlaps the viewport, else the gap to its nearer edge.
func distance(e Extent, viewport window) float64 {
	switch {
	case e.Bottom <= viewport.top:
		return viewport.top - e.Bottom
	case e.Top >= viewport.bottom:
		return e.Top - viewport.bottom
	default:
		return 0
	}
}

package thumbnail

import (
	"math"

	"photo-grid/internal/layout"
	"photo-grid/internal/photo"
)

// MinPriority is assigned to jobs whose box is not in the current layout.
const MinPriority = -math.MaxFloat64

// Priority returns the render priority of a photo's thumbnail under snap.
func Priority(snap *layout.Snapshot, sectionID photo.SectionID, photoID photo.PhotoID) float64 {
	rect, ok := snap.LocateBox(sectionID, photoID)
	if !ok {
		return MinPriority
	}
	return boxPriority(rect, snap.ViewportTop, snap.Viewport.Height, snap.Viewport.Width)
}

func boxPriority(rect layout.BoxRect, viewportTop, viewportHeight, viewportWidth float64) float64 {
	viewportBottom := viewportTop + viewportHeight

	switch {
	case rect.Top > viewportBottom:
		return viewportBottom - rect.Top
	case rect.Bottom() < viewportTop:
		return rect.Bottom() - viewportTop
	}

	p := viewportBottom - rect.Top
	if viewportWidth > 0 {
		p += (viewportWidth - rect.Left) / viewportWidth
	}
	return p
}

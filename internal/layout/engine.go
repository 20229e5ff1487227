package layout

import (
	"sync"
	"sync/atomic"
	"time"

	"photo-grid/internal/justified"
	"photo-grid/internal/lifecycle"
	"photo-grid/internal/logging"
	"photo-grid/internal/metrics"
	"photo-grid/internal/photo"
	"photo-grid/internal/profiler"
)

var log = logging.For("layout")

// DefaultSectionHeadHeight is the height of a section header in pixels.
const DefaultSectionHeadHeight = 60

// Planner turns section extents into lifecycle side effects.
type Planner interface {
	Plan(in lifecycle.Input) lifecycle.Plan
}

// Config controls window sizes and geometry.
type Config struct {
	PagesToPreload    int
	SectionHeadHeight float64
	Packer            justified.Packer
	Profile           bool
}

// DefaultConfig returns the configuration used by the library grid.
func DefaultConfig() Config {
	return Config{
		PagesToPreload:    lifecycle.DefaultPagesToPreload,
		SectionHeadHeight: DefaultSectionHeadHeight,
		Packer:            justified.NewPacker(),
	}
}

// Engine computes grid layouts incrementally. It is safe for concurrent
// use; passes are serialised.
type Engine struct {
	cfg     Config
	planner Planner

	mu          sync.Mutex
	hasPrev     bool
	prevIDs     []photo.SectionID
	prevIndex   map[photo.SectionID]int
	prevByID    map[photo.SectionID]*photo.Section
	prevLayout  *GridLayout
	prevVP      Viewport
	prevViewTop float64
	prevDirTop  float64

	snapshot atomic.Pointer[Snapshot]
}

// NewEngine creates an engine. planner may be nil, in which case passes
// return empty plans.
func NewEngine(cfg Config, planner Planner) *Engine {
	return &Engine{cfg: cfg, planner: planner}
}

// Snapshot returns the state published by the latest pass, or nil.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// GetGridLayout computes the layout for sectionIDs under vp and the
// evictions and fetch it implies. A call with the same inputs as the
// previous one returns the previous layout with a freshly computed plan.
func (e *Engine) GetGridLayout(sectionIDs []photo.SectionID, sectionByID map[photo.SectionID]*photo.Section, vp Viewport) (*GridLayout, lifecycle.Plan) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hasPrev && vp == e.prevVP && e.sameSections(sectionIDs, sectionByID) {
		metrics.LayoutPassesTotal.WithLabelValues("reused").Inc()
		return e.prevLayout, e.plan(sectionIDs, sectionByID, e.prevLayout, e.prevViewTop, e.prevDirTop, vp.Height)
	}

	start := time.Now()
	prof := profiler.NewIf(e.cfg.Profile, "layout")

	invalidate := !e.hasPrev || vp.Width != e.prevVP.Width || vp.RowHeight != e.prevVP.RowHeight
	if invalidate && e.hasPrev {
		log.Debug("geometry invalidated: width %v -> %v, row height %v -> %v",
			e.prevVP.Width, vp.Width, e.prevVP.RowHeight, vp.RowHeight)
	}

	layouts := e.computeSectionLayouts(sectionIDs, sectionByID, vp, invalidate)
	prof.AddPoint("sections")

	viewTop, fromSection, toSection := e.window(sectionIDs, sectionByID, layouts, vp)
	prof.AddPoint("window")

	gl := &GridLayout{
		FromSectionIndex: fromSection,
		ToSectionIndex:   toSection,
		SectionLayouts:   layouts,
	}
	if e.prevLayout != nil && sameGridLayout(e.prevLayout, gl) {
		gl = e.prevLayout
		metrics.LayoutPassesTotal.WithLabelValues("reused").Inc()
	} else {
		metrics.LayoutPassesTotal.WithLabelValues("changed").Inc()
	}

	dirTop := e.prevViewportTop(viewTop)
	plan := e.plan(sectionIDs, sectionByID, gl, viewTop, dirTop, vp.Height)
	prof.AddPoint("plan")

	e.hasPrev = true
	e.prevIDs = sectionIDs
	e.prevIndex = indexByID(sectionIDs)
	e.prevByID = copySectionMap(sectionIDs, sectionByID)
	e.prevLayout = gl
	e.prevVP = vp
	e.prevViewTop = viewTop
	e.prevDirTop = dirTop
	e.snapshot.Store(newSnapshot(sectionIDs, e.prevByID, gl, vp, viewTop, e.cfg.SectionHeadHeight))

	metrics.LayoutDuration.Observe(time.Since(start).Seconds())
	prof.LogResult()
	return gl, plan
}

func (e *Engine) plan(ids []photo.SectionID, byID map[photo.SectionID]*photo.Section, gl *GridLayout, viewTop, prevTop, height float64) lifecycle.Plan {
	if e.planner == nil {
		return lifecycle.Plan{}
	}
	return e.planner.Plan(lifecycle.Input{
		Extents:         e.extents(ids, byID, gl),
		ViewportTop:     viewTop,
		ViewportHeight:  height,
		PrevViewportTop: prevTop,
	})
}

func (e *Engine) prevViewportTop(viewTop float64) float64 {
	if !e.hasPrev {
		return viewTop
	}
	return e.prevViewTop
}

// sameSections reports whether ids and the referenced section revisions
// equal those of the previous pass.
func (e *Engine) sameSections(ids []photo.SectionID, byID map[photo.SectionID]*photo.Section) bool {
	if len(ids) != len(e.prevIDs) {
		return false
	}
	for i, id := range ids {
		if e.prevIDs[i] != id {
			return false
		}
		if !sameRevision(e.prevByID[id], byID[id]) {
			return false
		}
	}
	return true
}

func sameRevision(a, b *photo.Section) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Revision == b.Revision
}

// computeSectionLayouts reuses or recomputes the geometry of every section
// and assigns section offsets.
func (e *Engine) computeSectionLayouts(ids []photo.SectionID, byID map[photo.SectionID]*photo.Section, vp Viewport, invalidate bool) []*SectionLayout {
	layouts := make([]*SectionLayout, len(ids))
	sectionTop := 0.0

	for i, id := range ids {
		sec := byID[id]
		loaded := sec != nil && sec.IsLoaded()

		var prev *SectionLayout
		prevIdx, known := e.prevIndex[id]
		if known && e.prevLayout != nil && prevIdx < len(e.prevLayout.SectionLayouts) {
			prev = e.prevLayout.SectionLayouts[prevIdx]
		}

		var sl *SectionLayout
		if prev != nil && !invalidate &&
			sameRevision(e.prevByID[id], sec) && prev.Placeholder == !loaded {
			sl = prev
		} else {
			sl = e.computeSectionLayout(sec, loaded, prev, invalidate, vp)
		}

		if sl.SectionTop != sectionTop {
			if sl == prev {
				sl = sl.clone()
			}
			sl.SectionTop = sectionTop
		}
		layouts[i] = sl
		sectionTop += e.cfg.SectionHeadHeight + sl.ContainerHeight
	}
	return layouts
}

func (e *Engine) computeSectionLayout(sec *photo.Section, loaded bool, prev *SectionLayout, invalidate bool, vp Viewport) *SectionLayout {
	if loaded {
		metrics.SectionLayoutsComputed.WithLabelValues("packed").Inc()
		packed := e.cfg.Packer.PackPhotos(sec.Photos(), vp.Width, vp.RowHeight)
		return &SectionLayout{
			ContainerHeight: packed.ContainerHeight,
			Boxes:           packed.Boxes,
			FromBoxIndex:    NoBoxIndex,
			ToBoxIndex:      NoBoxIndex,
		}
	}

	count := photoCount(sec)

	// An evicted section keeps its real height so content below does not
	// jump.
	if prev != nil && !invalidate {
		sl := &SectionLayout{
			ContainerHeight: prev.ContainerHeight,
			FromBoxIndex:    NoBoxIndex,
			ToBoxIndex:      NoBoxIndex,
			Placeholder:     true,
		}
		if prev.Placeholder && len(prev.Boxes) == count {
			sl.Boxes = prev.Boxes
		}
		return sl
	}

	metrics.SectionLayoutsComputed.WithLabelValues("estimated").Inc()
	return &SectionLayout{
		ContainerHeight: e.cfg.Packer.EstimateContainerHeight(vp.Width, vp.RowHeight, count),
		FromBoxIndex:    NoBoxIndex,
		ToBoxIndex:      NoBoxIndex,
		Placeholder:     true,
	}
}

func (e *Engine) sectionBottom(sl *SectionLayout) float64 {
	return sl.SectionTop + e.cfg.SectionHeadHeight + sl.ContainerHeight
}

// window determines the materialised sections and box ranges. It replaces
// entries of layouts that need a different range with clones.
func (e *Engine) window(ids []photo.SectionID, byID map[photo.SectionID]*photo.Section, layouts []*SectionLayout, vp Viewport) (viewTop float64, from, to int) {
	viewTop = vp.ScrollTop
	winTop := vp.ScrollTop - float64(e.cfg.PagesToPreload)*vp.Height
	winBottom := vp.ScrollTop + float64(e.cfg.PagesToPreload+1)*vp.Height

	nailed := vp.Nailed && vp.NailedSectionIndex >= 0 && vp.NailedSectionIndex < len(layouts)
	if nailed {
		sl := layouts[vp.NailedSectionIndex]
		winTop = sl.SectionTop
		winBottom = e.sectionBottom(sl)
		viewTop = winTop
	}

	from, to = len(layouts), len(layouts)
	if nailed {
		from, to = vp.NailedSectionIndex, vp.NailedSectionIndex+1
	} else {
		for i, sl := range layouts {
			if e.sectionBottom(sl) > winTop {
				from = i
				break
			}
		}
		for i := from; i < len(layouts); i++ {
			if layouts[i].SectionTop >= winBottom {
				to = i
				break
			}
		}
	}

	for i, sl := range layouts {
		if i < from || i >= to {
			if sl.Boxes != nil && sl.HasRange() {
				c := sl.clone()
				c.FromBoxIndex, c.ToBoxIndex = NoBoxIndex, NoBoxIndex
				layouts[i] = c
			}
			continue
		}

		boxes := sl.Boxes
		if boxes == nil {
			metrics.SectionLayoutsComputed.WithLabelValues("dummy").Inc()
			boxes = e.cfg.Packer.DummyBoxes(vp.Width, vp.RowHeight, sl.ContainerHeight, photoCount(byID[ids[i]]))
		}
		fromBox, toBox := e.boxRange(sl, boxes, winTop, winBottom)
		if sl.Boxes == nil || fromBox != sl.FromBoxIndex || toBox != sl.ToBoxIndex {
			c := sl.clone()
			c.Boxes = boxes
			c.FromBoxIndex, c.ToBoxIndex = fromBox, toBox
			layouts[i] = c
		}
	}
	return viewTop, from, to
}

// boxRange returns the boxes of sl intersecting [winTop, winBottom).
func (e *Engine) boxRange(sl *SectionLayout, boxes []justified.Box, winTop, winBottom float64) (int, int) {
	if sl.SectionTop >= winTop && e.sectionBottom(sl) <= winBottom {
		return 0, len(boxes)
	}

	contentTop := sl.SectionTop + e.cfg.SectionHeadHeight
	from := len(boxes)
	for i := range boxes {
		if contentTop+boxes[i].Bottom() > winTop {
			from = i
			break
		}
	}
	to := len(boxes)
	for i := from; i < len(boxes); i++ {
		if contentTop+boxes[i].Top >= winBottom {
			to = i
			break
		}
	}
	return from, to
}

func (e *Engine) extents(ids []photo.SectionID, byID map[photo.SectionID]*photo.Section, gl *GridLayout) []lifecycle.Extent {
	extents := make([]lifecycle.Extent, len(ids))
	for i, id := range ids {
		sl := gl.SectionLayouts[i]
		sec := byID[id]
		extents[i] = lifecycle.Extent{
			SectionID: id,
			Top:       sl.SectionTop,
			Bottom:    e.sectionBottom(sl),
		}
		if sec != nil {
			extents[i].Loaded = sec.IsLoaded()
			extents[i].Revision = sec.Revision
		}
	}
	return extents
}

func photoCount(sec *photo.Section) int {
	if sec == nil {
		return 0
	}
	if sec.IsLoaded() {
		return len(sec.PhotoIDs)
	}
	return sec.Count
}

func sameGridLayout(a, b *GridLayout) bool {
	if a.FromSectionIndex != b.FromSectionIndex || a.ToSectionIndex != b.ToSectionIndex {
		return false
	}
	if len(a.SectionLayouts) != len(b.SectionLayouts) {
		return false
	}
	for i := range a.SectionLayouts {
		if a.SectionLayouts[i] != b.SectionLayouts[i] {
			return false
		}
	}
	return true
}

func indexByID(ids []photo.SectionID) map[photo.SectionID]int {
	index := make(map[photo.SectionID]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	return index
}

// copySectionMap keeps only the sections referenced by ids so later
// mutations of the caller's map do not leak into the cache.
func copySectionMap(ids []photo.SectionID, byID map[photo.SectionID]*photo.Section) map[photo.SectionID]*photo.Section {
	out := make(map[photo.SectionID]*photo.Section, len(ids))
	for _, id := range ids {
		if sec, ok := byID[id]; ok {
			out[id] = sec
		}
	}
	return out
}

package layout

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"photo-grid/internal/justified"
	"photo-grid/internal/lifecycle"
	"photo-grid/internal/photo"
	"photo-grid/internal/store"
)

// recordingPlanner remembers every input and returns a fixed plan.
type recordingPlanner struct {
	inputs []lifecycle.Input
	plan   lifecycle.Plan
}

func (p *recordingPlanner) Plan(in lifecycle.Input) lifecycle.Plan {
	p.inputs = append(p.inputs, in)
	return p.plan
}

func loadedSection(id string, n int) *photo.Section {
	photos := make([]*photo.Photo, n)
	for i := range photos {
		photos[i] = &photo.Photo{ID: photo.PhotoID(i + 1), MasterWidth: 3000, MasterHeight: 2000}
	}
	sec := &photo.Section{ID: photo.SectionID(id), Count: n}
	return sec.WithPhotos(photos)
}

func unloadedSection(id string, n int) *photo.Section {
	return &photo.Section{ID: photo.SectionID(id), Count: n, Revision: 1}
}

func sectionMap(sections ...*photo.Section) ([]photo.SectionID, map[photo.SectionID]*photo.Section) {
	ids := make([]photo.SectionID, len(sections))
	byID := make(map[photo.SectionID]*photo.Section, len(sections))
	for i, s := range sections {
		ids[i] = s.ID
		byID[s.ID] = s
	}
	return ids, byID
}

func manyLoaded(n, photosPer int) ([]photo.SectionID, map[photo.SectionID]*photo.Section) {
	sections := make([]*photo.Section, n)
	for i := range sections {
		sections[i] = loadedSection(fmt.Sprintf("s%02d", i), photosPer)
	}
	return sectionMap(sections...)
}

var defaultViewport = Viewport{Width: 800, Height: 600, RowHeight: 200}

func TestTwoSectionScenario(t *testing.T) {
	t.Parallel()

	st := &countingStore{}
	manager := lifecycle.NewManager(lifecycle.DefaultConfig(), nil, st)
	engine := NewEngine(DefaultConfig(), manager)

	ids, byID := sectionMap(loadedSection("S0", 10), unloadedSection("S1", 10))
	gl, plan := engine.GetGridLayout(ids, byID, defaultViewport)

	if gl.FromSectionIndex != 0 || gl.ToSectionIndex != 2 {
		t.Errorf("section range = [%d,%d), want [0,2)", gl.FromSectionIndex, gl.ToSectionIndex)
	}

	s0 := gl.SectionLayouts[0]
	if s0.Placeholder || len(s0.Boxes) != 10 {
		t.Errorf("S0: placeholder=%v boxes=%d, want real geometry with 10 boxes", s0.Placeholder, len(s0.Boxes))
	}
	if s0.FromBoxIndex != 0 || s0.ToBoxIndex != 10 {
		t.Errorf("S0 box range = [%d,%d), want [0,10)", s0.FromBoxIndex, s0.ToBoxIndex)
	}

	s1 := gl.SectionLayouts[1]
	wantHeight := justified.NewPacker().EstimateContainerHeight(800, 200, 10)
	if !s1.Placeholder || s1.ContainerHeight != wantHeight {
		t.Errorf("S1: placeholder=%v height=%v, want placeholder with height %v", s1.Placeholder, s1.ContainerHeight, wantHeight)
	}
	if len(s1.Boxes) != 10 {
		t.Errorf("S1 has %d placeholder boxes, want 10", len(s1.Boxes))
	}
	if want := DefaultSectionHeadHeight + s0.ContainerHeight; s1.SectionTop != want {
		t.Errorf("S1 top = %v, want %v", s1.SectionTop, want)
	}

	if plan.Fetch != "S1" {
		t.Errorf("plan.Fetch = %q, want S1", plan.Fetch)
	}
	if len(plan.Forget) != 0 {
		t.Errorf("plan.Forget = %v, want none", plan.Forget)
	}
}

func TestGetGridLayoutIdempotent(t *testing.T) {
	t.Parallel()

	planner := &recordingPlanner{plan: lifecycle.Plan{Fetch: "S1"}}
	engine := NewEngine(DefaultConfig(), planner)
	ids, byID := sectionMap(loadedSection("S0", 10), unloadedSection("S1", 10))

	first, firstPlan := engine.GetGridLayout(ids, byID, defaultViewport)
	second, secondPlan := engine.GetGridLayout(ids, byID, defaultViewport)

	if first != second {
		t.Error("second call returned a different layout")
	}
	if !firstPlan.HasFetch() || !secondPlan.HasFetch() {
		t.Errorf("plans = %+v, %+v, want both to fetch", firstPlan, secondPlan)
	}
	if len(planner.inputs) != 2 {
		t.Fatalf("planner called %d times, want 2", len(planner.inputs))
	}
	if !reflect.DeepEqual(planner.inputs[0], planner.inputs[1]) {
		t.Errorf("planner inputs differ:\n%+v\n%+v", planner.inputs[0], planner.inputs[1])
	}
}

func TestUnchangedPassPlansFetchAfterFailure(t *testing.T) {
	t.Parallel()

	st := store.NewMemory(store.NewState())
	st.Dispatch(store.SetSections{Sections: []*photo.Section{
		{ID: "a", Count: 4},
		{ID: "b", Count: 4},
	}})
	src := &failingSource{err: errors.New("disk on fire")}
	manager := lifecycle.NewManager(lifecycle.DefaultConfig(), src, st)
	engine := NewEngine(DefaultConfig(), manager)

	state := st.GetState()
	_, plan := engine.GetGridLayout(state.SectionIDs, state.SectionsByID, defaultViewport)
	if plan.Fetch != "a" {
		t.Fatalf("first Fetch = %q, want a", plan.Fetch)
	}
	manager.Apply(context.Background(), plan)
	manager.Wait()

	state = st.GetState()
	if state.LastFailure == nil || state.LastFailure.SectionID != "a" {
		t.Fatalf("LastFailure = %+v, want section a", state.LastFailure)
	}
	_, plan = engine.GetGridLayout(state.SectionIDs, state.SectionsByID, defaultViewport)
	if plan.Fetch != "b" {
		t.Errorf("Fetch after failed fetch = %q, want b", plan.Fetch)
	}
}

func TestScrollKeepsBoxes(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultConfig(), nil)
	ids, byID := manyLoaded(30, 12)

	before, _ := engine.GetGridLayout(ids, byID, defaultViewport)

	vp := defaultViewport
	vp.ScrollTop = 9000
	after, _ := engine.GetGridLayout(ids, byID, vp)

	if before == after {
		t.Fatal("scrolling far returned the same layout")
	}
	for i := range ids {
		b, a := before.SectionLayouts[i], after.SectionLayouts[i]
		if len(b.Boxes) == 0 || len(a.Boxes) == 0 {
			t.Fatalf("section %d lost its boxes", i)
		}
		if &b.Boxes[0] != &a.Boxes[0] {
			t.Errorf("section %d boxes were recomputed on scroll", i)
		}
		if a.SectionTop != b.SectionTop || a.ContainerHeight != b.ContainerHeight {
			t.Errorf("section %d moved on scroll", i)
		}
	}

	first := after.SectionLayouts[0]
	if first.HasRange() {
		t.Errorf("section 0 range = [%d,%d), want none after scrolling away", first.FromBoxIndex, first.ToBoxIndex)
	}
	if after.FromSectionIndex == 0 {
		t.Error("FromSectionIndex = 0 after scrolling 9000px")
	}
}

func TestScrollWithinWindowReturnsSameLayout(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultConfig(), nil)
	ids, byID := sectionMap(loadedSection("S0", 4))

	first, _ := engine.GetGridLayout(ids, byID, defaultViewport)
	vp := defaultViewport
	vp.ScrollTop = 5
	second, _ := engine.GetGridLayout(ids, byID, vp)

	if first != second {
		t.Error("small scroll with unchanged ranges returned a new layout")
	}
}

func TestPartialBoxRange(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.PagesToPreload = 0
	engine := NewEngine(cfg, nil)
	// 40 photos at 1.5 aspect ratio: two per row, 20 rows of about 267px.
	ids, byID := sectionMap(loadedSection("big", 40))

	vp := defaultViewport
	vp.ScrollTop = 2000
	gl, _ := engine.GetGridLayout(ids, byID, vp)

	sl := gl.SectionLayouts[0]
	if !sl.HasRange() {
		t.Fatal("big section has no box range")
	}
	if sl.FromBoxIndex == 0 || sl.ToBoxIndex == len(sl.Boxes) {
		t.Errorf("range = [%d,%d) of %d, want a strict sub-range", sl.FromBoxIndex, sl.ToBoxIndex, len(sl.Boxes))
	}

	contentTop := sl.SectionTop + cfg.SectionHeadHeight
	for i := sl.FromBoxIndex; i < sl.ToBoxIndex; i++ {
		b := sl.Boxes[i]
		if contentTop+b.Bottom() <= vp.ScrollTop || contentTop+b.Top >= vp.ScrollTop+vp.Height {
			t.Errorf("box %d [%v,%v] outside the window", i, contentTop+b.Top, contentTop+b.Bottom())
		}
	}
	if prev := sl.Boxes[sl.FromBoxIndex-1]; contentTop+prev.Bottom() > vp.ScrollTop {
		t.Errorf("box %d before the range intersects the window", sl.FromBoxIndex-1)
	}
}

func TestWidthChangeInvalidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		change func(*Viewport)
	}{
		{name: "width", change: func(vp *Viewport) { vp.Width = 1200 }},
		{name: "row height", change: func(vp *Viewport) { vp.RowHeight = 150 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := NewEngine(DefaultConfig(), nil)
			ids, byID := sectionMap(loadedSection("S0", 10))

			before, _ := engine.GetGridLayout(ids, byID, defaultViewport)
			vp := defaultViewport
			tt.change(&vp)
			after, _ := engine.GetGridLayout(ids, byID, vp)

			if &before.SectionLayouts[0].Boxes[0] == &after.SectionLayouts[0].Boxes[0] {
				t.Error("boxes were reused after a geometry change")
			}
		})
	}
}

func TestReorderedSectionsKeepGeometry(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultConfig(), nil)
	a, b := loadedSection("A", 10), loadedSection("B", 4)

	ids, byID := sectionMap(a, b)
	before, _ := engine.GetGridLayout(ids, byID, defaultViewport)

	ids, byID = sectionMap(b, a)
	after, _ := engine.GetGridLayout(ids, byID, defaultViewport)

	if &after.SectionLayouts[0].Boxes[0] != &before.SectionLayouts[1].Boxes[0] {
		t.Error("section B was repacked after moving")
	}
	if &after.SectionLayouts[1].Boxes[0] != &before.SectionLayouts[0].Boxes[0] {
		t.Error("section A was repacked after moving")
	}
	if after.SectionLayouts[0].SectionTop != 0 {
		t.Errorf("B top = %v, want 0", after.SectionLayouts[0].SectionTop)
	}
	want := DefaultSectionHeadHeight + after.SectionLayouts[0].ContainerHeight
	if got := after.SectionLayouts[1].SectionTop; got != want {
		t.Errorf("A top = %v, want %v", got, want)
	}
	if before.SectionLayouts[0].SectionTop != 0 {
		t.Error("published layout of the previous pass was modified")
	}
}

func TestRevisionChangeRepacks(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultConfig(), nil)
	sec := loadedSection("S0", 3)
	ids, byID := sectionMap(sec)
	before, _ := engine.GetGridLayout(ids, byID, defaultViewport)

	portrait := *sec.PhotoData[2]
	portrait.MasterWidth, portrait.MasterHeight = 2000, 3000
	_, byID = sectionMap(sec.WithPhoto(&portrait))
	after, _ := engine.GetGridLayout(ids, byID, defaultViewport)

	got := after.SectionLayouts[0].Boxes[1].AspectRatio
	if got != 2.0/3.0 {
		t.Errorf("aspect ratio of updated photo = %v, want %v", got, 2.0/3.0)
	}
	if before.SectionLayouts[0].Boxes[1].AspectRatio != 1.5 {
		t.Error("published layout was modified in place")
	}
}

func TestEvictedSectionKeepsHeight(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultConfig(), nil)
	sec := loadedSection("S0", 9)
	ids, byID := sectionMap(sec)
	loaded, _ := engine.GetGridLayout(ids, byID, defaultViewport)

	_, byID = sectionMap(sec.Unloaded())
	evicted, _ := engine.GetGridLayout(ids, byID, defaultViewport)

	l, e := loaded.SectionLayouts[0], evicted.SectionLayouts[0]
	if !e.Placeholder {
		t.Error("evicted section is not a placeholder")
	}
	if e.ContainerHeight != l.ContainerHeight {
		t.Errorf("evicted height = %v, want %v", e.ContainerHeight, l.ContainerHeight)
	}
	if len(e.Boxes) != 9 {
		t.Errorf("evicted section has %d placeholder boxes, want 9", len(e.Boxes))
	}
}

func TestNailedSection(t *testing.T) {
	t.Parallel()

	planner := &recordingPlanner{}
	engine := NewEngine(DefaultConfig(), planner)
	ids, byID := sectionMap(loadedSection("a", 4), loadedSection("b", 4), loadedSection("c", 4))

	vp := defaultViewport
	vp.Nailed = true
	vp.NailedSectionIndex = 1
	gl, _ := engine.GetGridLayout(ids, byID, vp)

	if gl.FromSectionIndex != 1 || gl.ToSectionIndex != 2 {
		t.Errorf("section range = [%d,%d), want [1,2)", gl.FromSectionIndex, gl.ToSectionIndex)
	}
	nailed := gl.SectionLayouts[1]
	if nailed.FromBoxIndex != 0 || nailed.ToBoxIndex != 4 {
		t.Errorf("nailed range = [%d,%d), want [0,4)", nailed.FromBoxIndex, nailed.ToBoxIndex)
	}
	for _, i := range []int{0, 2} {
		if gl.SectionLayouts[i].HasRange() {
			t.Errorf("section %d is materialised while another is nailed", i)
		}
	}
	if got := planner.inputs[0].ViewportTop; got != nailed.SectionTop {
		t.Errorf("planner viewport top = %v, want nailed section top %v", got, nailed.SectionTop)
	}
}

func TestSnapshotLocateBox(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultConfig(), nil)
	if engine.Snapshot() != nil {
		t.Fatal("snapshot published before the first pass")
	}

	ids, byID := sectionMap(loadedSection("S0", 4), unloadedSection("S1", 4))
	gl, _ := engine.GetGridLayout(ids, byID, defaultViewport)
	snap := engine.Snapshot()

	rect, ok := snap.LocateBox("S0", 3)
	if !ok {
		t.Fatal("photo 3 of S0 not found")
	}
	box := gl.SectionLayouts[0].Boxes[2]
	if want := DefaultSectionHeadHeight + box.Top; rect.Top != want {
		t.Errorf("rect.Top = %v, want %v", rect.Top, want)
	}
	if rect.Left != box.Left {
		t.Errorf("rect.Left = %v, want %v", rect.Left, box.Left)
	}

	if _, ok := snap.LocateBox("S1", 1); ok {
		t.Error("located a box in an unloaded section")
	}
	if _, ok := snap.LocateBox("missing", 1); ok {
		t.Error("located a box in an unknown section")
	}
	if _, ok := snap.LocateBox("S0", 99); ok {
		t.Error("located an unknown photo")
	}
}

package store

import (
	"errors"
	"slices"
	"testing"

	"photo-grid/internal/photo"
)

func loadedSection(id photo.SectionID, photoIDs ...photo.PhotoID) *photo.Section {
	photos := make([]*photo.Photo, 0, len(photoIDs))
	for _, pid := range photoIDs {
		photos = append(photos, &photo.Photo{ID: pid, MasterWidth: 300, MasterHeight: 200})
	}
	return (&photo.Section{ID: id, Count: len(photos)}).WithPhotos(photos)
}

func stateWith(sections ...*photo.Section) State {
	st := Reduce(NewState(), SetSections{Sections: nil})
	byID := map[photo.SectionID]*photo.Section{}
	for _, s := range sections {
		st.SectionIDs = append(st.SectionIDs, s.ID)
		byID[s.ID] = s
	}
	st.SectionsByID = byID
	return st
}

func TestForgetSectionPhotos(t *testing.T) {
	t.Parallel()

	a := loadedSection("a", 1, 2)
	b := &photo.Section{ID: "b", Count: 3}
	st := stateWith(a, b)

	next := Reduce(st, ForgetSectionPhotos{SectionIDs: []photo.SectionID{"a", "b"}})
	got := next.Section("a")
	if got.IsLoaded() {
		t.Fatal("section a is still loaded")
	}
	if got.Revision <= a.Revision {
		t.Errorf("revision = %d, want > %d", got.Revision, a.Revision)
	}
	if got.Count != 2 {
		t.Errorf("count = %d, want 2", got.Count)
	}
	if next.Section("b") != b {
		t.Error("unloaded section b was replaced")
	}
	if !st.Section("a").IsLoaded() {
		t.Error("previous state was modified")
	}

	// Forgetting only unloaded sections is a no-op.
	again := Reduce(next, ForgetSectionPhotos{SectionIDs: []photo.SectionID{"a", "b", "missing"}})
	if again.Version != next.Version {
		t.Errorf("version changed on no-op: %d -> %d", next.Version, again.Version)
	}
}

func TestFetchSectionPhotosSuccess(t *testing.T) {
	t.Parallel()

	st := stateWith(&photo.Section{ID: "a", Count: 5, Revision: 3})
	st = Reduce(st, FetchSectionPhotosFailure{SectionID: "a", Err: errors.New("boom")})
	if st.LastFailure == nil || st.LastFailure.Err != "boom" {
		t.Fatalf("LastFailure = %+v", st.LastFailure)
	}

	photos := []*photo.Photo{{ID: 7}, {ID: 8}}
	next := Reduce(st, FetchSectionPhotosSuccess{SectionID: "a", Revision: 3, Filter: photo.DefaultFilter(), Photos: photos})
	sec := next.Section("a")
	if !slices.Equal(sec.PhotoIDs, []photo.PhotoID{7, 8}) {
		t.Errorf("PhotoIDs = %v", sec.PhotoIDs)
	}
	if sec.Count != 2 {
		t.Errorf("Count = %d, want 2", sec.Count)
	}
	if sec.Revision != 4 {
		t.Errorf("Revision = %d, want 4", sec.Revision)
	}
	if next.LastFailure != nil {
		t.Errorf("LastFailure not cleared: %+v", next.LastFailure)
	}

	unknown := Reduce(next, FetchSectionPhotosSuccess{SectionID: "gone", Photos: photos})
	if unknown.Version != next.Version {
		t.Error("success for an unknown section changed the state")
	}
}

func TestFetchSectionPhotosSuccessDropsStaleResults(t *testing.T) {
	t.Parallel()

	st := stateWith(&photo.Section{ID: "a", Count: 4, Revision: 2})
	photos := []*photo.Photo{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	flagged := photo.Filter{Mode: photo.FilterFlagged}

	tests := []struct {
		name   string
		state  State
		action FetchSectionPhotosSuccess
	}{
		{
			name:   "section revised during fetch",
			state:  Reduce(st, SetSections{Sections: []*photo.Section{{ID: "a", Count: 1}}}),
			action: FetchSectionPhotosSuccess{SectionID: "a", Revision: 2, Filter: photo.DefaultFilter(), Photos: photos},
		},
		{
			name:   "filter changed during fetch",
			state:  Reduce(st, SetFilter{Filter: flagged}),
			action: FetchSectionPhotosSuccess{SectionID: "a", Revision: 2, Filter: photo.DefaultFilter(), Photos: photos},
		},
		{
			name:   "tags changed during fetch",
			state:  Reduce(st, SetFilter{Filter: photo.Filter{Mode: photo.FilterAll, Tags: []string{"beach"}}}),
			action: FetchSectionPhotosSuccess{SectionID: "a", Revision: 2, Filter: photo.DefaultFilter(), Photos: photos},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next := Reduce(tt.state, tt.action)
			if next.Version != tt.state.Version {
				t.Errorf("version changed: %d -> %d", tt.state.Version, next.Version)
			}
			sec := next.Section("a")
			if sec.IsLoaded() {
				t.Errorf("stale photos were stored: %v", sec.PhotoIDs)
			}
			if sec.Count != tt.state.Section("a").Count {
				t.Errorf("Count = %d, want %d", sec.Count, tt.state.Section("a").Count)
			}
		})
	}
}

func TestSetSectionsBumpsReusedRevisions(t *testing.T) {
	t.Parallel()

	st := stateWith(loadedSection("a", 1))
	prevRev := st.Section("a").Revision

	next := Reduce(st, SetSections{Sections: []*photo.Section{{ID: "a", Count: 1}, {ID: "b", Count: 4}}})
	if got := next.Section("a").Revision; got <= prevRev {
		t.Errorf("revision of replaced section = %d, want > %d", got, prevRev)
	}
	if !slices.Equal(next.SectionIDs, []photo.SectionID{"a", "b"}) {
		t.Errorf("SectionIDs = %v", next.SectionIDs)
	}
}

func TestSetFilterUnloadsSections(t *testing.T) {
	t.Parallel()

	st := stateWith(loadedSection("a", 1), &photo.Section{ID: "b", Count: 2})
	next := Reduce(st, SetFilter{Filter: photo.Filter{Mode: photo.FilterFlagged}})

	if next.Filter.Mode != photo.FilterFlagged {
		t.Errorf("Filter = %+v", next.Filter)
	}
	if sections, photos := next.Loaded(); sections != 0 || photos != 0 {
		t.Errorf("Loaded() = %d, %d, want 0, 0", sections, photos)
	}
	if sections, photos := st.Loaded(); sections != 1 || photos != 1 {
		t.Errorf("Loaded() before the filter change = %d, %d, want 1, 1", sections, photos)
	}
	if next.Section("b") != st.Section("b") {
		t.Error("unloaded section was replaced")
	}
}

func TestUpdatePhotoMasterSize(t *testing.T) {
	t.Parallel()

	st := stateWith(loadedSection("a", 1, 2))
	next := Reduce(st, UpdatePhotoMasterSize{SectionID: "a", PhotoID: 2, Width: 100, Height: 400})

	p := next.Section("a").PhotoData[2]
	if p.MasterWidth != 100 || p.MasterHeight != 400 {
		t.Errorf("master size = %dx%d", p.MasterWidth, p.MasterHeight)
	}
	if st.Section("a").PhotoData[2].MasterWidth != 300 {
		t.Error("previous photo record was modified")
	}
	if next.Section("a").Revision <= st.Section("a").Revision {
		t.Error("revision not increased")
	}

	missing := Reduce(next, UpdatePhotoMasterSize{SectionID: "a", PhotoID: 99, Width: 1, Height: 1})
	if missing.Version != next.Version {
		t.Error("update for an unknown photo changed the state")
	}
}

func TestInfoPhotoLastRequestWins(t *testing.T) {
	t.Parallel()

	st := stateWith(loadedSection("a", 1, 2))
	st = Reduce(st, SetInfoPhotoRequest{SectionID: "a", PhotoID: 1})
	st = Reduce(st, SetInfoPhotoRequest{SectionID: "a", PhotoID: 2})

	stale := Reduce(st, SetInfoPhotoSuccess{Detail: &photo.PhotoDetail{Photo: &photo.Photo{ID: 1}}})
	if stale.Version != st.Version {
		t.Error("stale detail was applied")
	}

	next := Reduce(st, SetInfoPhotoSuccess{Detail: &photo.PhotoDetail{Photo: &photo.Photo{ID: 2}, Tags: []string{"x"}}})
	if next.Info.Loading || next.Info.Detail == nil {
		t.Errorf("Info = %+v", next.Info)
	}

	failed := Reduce(st, SetInfoPhotoFailure{PhotoID: 2, Err: errors.New("no such photo")})
	if failed.Info.Err != "no such photo" || failed.Info.Loading {
		t.Errorf("Info = %+v", failed.Info)
	}

	cleared := Reduce(next, SetInfoPhotoRequest{})
	if cleared.Info != nil {
		t.Errorf("Info = %+v, want nil", cleared.Info)
	}
}

func TestProtectedSections(t *testing.T) {
	t.Parallel()

	st := stateWith(loadedSection("a", 1), loadedSection("b", 2), loadedSection("c", 3), loadedSection("d", 4))
	st = Reduce(st, SetSelection{Selection: Selection{SectionID: "a", PhotoIDs: []photo.PhotoID{1}}})
	st = Reduce(st, SetInfoPhotoRequest{SectionID: "b", PhotoID: 2})
	st = Reduce(st, OpenDetail{SectionID: "c", PhotoID: 3})
	st = Reduce(st, OpenExport{SectionID: "d", PhotoIDs: []photo.PhotoID{4}})

	got := st.ProtectedSections()
	for _, id := range []photo.SectionID{"a", "b", "c", "d"} {
		if !got[id] {
			t.Errorf("section %s not protected", id)
		}
	}

	st = Reduce(st, CloseDetail{})
	st = Reduce(st, CloseExport{})
	got = st.ProtectedSections()
	if got["c"] || got["d"] {
		t.Errorf("closed views still protected: %v", got)
	}
}

func TestMemoryDispatchNotifiesListeners(t *testing.T) {
	t.Parallel()

	m := NewMemory(NewState())
	var versions []uint64
	unsubscribe := m.Subscribe(func(s State) { versions = append(versions, s.Version) })

	m.Dispatch(SetSections{Sections: []*photo.Section{{ID: "a", Count: 1}}})
	// No-op actions do not notify.
	m.Dispatch(ForgetSectionPhotos{SectionIDs: []photo.SectionID{"a"}})
	m.Dispatch(SetSelection{Selection: Selection{SectionID: "a"}})

	if !slices.Equal(versions, []uint64{1, 2}) {
		t.Errorf("notified versions = %v, want [1 2]", versions)
	}

	unsubscribe()
	m.Dispatch(CloseDetail{})
	if len(versions) != 2 {
		t.Errorf("listener called after unsubscribe: %v", versions)
	}
	if m.GetState().Version != 3 {
		t.Errorf("Version = %d, want 3", m.GetState().Version)
	}
}

func TestActionName(t *testing.T) {
	t.Parallel()

	if got := ActionName(SetFilter{}); got != "set_filter" {
		t.Errorf("ActionName() = %q", got)
	}
}

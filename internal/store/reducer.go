package store

import (
	"photo-grid/internal/photo"
)

// Reduce applies action to state and returns the new state. The input state
// is never modified; unchanged parts are shared with the result.
func Reduce(state State, action Action) State {
	next := state
	next.Version = state.Version + 1

	switch a := action.(type) {
	case SetSections:
		ids := make([]photo.SectionID, 0, len(a.Sections))
		byID := make(map[photo.SectionID]*photo.Section, len(a.Sections))
		for _, sec := range a.Sections {
			if prev, ok := state.SectionsByID[sec.ID]; ok && sec.Revision <= prev.Revision {
				copied := *sec
				copied.Revision = prev.Revision + 1
				sec = &copied
			}
			ids = append(ids, sec.ID)
			byID[sec.ID] = sec
		}
		next.SectionIDs = ids
		next.SectionsByID = byID
		next.LastFailure = nil

	case ForgetSectionPhotos:
		var byID map[photo.SectionID]*photo.Section
		for _, id := range a.SectionIDs {
			sec, ok := state.SectionsByID[id]
			if !ok || !sec.IsLoaded() {
				continue
			}
			if byID == nil {
				byID = copySections(state.SectionsByID)
			}
			byID[id] = sec.Unloaded()
		}
		if byID == nil {
			return state
		}
		next.SectionsByID = byID

	case FetchSectionPhotosSuccess:
		sec, ok := state.SectionsByID[a.SectionID]
		if !ok || sec.Revision != a.Revision || !state.Filter.Equal(a.Filter) {
			return state
		}
		byID := copySections(state.SectionsByID)
		byID[a.SectionID] = sec.WithPhotos(a.Photos)
		next.SectionsByID = byID
		if state.LastFailure != nil && state.LastFailure.SectionID == a.SectionID {
			next.LastFailure = nil
		}

	case FetchSectionPhotosFailure:
		next.LastFailure = &FetchFailure{SectionID: a.SectionID, Err: errString(a.Err)}

	case SetInfoPhotoRequest:
		if a.SectionID == "" {
			next.Info = nil
		} else {
			next.Info = &InfoState{SectionID: a.SectionID, PhotoID: a.PhotoID, Loading: a.PhotoID != 0}
		}

	case SetInfoPhotoSuccess:
		if state.Info == nil || a.Detail == nil || a.Detail.Photo == nil || state.Info.PhotoID != a.Detail.Photo.ID {
			return state
		}
		info := *state.Info
		info.Detail = a.Detail
		info.Loading = false
		info.Err = ""
		next.Info = &info

	case SetInfoPhotoFailure:
		if state.Info == nil || state.Info.PhotoID != a.PhotoID {
			return state
		}
		info := *state.Info
		info.Loading = false
		info.Err = errString(a.Err)
		next.Info = &info

	case SetSelection:
		next.Selection = a.Selection

	case OpenDetail:
		next.Detail = &DetailState{SectionID: a.SectionID, PhotoID: a.PhotoID}

	case CloseDetail:
		next.Detail = nil

	case OpenExport:
		next.Export = &ExportState{SectionID: a.SectionID, PhotoIDs: a.PhotoIDs}

	case CloseExport:
		next.Export = nil

	case SetFilter:
		next.Filter = a.Filter
		byID := make(map[photo.SectionID]*photo.Section, len(state.SectionsByID))
		for id, sec := range state.SectionsByID {
			if sec.IsLoaded() {
				sec = sec.Unloaded()
			}
			byID[id] = sec
		}
		next.SectionsByID = byID

	case UpdatePhotoMasterSize:
		sec, ok := state.SectionsByID[a.SectionID]
		if !ok || !sec.IsLoaded() {
			return state
		}
		existing, ok := sec.PhotoData[a.PhotoID]
		if !ok {
			return state
		}
		updated := *existing
		updated.MasterWidth = a.Width
		updated.MasterHeight = a.Height
		byID := copySections(state.SectionsByID)
		byID[a.SectionID] = sec.WithPhoto(&updated)
		next.SectionsByID = byID

	default:
		return state
	}

	return next
}

func copySections(in map[photo.SectionID]*photo.Section) map[photo.SectionID]*photo.Section {
	out := make(map[photo.SectionID]*photo.Section, len(in))
	for id, sec := range in {
		out[id] = sec
	}
	return out
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

package handlers

import (
	"errors"
	"net/http"

	"photo-grid/internal/library"
	"photo-grid/internal/photo"
	"photo-grid/internal/store"
)

// PhotoRef addresses a photo within its section.
type PhotoRef struct {
	SectionID photo.SectionID `json:"sectionId"`
	PhotoID   photo.PhotoID   `json:"photoId"`
}

// PhotoSet addresses several photos of one section.
type PhotoSet struct {
	SectionID photo.SectionID `json:"sectionId"`
	PhotoIDs  []photo.PhotoID `json:"photoIds"`
}

// GetFilter returns the active filter.
func (h *Handlers) GetFilter(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.grid.Store().GetState().Filter)
}

// SetFilter changes the filter and reloads the section list.
func (h *Handlers) SetFilter(w http.ResponseWriter, r *http.Request) {
	var filter photo.Filter
	if !decodeJSON(w, r, &filter) {
		return
	}
	if err := h.grid.SetFilter(r.Context(), filter); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSONStatus(w, "ok")
}

// GetInfo returns the info panel state, or null when it is closed.
func (h *Handlers) GetInfo(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.grid.Store().GetState().Info)
}

// SetInfo shows a photo in the info panel. Details load in the background.
func (h *Handlers) SetInfo(w http.ResponseWriter, r *http.Request) {
	var ref PhotoRef
	if !decodeJSON(w, r, &ref) {
		return
	}
	if ref.SectionID == "" || ref.PhotoID == 0 {
		writeJSONError(w, "sectionId and photoId are required", http.StatusBadRequest)
		return
	}
	h.grid.SetInfoPhoto(ref.SectionID, ref.PhotoID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"status": "loading"})
}

// ClearInfo closes the info panel.
func (h *Handlers) ClearInfo(w http.ResponseWriter, _ *http.Request) {
	h.grid.SetInfoPhoto("", 0)
	w.WriteHeader(http.StatusNoContent)
}

// SetSelection replaces the selection. An empty photo list clears it.
func (h *Handlers) SetSelection(w http.ResponseWriter, r *http.Request) {
	var set PhotoSet
	if !decodeJSON(w, r, &set) {
		return
	}
	if err := h.grid.SetSelection(store.Selection{SectionID: set.SectionID, PhotoIDs: set.PhotoIDs}); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSONStatus(w, "ok")
}

// OpenDetail opens the detail view on a resident photo.
func (h *Handlers) OpenDetail(w http.ResponseWriter, r *http.Request) {
	var ref PhotoRef
	if !decodeJSON(w, r, &ref) {
		return
	}
	err := h.grid.OpenDetail(ref.SectionID, ref.PhotoID)
	if errors.Is(err, library.ErrPhotoNotLoaded) {
		writeJSONError(w, "Photo not loaded", http.StatusNotFound)
		return
	}
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSONStatus(w, "ok")
}

// CloseDetail closes the detail view.
func (h *Handlers) CloseDetail(w http.ResponseWriter, _ *http.Request) {
	h.grid.CloseDetail()
	w.WriteHeader(http.StatusNoContent)
}

// OpenExport opens the export dialog.
func (h *Handlers) OpenExport(w http.ResponseWriter, r *http.Request) {
	var set PhotoSet
	if !decodeJSON(w, r, &set) {
		return
	}
	if err := h.grid.OpenExport(set.SectionID, set.PhotoIDs); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSONStatus(w, "ok")
}

// CloseExport closes the export dialog.
func (h *Handlers) CloseExport(w http.ResponseWriter, _ *http.Request) {
	h.grid.CloseExport()
	w.WriteHeader(http.StatusNoContent)
}

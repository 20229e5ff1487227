package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"photo-grid/internal/jobqueue"
	"photo-grid/internal/layout"
	"photo-grid/internal/library"
	"photo-grid/internal/logging"
	"photo-grid/internal/photo"

	"github.com/gorilla/mux"
)

// SectionSummary describes a section without its photo data.
type SectionSummary struct {
	ID       photo.SectionID `json:"id"`
	Title    string          `json:"title"`
	Count    int             `json:"count"`
	Loaded   bool            `json:"loaded"`
	Revision uint64          `json:"revision"`
}

// LayoutResponse is returned by viewport updates and layout reads.
type LayoutResponse struct {
	SectionIDs  []photo.SectionID  `json:"sectionIds"`
	Layout      *layout.GridLayout `json:"layout"`
	ViewportTop float64            `json:"viewportTop"`
	Fetching    bool               `json:"fetching"`
}

// ListSections returns the current section list.
func (h *Handlers) ListSections(w http.ResponseWriter, _ *http.Request) {
	state := h.grid.Store().GetState()
	sections := make([]SectionSummary, 0, len(state.SectionIDs))
	for _, id := range state.SectionIDs {
		sec := state.Section(id)
		if sec == nil {
			continue
		}
		sections = append(sections, SectionSummary{
			ID:       sec.ID,
			Title:    sec.Title,
			Count:    sec.Count,
			Loaded:   sec.IsLoaded(),
			Revision: sec.Revision,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, sections)
}

// ReloadSections re-queries the section list.
func (h *Handlers) ReloadSections(w http.ResponseWriter, r *http.Request) {
	if err := h.grid.LoadSections(r.Context()); err != nil {
		logging.Error("reloading sections failed: %v", err)
		writeJSONError(w, "Failed to load sections", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, "reloaded")
}

// GetSectionPhotos returns the photos of a resident section.
func (h *Handlers) GetSectionPhotos(w http.ResponseWriter, r *http.Request) {
	id := photo.SectionID(mux.Vars(r)["section"])
	sec := h.grid.Store().GetState().Section(id)
	if sec == nil {
		writeJSONError(w, "Section not found", http.StatusNotFound)
		return
	}
	if !sec.IsLoaded() {
		writeJSONError(w, "Section not loaded", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, sec.Photos())
}

// UpdateViewport reports the scroll container and returns the layout.
func (h *Handlers) UpdateViewport(w http.ResponseWriter, r *http.Request) {
	var vp layout.Viewport
	if !decodeJSON(w, r, &vp) {
		return
	}

	gl, err := h.grid.UpdateViewport(vp)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeLayout(w, gl)
}

// GetLayout returns the layout for the last reported viewport.
func (h *Handlers) GetLayout(w http.ResponseWriter, _ *http.Request) {
	gl, err := h.grid.Layout()
	if errors.Is(err, library.ErrNoViewport) {
		writeJSONError(w, "No viewport reported yet", http.StatusConflict)
		return
	}
	if err != nil {
		writeJSONError(w, "Failed to compute layout", http.StatusInternalServerError)
		return
	}
	h.writeLayout(w, gl)
}

func (h *Handlers) writeLayout(w http.ResponseWriter, gl *layout.GridLayout) {
	resp := LayoutResponse{
		Layout:   gl,
		Fetching: h.grid.GetStats().FetchInFlight,
	}
	if snap := h.grid.Engine().Snapshot(); snap != nil && snap.Layout == gl {
		resp.SectionIDs = snap.SectionIDs
		resp.ViewportTop = snap.ViewportTop
	} else {
		resp.SectionIDs = h.grid.Store().GetState().SectionIDs
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, resp)
}

// GetThumbnail renders (if needed) and serves the thumbnail of a photo.
// The request waits in the render queue; leaving early withdraws it.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sectionID := photo.SectionID(vars["section"])
	photoID, err := strconv.ParseInt(vars["photo"], 10, 64)
	if err != nil {
		writeJSONError(w, "Invalid photo id", http.StatusBadRequest)
		return
	}

	req, err := h.grid.CreateThumbnail(sectionID, photo.PhotoID(photoID))
	if errors.Is(err, library.ErrPhotoNotLoaded) {
		writeJSONError(w, "Photo not loaded", http.StatusNotFound)
		return
	}
	if err != nil {
		writeJSONError(w, "Failed to queue thumbnail", http.StatusInternalServerError)
		return
	}

	path, err := req.Wait(r.Context())
	if err != nil {
		switch {
		case r.Context().Err() != nil:
			req.Cancel()
		case errors.Is(err, jobqueue.ErrQueueClosed):
			writeJSONError(w, "Shutting down", http.StatusServiceUnavailable)
		case jobqueue.IsCanceled(err):
			writeJSONError(w, "Thumbnail request canceled", http.StatusServiceUnavailable)
		default:
			logging.Error("thumbnail of photo %d failed: %v", photoID, err)
			writeJSONError(w, "Failed to render thumbnail", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}

// GetStats returns grid statistics.
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.grid.GetStats())
}

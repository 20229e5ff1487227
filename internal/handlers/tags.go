package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"photo-grid/internal/database"
	"photo-grid/internal/logging"
	"photo-grid/internal/photo"

	"github.com/gorilla/mux"
)

// TagRequest is the body of a tag assignment.
type TagRequest struct {
	Name string `json:"name"`
}

// GetAllTags returns all tags
func (h *Handlers) GetAllTags(w http.ResponseWriter, r *http.Request) {
	if h.tags == nil {
		writeJSONError(w, "Tags are not available", http.StatusNotImplemented)
		return
	}

	tags, err := h.tags.ListTags(r.Context())
	if err != nil {
		logging.Error("failed to list tags: %v", err)
		writeJSONError(w, "Failed to get tags", http.StatusInternalServerError)
		return
	}
	if tags == nil {
		tags = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, tags)
}

// AddTagToPhoto tags a photo
func (h *Handlers) AddTagToPhoto(w http.ResponseWriter, r *http.Request) {
	if h.tags == nil {
		writeJSONError(w, "Tags are not available", http.StatusNotImplemented)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["photo"], 10, 64)
	if err != nil {
		writeJSONError(w, "Invalid photo id", http.StatusBadRequest)
		return
	}

	var req TagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSONError(w, "Tag name is required", http.StatusBadRequest)
		return
	}

	err = h.tags.TagPhoto(r.Context(), photo.PhotoID(id), req.Name)
	if errors.Is(err, database.ErrPhotoNotFound) {
		writeJSONError(w, "Photo not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.Error("failed to tag photo %d: %v", id, err)
		writeJSONError(w, "Failed to add tag", http.StatusInternalServerError)
		return
	}

	writeJSONStatus(w, "ok")
}

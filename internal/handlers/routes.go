package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers all routes of h.
func NewRouter(h *Handlers, metricsEnabled bool) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)
	if metricsEnabled {
		r.Handle("/metrics", h.MetricsHandler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/sections", h.ListSections).Methods(http.MethodGet)
	api.HandleFunc("/sections/reload", h.ReloadSections).Methods(http.MethodPost)
	api.HandleFunc("/sections/{section}/photos", h.GetSectionPhotos).Methods(http.MethodGet)
	api.HandleFunc("/sections/{section}/photos/{photo:[0-9]+}/thumbnail", h.GetThumbnail).Methods(http.MethodGet)

	api.HandleFunc("/viewport", h.UpdateViewport).Methods(http.MethodPut)
	api.HandleFunc("/layout", h.GetLayout).Methods(http.MethodGet)
	api.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)

	api.HandleFunc("/filter", h.GetFilter).Methods(http.MethodGet)
	api.HandleFunc("/filter", h.SetFilter).Methods(http.MethodPut)
	api.HandleFunc("/info", h.GetInfo).Methods(http.MethodGet)
	api.HandleFunc("/info", h.SetInfo).Methods(http.MethodPut)
	api.HandleFunc("/info", h.ClearInfo).Methods(http.MethodDelete)
	api.HandleFunc("/selection", h.SetSelection).Methods(http.MethodPut)
	api.HandleFunc("/detail", h.OpenDetail).Methods(http.MethodPut)
	api.HandleFunc("/detail", h.CloseDetail).Methods(http.MethodDelete)
	api.HandleFunc("/export", h.OpenExport).Methods(http.MethodPut)
	api.HandleFunc("/export", h.CloseExport).Methods(http.MethodDelete)

	api.HandleFunc("/tags", h.GetAllTags).Methods(http.MethodGet)
	api.HandleFunc("/photos/{photo:[0-9]+}/tags", h.AddTagToPhoto).Methods(http.MethodPost)

	return r
}

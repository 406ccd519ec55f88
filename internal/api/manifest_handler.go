package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/gridironhq/site-content/pkg/sitecontent"
)

// ManifestHandler serves per-section version pointers to public clients.
// Reads never fail: unreachable or unparseable manifests come back as the
// synthetic zero manifest, so a version token can always be derived.
type ManifestHandler struct {
	service sitecontent.Service
}

func NewManifestHandler(service sitecontent.Service) *ManifestHandler {
	return &ManifestHandler{service: service}
}

// Routes returns the router for manifest endpoints
func (h *ManifestHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{section}", h.GetManifest)
	return r
}

func (h *ManifestHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")

	season, err := seasonParam(r)
	if err != nil {
		http.Error(w, "Invalid season", http.StatusBadRequest)
		return
	}

	manifest := h.service.ReadManifest(r.Context(), section, season)
	w.Header().Set("Cache-Control", CacheDataRevalidate)
	render.JSON(w, r, manifest)
}

// seasonParam parses the optional season query parameter.
func seasonParam(r *http.Request) (*int, error) {
	raw := r.URL.Query().Get("season")
	if raw == "" {
		return nil, nil
	}
	season, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &season, nil
}

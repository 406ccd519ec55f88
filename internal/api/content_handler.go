package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/gridironhq/site-content/pkg/sitecontent"
)

// ContentHandler exposes the admin write path: document replacement,
// inspection, and backup restore. Routes are expected to be mounted behind
// RequireAdmin.
type ContentHandler struct {
	service sitecontent.Service
}

func NewContentHandler(service sitecontent.Service) *ContentHandler {
	return &ContentHandler{service: service}
}

// Routes returns the router for admin content endpoints
func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{section}", h.GetDocument)
	r.Post("/{section}", h.WriteDocument)
	r.Get("/{section}/backup", h.GetBackup)
	r.Post("/{section}/restore", h.RestoreBackup)
	return r
}

// WriteDocument replaces a section's canonical document with the submitted
// payload.
func (h *ContentHandler) WriteDocument(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")

	season, err := seasonParam(r)
	if err != nil {
		http.Error(w, "Invalid season", http.StatusBadRequest)
		return
	}

	var payload any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.Error("Failed to decode request", "section", section, "error", err)
		http.Error(w, "Request body must be JSON", http.StatusBadRequest)
		return
	}

	result, err := h.service.WriteDocument(r.Context(), sitecontent.WriteDocumentRequest{
		Section: section,
		Season:  season,
		Payload: payload,
		Editor:  EditorFromContext(r.Context()),
	})
	if err != nil {
		var validation *sitecontent.ValidationError
		if errors.As(err, &validation) {
			http.Error(w, validation.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("Failed to write document", "section", section, "error", err)
		http.Error(w, "Write failed", http.StatusInternalServerError)
		return
	}

	slog.Info("Document written", "section", section, "version", result.Version,
		"backup", result.BackupCreated, "editor", EditorFromContext(r.Context()))
	render.JSON(w, r, result)
}

func (h *ContentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")

	season, err := seasonParam(r)
	if err != nil {
		http.Error(w, "Invalid season", http.StatusBadRequest)
		return
	}

	doc, err := h.service.GetDocument(r.Context(), section, season)
	if err != nil {
		if errors.Is(err, sitecontent.ErrObjectNotFound) {
			http.Error(w, "Document not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to get document", "section", section, "error", err)
		http.Error(w, "Read failed", http.StatusInternalServerError)
		return
	}
	render.JSON(w, r, doc)
}

func (h *ContentHandler) GetBackup(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")

	season, err := seasonParam(r)
	if err != nil {
		http.Error(w, "Invalid season", http.StatusBadRequest)
		return
	}

	doc, meta, err := h.service.GetBackup(r.Context(), section, season)
	if err != nil {
		h.renderBackupError(w, section, err)
		return
	}
	render.JSON(w, r, map[string]any{"document": doc, "meta": meta})
}

func (h *ContentHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")

	season, err := seasonParam(r)
	if err != nil {
		http.Error(w, "Invalid season", http.StatusBadRequest)
		return
	}

	result, err := h.service.RestoreBackup(r.Context(), section, season)
	if err != nil {
		h.renderBackupError(w, section, err)
		return
	}

	slog.Info("Backup restored", "section", section, "editor", EditorFromContext(r.Context()))
	render.JSON(w, r, result)
}

func (h *ContentHandler) renderBackupError(w http.ResponseWriter, section string, err error) {
	switch {
	case errors.Is(err, sitecontent.ErrBackupNotFound):
		http.Error(w, "Backup not found", http.StatusNotFound)
	case errors.Is(err, sitecontent.ErrNotTrackerSection):
		http.Error(w, "Section has no snapshot policy", http.StatusBadRequest)
	default:
		slog.Error("Backup operation failed", "section", section, "error", err)
		http.Error(w, "Backup operation failed", http.StatusInternalServerError)
	}
}

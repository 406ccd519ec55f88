package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gridironhq/site-content/pkg/sitecontent"
)

// ProxyHandler is the single public read path for stored content. It serves
// object-store bytes under a stable URL scheme with a computed cache-control
// policy and conditional GET support. When the store itself is unreachable
// it degrades to fetching the same key from a public base URL.
type ProxyHandler struct {
	store         sitecontent.ObjectStore
	publicBaseURL string
	client        *http.Client
}

func NewProxyHandler(store sitecontent.ObjectStore, publicBaseURL string) *ProxyHandler {
	return &ProxyHandler{
		store:         store,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

// Routes returns the router for the delivery proxy
func (h *ProxyHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/*", h.Serve)
	return r
}

// Serve handles one proxy request: object lookup, conditional check,
// response. No retries; clients retry per standard HTTP semantics.
func (h *ProxyHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if key == "" || !validKey(key) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	query := r.URL.Query()
	bust := query.Has("t") || query.Has("nocache")
	policy := CacheControl(key, bust, query.Has("v"))

	body, info, err := h.store.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, sitecontent.ErrObjectNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		slog.Error("object store unavailable, trying public fallback", "key", key, "err", err)
		h.serveFallback(w, r, key, policy)
		return
	}
	defer body.Close()

	w.Header().Set("Cache-Control", policy)
	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}

	if info.ETag != "" {
		etag := `"` + info.ETag + `"`
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	if info.Size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size))
	}
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("proxy copy interrupted", "key", key, "err", err)
	}
}

// serveFallback is the degraded-but-available path: fetch the same key from
// a publicly reachable base URL before giving up with a server error.
func (h *ProxyHandler) serveFallback(w http.ResponseWriter, r *http.Request, key, policy string) {
	if h.publicBaseURL == "" {
		http.Error(w, "Storage unavailable", http.StatusInternalServerError)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, h.publicBaseURL+"/"+key, nil)
	if err != nil {
		http.Error(w, "Storage unavailable", http.StatusInternalServerError)
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		slog.Error("public fallback failed", "key", key, "err", err)
		http.Error(w, "Storage unavailable", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Storage unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", policy)
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		slog.Warn("fallback copy interrupted", "key", key, "err", err)
	}
}

// validKey rejects keys with parent-directory segments before they reach any
// backend. Keys are /-delimited names, not filesystem paths.
func validKey(key string) bool {
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}

// etagMatches implements If-None-Match comparison, ignoring weak markers.
func etagMatches(headerValue, etag string) bool {
	for _, candidate := range strings.Split(headerValue, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

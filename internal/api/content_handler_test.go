package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridironhq/site-content/pkg/sitecontent"
	memorystorage "github.com/gridironhq/site-content/pkg/sitecontent/storage/memory"
)

func setupContentRouter(t *testing.T) (sitecontent.Service, http.Handler) {
	t.Helper()

	service, err := sitecontent.New(sitecontent.WithObjectStore(memorystorage.New()))
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Mount("/api/content", NewContentHandler(service).Routes())
	router.Mount("/api/manifests", NewManifestHandler(service).Routes())
	return service, router
}

func postJSON(router http.Handler, url, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWriteAndReadDocument(t *testing.T) {
	_, router := setupContentRouter(t)

	w := postJSON(router, "/api/content/redraft?season=2025", `{"season": 2025, "rows": [{"team": "Mudhens", "wins": 9}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result sitecontent.WriteResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEmpty(t, result.UpdatedAt)
	assert.Equal(t, result.UpdatedAt, result.Document["updatedAt"])
	assert.False(t, result.BackupCreated)

	read := httptest.NewRequest(http.MethodGet, "/api/content/redraft?season=2025", nil)
	got := httptest.NewRecorder()
	router.ServeHTTP(got, read)
	require.Equal(t, http.StatusOK, got.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &doc))
	assert.Equal(t, result.UpdatedAt, doc["updatedAt"])
}

func TestWriteDocumentRejectsBadInput(t *testing.T) {
	_, router := setupContentRouter(t)

	tests := []struct {
		name string
		url  string
		body string
	}{
		{"malformed json", "/api/content/redraft", `{"season": 2025,`},
		{"payload is not an object", "/api/content/redraft", `[1, 2, 3]`},
		{"season is not a number", "/api/content/redraft", `{"season": "next year", "rows": []}`},
		{"season query is not a number", "/api/content/redraft?season=soon", `{"rows": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, tt.url, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetDocumentMissing(t *testing.T) {
	_, router := setupContentRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/content/redraft?season=1999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBackupEndpoints(t *testing.T) {
	_, router := setupContentRouter(t)

	t.Run("non-tracker section has no snapshot policy", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/content/redraft/backup?season=2025", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no backup yet", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/content/biggame-wagers/backup?season=2025", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("restore without backup", func(t *testing.T) {
		w := postJSON(router, "/api/content/biggame-wagers/restore?season=2025", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBackupRoundTrip(t *testing.T) {
	_, router := setupContentRouter(t)

	before := `{"season": 2025, "entries": [{"player": "a"}], "eligibility": {"computedAt": "2025-08-01T00:00:00Z"}}`
	after := `{"season": 2025, "entries": [{"player": "a"}, {"player": "b"}], "eligibility": {"computedAt": "2025-08-20T00:00:00Z"}}`

	require.Equal(t, http.StatusOK, postJSON(router, "/api/content/biggame-wagers?season=2025", before).Code)

	w := postJSON(router, "/api/content/biggame-wagers?season=2025", after)
	require.Equal(t, http.StatusOK, w.Code)
	var result sitecontent.WriteResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.BackupCreated)

	req := httptest.NewRequest(http.MethodGet, "/api/content/biggame-wagers/backup?season=2025", nil)
	backup := httptest.NewRecorder()
	router.ServeHTTP(backup, req)
	require.Equal(t, http.StatusOK, backup.Code)

	var payload struct {
		Document map[string]any         `json:"document"`
		Meta     sitecontent.BackupMeta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(backup.Body.Bytes(), &payload))
	entries, ok := payload.Document["entries"].([]any)
	require.True(t, ok)
	assert.Len(t, entries, 1)
	assert.Equal(t, "2025-08-01T00:00:00Z", payload.Meta.FromMarker)
	assert.Equal(t, "2025-08-20T00:00:00Z", payload.Meta.ToMarker)

	restore := postJSON(router, "/api/content/biggame-wagers/restore?season=2025", "")
	require.Equal(t, http.StatusOK, restore.Code)

	read := httptest.NewRequest(http.MethodGet, "/api/content/biggame-wagers?season=2025", nil)
	got := httptest.NewRecorder()
	router.ServeHTTP(got, read)
	require.Equal(t, http.StatusOK, got.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &doc))
	restored, ok := doc["entries"].([]any)
	require.True(t, ok)
	assert.Len(t, restored, 1)
}

func TestManifestEndpoint(t *testing.T) {
	service, router := setupContentRouter(t)

	t.Run("missing manifest falls back to zero", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/manifests/redraft?season=2030", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, CacheDataRevalidate, w.Header().Get("Cache-Control"))

		var manifest sitecontent.Manifest
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &manifest))
		assert.Equal(t, "0", manifest.UpdatedAt)
	})

	t.Run("manifest reflects a write", func(t *testing.T) {
		season := 2025
		_, err := service.WriteDocument(context.Background(), sitecontent.WriteDocumentRequest{
			Section: "redraft",
			Season:  &season,
			Payload: map[string]any{"season": float64(2025), "rows": []any{}},
		})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/manifests/redraft?season=2025", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var manifest sitecontent.Manifest
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &manifest))
		assert.NotEqual(t, "0", manifest.UpdatedAt)
		assert.NotEmpty(t, manifest.VersionToken())
	})
}

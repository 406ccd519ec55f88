package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func mintToken(t *testing.T, secret string, claims map[string]interface{}) string {
	t.Helper()

	ja := jwtauth.New("HS256", []byte(secret), nil)
	_, token, err := ja.Encode(claims)
	require.NoError(t, err)
	return token
}

func adminProtected(t *testing.T) http.Handler {
	t.Helper()

	verifier := NewJWTVerifier(testSecret)
	mw := RequireAdmin(verifier, []string{"commish@example.com"})
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(EditorFromContext(r.Context())))
	}))
}

func TestRequireAdmin(t *testing.T) {
	handler := adminProtected(t)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing token",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "BEARER not-a-jwt",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong signing key",
			authHeader: "BEARER " + mintToken(t, "other-secret", map[string]interface{}{"email": "commish@example.com"}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no email claim",
			authHeader: "BEARER " + mintToken(t, testSecret, map[string]interface{}{"sub": "someone"}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not allowlisted",
			authHeader: "BEARER " + mintToken(t, testSecret, map[string]interface{}{"email": "stranger@example.com"}),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "allowlisted",
			authHeader: "BEARER " + mintToken(t, testSecret, map[string]interface{}{"email": "commish@example.com"}),
			wantStatus: http.StatusOK,
			wantBody:   "commish@example.com",
		},
		{
			name:       "allowlist compares case-insensitively",
			authHeader: "BEARER " + mintToken(t, testSecret, map[string]interface{}{"email": "Commish@Example.com"}),
			wantStatus: http.StatusOK,
			wantBody:   "Commish@Example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/content/redraft", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestEditorFromContextOutsideRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, EditorFromContext(req.Context()))
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/jwtauth"
)

// Verifier turns a bearer token into a verified email. The admin surface
// treats the identity provider as opaque: whatever verifies the token, the
// only fact this layer consumes is the email.
type Verifier interface {
	Verify(ctx context.Context, token string) (email string, err error)
}

// JWTVerifier verifies HS256 bearer tokens carrying an email claim.
type JWTVerifier struct {
	ja *jwtauth.JWTAuth
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{ja: jwtauth.New("HS256", []byte(secret), nil)}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (string, error) {
	t, err := jwtauth.VerifyToken(v.ja, token)
	if err != nil {
		return "", err
	}

	claim, ok := t.Get("email")
	email, _ := claim.(string)
	if !ok || email == "" {
		return "", errors.New("token has no email claim")
	}
	return email, nil
}

type contextKey string

const editorKey contextKey = "editor"

// EditorFromContext returns the verified admin email, or "" outside an
// authenticated request.
func EditorFromContext(ctx context.Context) string {
	email, _ := ctx.Value(editorKey).(string)
	return email
}

// RequireAdmin rejects requests without a valid bearer token (401) and
// requests whose verified email is not in the allowlist (403). The verified
// email is placed in the request context for handlers.
func RequireAdmin(verifier Verifier, allowlist []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowlist))
	for _, email := range allowlist {
		allowed[strings.ToLower(email)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := jwtauth.TokenFromHeader(r)
			if token == "" {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			email, err := verifier.Verify(r.Context(), token)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			if !allowed[strings.ToLower(email)] {
				http.Error(w, "Not authorized", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), editorKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/clipstream/backend/internal/logging"
)

// AccessTokenCookie is the cookie the login handler sets and this middleware reads.
const AccessTokenCookie = "accessToken"

type identityCtxKey struct{}

// TokenVerifier validates an access token and returns the subject user id.
type TokenVerifier interface {
	VerifyAccess(token string) (string, error)
}

// WithIdentity stores the acting user id on the context.
func WithIdentity(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, identityCtxKey{}, userID)
}

// IdentityFrom returns the acting user id resolved by the auth middleware, or
// an empty string for anonymous requests.
func IdentityFrom(ctx context.Context) string {
	if id, ok := ctx.Value(identityCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// RequireAuth rejects requests that do not carry a valid access token, either
// as an Authorization bearer header or the access-token cookie.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "authentication required")
				return
			}

			userID, err := verifier.VerifyAccess(token)
			if err != nil {
				logging.FromContext(r.Context()).Warn("access token rejected", "error", err)
				unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), userID)))
		})
	}
}

// OptionalAuth resolves an identity when a valid token is present but lets
// anonymous requests through.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if userID, err := verifier.VerifyAccess(token); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"statusCode": http.StatusUnauthorized,
		"success":    false,
		"data":       nil,
		"message":    message,
	})
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"drivehub/internal/auth"
	"drivehub/internal/httputil"
)

type contextKey string

const ownerContextKey contextKey = "owner"

// Auth resolves the requesting owner from a bearer token and stores it in
// the request context. Every downstream ownership check depends on this
// value; requests without a valid token never reach a handler.
func Auth(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			ownerID, err := verifier.Verify(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ownerContextKey, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaticOwner injects a fixed owner identity for every request. Dev-only
// stand-in for Auth when AUTH_DISABLED is set.
func StaticOwner(ownerID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ownerContextKey, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerFromContext returns the owner id resolved by the auth middleware,
// or "" if the middleware did not run.
func OwnerFromContext(ctx context.Context) string {
	ownerID, _ := ctx.Value(ownerContextKey).(string)
	return ownerID
}

package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// HeaderUserID carries the authenticated user, set by the gateway.
const HeaderUserID = "X-User-Id"

type ctxKey struct{}

// RequireUserID rejects requests without X-User-Id and stores the id in the context.
func RequireUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if uid == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "missing required header: " + HeaderUserID,
			})

			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
	})
}

// WithUserID returns a copy of ctx carrying the user id.
func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, ctxKey{}, uid)
}

// UserID returns the user id stored by RequireUserID.
func UserID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}

	return ""
}

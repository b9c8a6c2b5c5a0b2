package admin

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// HeaderToken carries the shared secret of the back office.
const HeaderToken = "X-Admin-Token"

// RequireToken lets through only requests whose X-Admin-Token matches token.
// With an empty token every request is rejected.
func RequireToken(token string) func(http.Handler) http.Handler {
	expected := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(strings.TrimSpace(r.Header.Get(HeaderToken)))
			if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "invalid or missing header: " + HeaderToken,
				})

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

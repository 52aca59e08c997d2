// Package api implements the scanboard REST API using chi.
package api

import (
	"net/http"
	"strings"

	"github.com/starford/scanboard/internal/auth"
)

// AuthMiddleware returns middleware that validates a Bearer token.
// In disabled mode all requests pass through. In token mode the header must
// carry the static token; in session mode it must carry the token issued by
// the last sign-in, as reported by validSession.
func AuthMiddleware(mode auth.Mode, token string, validSession func(string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if mode == auth.ModeDisabled {
				next.ServeHTTP(w, r)
				return
			}
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			got := strings.TrimPrefix(header, "Bearer ")
			ok := false
			switch mode {
			case auth.ModeToken:
				ok = token != "" && got == token
			case auth.ModeSession:
				ok = validSession != nil && validSession(got)
			}
			if !ok {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package httpapi

import (
	"net/http"
	"strings"
)

// extractToken pulls the first non-empty credential candidate from the
// request, in a fixed precedence order: Authorization bearer header,
// X-API-Key header, token query parameter, access_token query parameter.
// Returns "" when no candidate is present.
func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		const prefix = "bearer "
		if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
			if token := strings.TrimSpace(auth[len(prefix):]); token != "" {
				return token
			}
		}
	}

	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}

	q := r.URL.Query()
	if token := q.Get("token"); token != "" {
		return token
	}
	return q.Get("access_token")
}

// authMiddleware gates the render endpoints behind the configured secret.
// With no secret configured the gate is open. The comparison is plain
// string equality, matching the long-standing service behavior.
// Runs before any rendering or storage work so an unauthenticated caller
// never costs a PDF conversion.
func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		if extractToken(r) != s.cfg.APIToken {
			writeDetail(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

package http

import (
	"net/http"
	"strings"
)

// SecurityHeaders adds security-related headers to all responses.
// Responses under /auth carry credentials or tokens and are never cached.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		switch {
		case strings.HasPrefix(r.URL.Path, "/swagger/"):
			// Swagger UI needs scripts, styles, and images to render
			h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		case strings.HasPrefix(r.URL.Path, "/auth/"):
			h.Set("Content-Security-Policy", "default-src 'none'")
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
		default:
			h.Set("Content-Security-Policy", "default-src 'none'")
		}

		next.ServeHTTP(w, r)
	})
}

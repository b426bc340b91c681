package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// EnableCORS answers cross-origin requests from allowedOrigins, or reflects
// any origin when the list is empty.
func EnableCORS(next http.Handler, allowedOrigins ...string) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           600,
	}
	if len(allowedOrigins) == 0 {
		// "*" is not valid together with credentials
		opts.AllowOriginFunc = func(r *http.Request, origin string) bool { return true }
	} else {
		for _, o := range allowedOrigins {
			opts.AllowedOrigins = append(opts.AllowedOrigins, strings.TrimRight(o, "/"))
		}
	}
	return cors.Handler(opts)(next)
}

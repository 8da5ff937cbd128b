package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

// CORS builds the cross-origin policy for the given origins. An empty list
// means any origin; credentials are only allowed when origins are explicit.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	wildcard := slices.Contains(origins, "*")

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	})
}

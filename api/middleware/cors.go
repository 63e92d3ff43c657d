package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
	"github.com/pawfund/pawfund-backend/pkg/config"
)

// GuestTokenHeader carries the anonymous cart token.
const GuestTokenHeader = "X-Guest-Token"

// CORS applies the configured origin allow-list.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", GuestTokenHeader, "X-Requested-With"},
		ExposedHeaders:   []string{GuestTokenHeader, requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

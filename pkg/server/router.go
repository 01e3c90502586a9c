package server

import (
	"strings"

	"github.com/go-chi/chi"
	"github.com/rs/cors"
)

// NewRouter wires the API routes behind CORS. Non-POST methods on the API
// paths get chi's default 405.
func NewRouter(handlers *Handlers, allowedOrigins string) *chi.Mux {
	router := chi.NewRouter()
	router.Use(cors.New(cors.Options{
		AllowCredentials: true,
		AllowedOrigins:   splitOrigins(allowedOrigins),
		AllowedMethods:   []string{"POST", "GET", "HEAD"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
	}).Handler)

	router.Post("/api/chat", handlers.Chat)
	router.Post("/api/nudge", handlers.Nudge)

	return router
}

func splitOrigins(allowedOrigins string) []string {
	parts := strings.Split(allowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

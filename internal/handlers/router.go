package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appMiddleware "github.com/collabhub/backend/internal/middleware"
)

// NewRouter wires the HTTP API. metricsHandler may be nil.
func NewRouter(collaborators *CollaboratorHandler, verifier appMiddleware.TokenVerifier, metricsHandler http.Handler) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(appMiddleware.OptionalAuth(verifier))

		r.Route("/collaborators/{collaboratorId}", func(r chi.Router) {
			r.Get("/", collaborators.GetPage)
			r.Post("/page", collaborators.PostPage)
			r.Post("/session-requests", collaborators.RequestSession)
		})
	})

	return r
}

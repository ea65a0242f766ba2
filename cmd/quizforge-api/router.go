// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/atlasedu/quizforge/cmd/quizforge-api/handlers"
	"github.com/atlasedu/quizforge/cmd/quizforge-api/middleware"
	"github.com/atlasedu/quizforge/internal/config"
	"github.com/atlasedu/quizforge/internal/observability"
	"github.com/atlasedu/quizforge/internal/pipeline"
	"github.com/atlasedu/quizforge/internal/storage"
)

// AppDeps bundles the constructed collaborators the router wires into
// handlers.
type AppDeps struct {
	Orchestrator *pipeline.Orchestrator
	Checkpoints  *pipeline.CheckpointStore
	Repos        *storage.Repositories
}

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.WriteTimeout))

	// Health check (unauthenticated)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"quizforge"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	})

	generateHandler := handlers.NewGenerateHandler(logger, deps.Orchestrator, deps.Checkpoints)
	runsHandler := handlers.NewRunsHandler(deps.Checkpoints)
	quizzesHandler := handlers.NewQuizzesHandler(logger, deps.Repos)
	documentsHandler := handlers.NewDocumentsHandler(logger, deps.Repos)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Enabled: cfg.Auth.Enabled,
			APIKey:  cfg.Auth.APIKey,
		}))

		r.Route("/quizzes", func(r chi.Router) {
			r.Post("/generate", generateHandler.Generate)
			r.Post("/generate/upload", generateHandler.GenerateUpload)
			r.Get("/", quizzesHandler.List)
			r.Get("/{quizId}", quizzesHandler.Get)
			r.Post("/{quizId}/publish", quizzesHandler.Publish)
			r.Post("/{quizId}/score", quizzesHandler.Score)
		})

		r.Route("/runs", func(r chi.Router) {
			r.Get("/{runId}", runsHandler.GetRun)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", documentsHandler.Create)
			r.Get("/", documentsHandler.List)
		})
	})

	return r
}

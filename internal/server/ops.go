package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/spahost/internal/handler/health"
)

// NewOpsHandler serves health and API documentation. It runs on its own
// listener so the public front door keeps its catch-all semantics.
func NewOpsHandler(logger *slog.Logger, checks map[string]health.Checker) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(newStructuredLogger(logger))

	r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("spahost", "/openapi.json", "/docs"))

	return r
}

// Package http wires the task-storage API routes.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/hallgrim/dayplan/internal/http/handler"
)

// NewRouter creates and configures the chi router with all middleware and
// routes. The returned handler is wrapped with otelhttp so every request
// produces a server span.
func NewRouter(server *handler.Server) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			slog.ErrorContext(req.Context(), "failed to write health check response", "error", err)
		}
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/lists", server.CreateList)
		r.Post("/lists/{listID}:move", server.MoveList)

		r.Route("/lists/{listID}", func(r chi.Router) {
			r.Get("/", server.GetList)
			r.Post("/items", server.CreateItem)
			r.Post("/items:reorder", server.Reorder)
			r.Put("/items/{itemID}", server.UpdateItem)
			r.Delete("/items/{itemID}", server.DeleteItem)
			r.Post("/items/{itemID}:move", server.Move)
		})
	})

	return otelhttp.NewHandler(r, "taskstore")
}

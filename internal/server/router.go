package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the REST endpoints and the Prometheus handler onto a chi mux.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)

	r.Get("/", h.Index)
	r.Get("/history", h.History)
	r.Post("/jetski", h.Jetski)
	r.Post("/analyze", h.Analyze)
	r.Post("/storyboard", h.Storyboard)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

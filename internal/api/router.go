package api

import (
	"github.com/go-chi/chi/v5"
)

func NewRouter(handlers *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Get("/", handlers.HandleRoot)

	// System metrics only; application metrics are served per user
	r.Get("/metrics", handlers.HandleAllMetrics)
	r.Get("/metrics/retroachievements/{username}", handlers.HandleUserMetrics)

	// Calls from the UI, one method per request
	r.Post("/plugin/{method}", handlers.HandlePluginCall)

	return r
}

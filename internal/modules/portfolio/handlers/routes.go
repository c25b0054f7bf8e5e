package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/objectives", h.HandleGetObjectives) // Supported objectives and defaults
		r.Post("/optimize", h.HandleOptimize)       // Full optimization report
		r.Post("/charts/{kind}", h.HandleChart)     // frontier | cumulative | allocation | breaches
	})
}

package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all analytics routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/summary", h.HandleSummary)
		r.Get("/equity", h.HandleEquity)
		r.Get("/drawdown", h.HandleDrawdown)
		r.Get("/streaks", h.HandleStreaks)
		r.Get("/heatmap", h.HandleHeatmap)
		r.Get("/breakdown/{dimension}", h.HandleBreakdown)
	})
}

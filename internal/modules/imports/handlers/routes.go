package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all import routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/imports", func(r chi.Router) {
		r.Get("/", h.HandleHistory)
		r.Post("/", h.HandleImport)
		r.Post("/preview", h.HandlePreview)
		r.Delete("/{id}", h.HandleRevert)
	})
}

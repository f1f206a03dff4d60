package chore

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns chore router
func (h *Handler) Routes(authMiddleware, parentOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/my", h.ListMy)
	r.Get("/{id}", h.GetByID)
	r.Post("/{id}/submit", h.Submit)

	// Parent routes
	r.Group(func(r chi.Router) {
		r.Use(parentOnly)
		r.Post("/", h.Create)
		r.Get("/family", h.ListFamily)
		r.Post("/{id}/decision", h.Decide)
	})

	return r
}

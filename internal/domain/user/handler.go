package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/famfin/famfin-api/internal/pkg/errorhandler"
	"github.com/famfin/famfin-api/internal/pkg/response"
)

// Handler serves the family roster
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Members handles GET /family/members
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	members, err := h.svc.FamilyMembers(r.Context(), actor.FamilyID)
	if err != nil {
		errorhandler.Internal(r.Context(), w, "family members", err)
		return
	}
	response.OK(w, members)
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/members", h.Members)
	return r
}

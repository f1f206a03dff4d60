package request

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/famfin/famfin-api/internal/domain/user"
	"github.com/famfin/famfin-api/internal/pkg/errorhandler"
	"github.com/famfin/famfin-api/internal/pkg/response"
	"github.com/famfin/famfin-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	m, err := h.svc.Create(r.Context(), actor, req.AmountCents, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, m)
}

// List handles GET /requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	list, err := h.svc.List(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, list)
}

// Decide handles POST /requests/{id}/decision
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid request id")
		return
	}

	var req DecisionRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	var m *MoneyRequest
	if req.Decision == "approve" {
		m, err = h.svc.Approve(r.Context(), actor, id)
	} else {
		m, err = h.svc.Deny(r.Context(), actor, id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, m)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrReasonRequired):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrOnlyChildren), errors.Is(err, ErrOnlyParents):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrRequestNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrAlreadyDecided):
		response.Conflict(w, err.Error())
	default:
		errorhandler.Internal(r.Context(), w, "request", err)
	}
}

func (h *Handler) Routes(authMiddleware, parentOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.With(parentOnly).Post("/{id}/decision", h.Decide)
	return r
}

package chore

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

// Handler handles chore HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates chore handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /chores
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req CreateChoreRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	in := CreateInput{
		AssigneeID:       req.AssigneeID,
		Title:            req.Title,
		Description:      req.Description,
		RewardValueCents: req.RewardValueCents,
		DueDate:          req.DueDate,
	}
	if req.RecurrenceType != "" {
		rec := Recurrence(req.RecurrenceType)
		in.Recurrence = &rec
	}

	c, err := h.service.Create(r.Context(), actor, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	response.Created(w, ChoreResponseFromEntity(c))
}

// ListMy handles GET /chores/my
func (h *Handler) ListMy(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	chores, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		handleError(w, r, err)
		return
	}
	response.OK(w, ChoreResponses(chores))
}

// ListFamily handles GET /chores/family
func (h *Handler) ListFamily(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	chores, err := h.service.ListFamily(r.Context(), actor)
	if err != nil {
		handleError(w, r, err)
		return
	}
	response.OK(w, ChoreResponses(chores))
}

// GetByID handles GET /chores/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid chore id")
		return
	}

	c, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	response.OK(w, ChoreResponseFromEntity(c))
}

// Submit handles POST /chores/{id}/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid chore id")
		return
	}

	c, err := h.service.Submit(r.Context(), actor, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	response.OK(w, ChoreResponseFromEntity(c))
}

// Decide handles POST /chores/{id}/decision with {"decision": "approve"|"reject"}
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid chore id")
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

	var c *Chore
	if req.Decision == "approve" {
		c, err = h.service.Approve(r.Context(), actor, id)
	} else {
		c, err = h.service.Reject(r.Context(), actor, id)
	}
	if err != nil {
		handleError(w, r, err)
		return
	}
	response.OK(w, ChoreResponseFromEntity(c))
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrChoreNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotAssignee), errors.Is(err, ErrOnlyParents):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrChoreFinalized), errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrAssigneeNotChild),
		errors.Is(err, ErrInvalidReward),
		errors.Is(err, ErrInvalidRecurrence),
		errors.Is(err, ErrTitleRequired):
		response.BadRequest(w, err.Error())
	default:
		errorhandler.Internal(r.Context(), w, "chore", err)
	}
}

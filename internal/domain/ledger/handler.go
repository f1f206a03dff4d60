package ledger

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

// MyWallet handles GET /wallet
func (h *Handler) MyWallet(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	h.writeWallet(w, r, actor, actor.UserID)
}

// MemberWallet handles GET /wallet/{userID}
func (h *Handler) MemberWallet(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}
	h.writeWallet(w, r, actor, userID)
}

func (h *Handler) writeWallet(w http.ResponseWriter, r *http.Request, actor user.Actor, userID uuid.UUID) {
	view, err := h.svc.Wallet(r.Context(), actor, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, view)
}

// Accounts handles GET /wallet/{userID}/accounts
func (h *Handler) Accounts(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	accs, err := h.svc.Accounts(r.Context(), actor, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, accs)
}

// GrantAllowance handles POST /allowances
func (h *Handler) GrantAllowance(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req GrantAllowanceRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	txID, err := h.svc.GrantAllowance(r.Context(), actor, req.ChildID, req.AmountCents, req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, TransactionCreatedResponse{TransactionID: txID})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrEmptyPostings),
		errors.Is(err, ErrInvalidPosting),
		errors.Is(err, ErrUnbalancedTransaction),
		errors.Is(err, ErrMissingDescription):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, err.Error())
	default:
		errorhandler.Internal(r.Context(), w, "ledger", err)
	}
}

func (h *Handler) Routes(authMiddleware, parentOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/wallet", h.MyWallet)
	r.Get("/wallet/{userID}", h.MemberWallet)
	r.Get("/wallet/{userID}/accounts", h.Accounts)
	r.With(parentOnly).Post("/allowances", h.GrantAllowance)
	return r
}

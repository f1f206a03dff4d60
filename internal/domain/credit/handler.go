package credit

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/famfin/famfin-api/internal/domain/user"
	"github.com/famfin/famfin-api/internal/pkg/errorhandler"
	"github.com/famfin/famfin-api/internal/pkg/response"
	"github.com/famfin/famfin-api/internal/pkg/validator"
)

// Handler serves credit score and card endpoints
type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Score handles GET /credit/score?user_id=
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	userID, ok := targetUser(w, r, actor)
	if !ok {
		return
	}

	score, err := h.svc.CalculateCreditScore(r.Context(), actor, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, score)
}

// Tiers handles GET /credit/tiers
func (h *Handler) Tiers(w http.ResponseWriter, r *http.Request) {
	type tierView struct {
		Tier        Tier   `json:"tier"`
		CardName    string `json:"card_name"`
		MinScore    int    `json:"min_score"`
		MaxScore    int    `json:"max_score"`
		LimitCents  int64  `json:"limit_cents"`
		APR         string `json:"apr"`
		RewardsRate string `json:"rewards_rate"`
	}
	out := make([]tierView, 0, len(tiers))
	for _, t := range Tiers() {
		out = append(out, tierView{
			Tier: t.Tier, CardName: t.CardName, MinScore: t.MinScore, MaxScore: t.MaxScore,
			LimitCents: t.LimitCents, APR: t.APR.StringFixed(1), RewardsRate: t.RewardsRate.StringFixed(1),
		})
	}
	response.OK(w, out)
}

// ListCards handles GET /credit/cards?user_id=
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	userID, ok := targetUser(w, r, actor)
	if !ok {
		return
	}

	cards, err := h.svc.ListCards(r.Context(), actor, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, cards)
}

// Apply handles POST /credit/cards
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req ApplyRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	var requested *Tier
	if req.Tier != "" {
		t := Tier(req.Tier)
		requested = &t
	}

	card, err := h.svc.ApplyForCreditCard(r.Context(), actor, requested)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, card)
}

// Applications handles GET /credit/applications
func (h *Handler) Applications(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	cards, err := h.svc.ListApplications(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, cards)
}

type cardAction func(ctx context.Context, actor user.Actor, cardID uuid.UUID) (*Card, error)

// cardChange wraps approve/decline/freeze/unfreeze/upgrade, which share a shape.
func cardChange(action cardAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := user.ActorFromContext(r.Context())
		if !ok {
			response.Unauthorized(w, "unauthorized")
			return
		}
		cardID, ok := cardIDParam(w, r)
		if !ok {
			return
		}

		card, err := action(r.Context(), actor, cardID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.OK(w, card)
	}
}

// Purchase handles POST /credit/cards/{id}/purchases
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	cardID, ok := cardIDParam(w, r)
	if !ok {
		return
	}

	var req PurchaseRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	tx, err := h.svc.MakeCreditPurchase(r.Context(), actor, cardID, req.AmountCents, req.Description, req.Merchant)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, tx)
}

// Pay handles POST /credit/cards/{id}/payments
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	cardID, ok := cardIDParam(w, r)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	payment, err := h.svc.MakeCreditPayment(r.Context(), actor, cardID, req.AmountCents)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, payment)
}

// UpgradeEligibility handles GET /credit/cards/{id}/upgrade
func (h *Handler) UpgradeEligibility(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	cardID, ok := cardIDParam(w, r)
	if !ok {
		return
	}

	e, err := h.svc.CheckTierUpgradeEligibility(r.Context(), actor, cardID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, e)
}

// Transactions handles GET /credit/cards/{id}/transactions?limit=&offset=
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	cardID, ok := cardIDParam(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	txs, err := h.svc.ListTransactions(r.Context(), actor, cardID, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, txs)
}

func targetUser(w http.ResponseWriter, r *http.Request, actor user.Actor) (uuid.UUID, bool) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		return actor.UserID, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(w, "invalid user_id")
		return uuid.Nil, false
	}
	return id, true
}

func cardIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid card id")
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidTier):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrCardNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrCardNotActive),
		errors.Is(err, ErrCreditLimitExceeded),
		errors.Is(err, ErrPaymentExceedsBalance),
		errors.Is(err, ErrNotEligible),
		errors.Is(err, ErrApplicationPending),
		errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, err.Error())
	default:
		errorhandler.Internal(r.Context(), w, "credit", err)
	}
}

func (h *Handler) Routes(authMiddleware, parentOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/score", h.Score)
	r.Get("/tiers", h.Tiers)
	r.Get("/cards", h.ListCards)
	r.Post("/cards", h.Apply)

	r.Route("/cards/{id}", func(r chi.Router) {
		r.Post("/purchases", h.Purchase)
		r.Post("/payments", h.Pay)
		r.Get("/transactions", h.Transactions)
		r.Get("/upgrade", h.UpgradeEligibility)
		r.Post("/upgrade", cardChange(h.svc.UpgradeCreditCardTier))

		r.Group(func(r chi.Router) {
			r.Use(parentOnly)
			r.Post("/approve", cardChange(h.svc.ApproveApplication))
			r.Post("/decline", cardChange(h.svc.DeclineApplication))
			r.Post("/freeze", cardChange(h.svc.FreezeCard))
			r.Post("/unfreeze", cardChange(h.svc.UnfreezeCard))
		})
	})

	r.With(parentOnly).Get("/applications", h.Applications)
	return r
}

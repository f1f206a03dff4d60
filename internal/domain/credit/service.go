package credit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/famfin/famfin-api/internal/domain/user"
	"github.com/famfin/famfin-api/internal/pkg/cache"
	"github.com/famfin/famfin-api/internal/pkg/database"
	"github.com/famfin/famfin-api/internal/pkg/metrics"
)

// OnTimeDay is the last day of the month a payment still counts as on time.
const OnTimeDay = 5

// service implements the Service interface
type service struct {
	repo  Repository
	users Users
	tx    database.TxRunner
	cache *cache.Cache
	now   func() time.Time
}

type Option func(*service)

// WithClock replaces time.Now; payments and scoring read the clock.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates a new credit service
func NewService(repo Repository, users Users, tx database.TxRunner, c *cache.Cache, opts ...Option) Service {
	s := &service{repo: repo, users: users, tx: tx, cache: c, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CalculateCreditScore(ctx context.Context, actor user.Actor, userID uuid.UUID) (*ScoreBreakdown, error) {
	if _, err := s.authorizeUser(ctx, actor, userID); err != nil {
		return nil, err
	}
	return s.score(ctx, userID)
}

func (s *service) score(ctx context.Context, userID uuid.UUID) (*ScoreBreakdown, error) {
	now := s.now()
	cards, err := s.repo.ListCardsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPaymentsSince(ctx, userID, now.Add(-paymentWindow))
	if err != nil {
		return nil, err
	}

	b := CalculateScore(cards, payments, now)
	metrics.CreditScore.Observe(float64(b.TotalScore))

	// The stored column is a cache of this computation, never an input to it.
	if err := s.users.RecordCreditScore(ctx, userID, b.TotalScore); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to record credit score")
	}
	return &b, nil
}

func (s *service) ApplyForCreditCard(ctx context.Context, actor user.Actor, requested *Tier) (*Card, error) {
	if requested != nil && !requested.Valid() {
		return nil, ErrInvalidTier
	}

	b, err := s.score(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	tier := DetermineTier(b.TotalScore)
	if requested != nil {
		tier = LowerTier(*requested, tier)
	}
	cfg, _ := tier.Config()

	card := &Card{
		ID:          uuid.New(),
		UserID:      actor.UserID,
		CardName:    cfg.CardName,
		Tier:        cfg.Tier,
		LimitCents:  cfg.LimitCents,
		APR:         cfg.APR,
		RewardsRate: cfg.RewardsRate,
		OpenedAt:    s.now(),
		Status:      CardStatusPendingApproval,
	}
	err = s.tx.WithTx(ctx, func(q database.Querier) error {
		return s.repo.CreateCard(ctx, q, card)
	})
	if err != nil {
		metrics.CreditOperations.WithLabelValues("apply", outcome(err)).Inc()
		return nil, err
	}

	metrics.CreditOperations.WithLabelValues("apply", "ok").Inc()
	metrics.WorkflowTransitions.WithLabelValues("credit_card", string(CardStatusPendingApproval)).Inc()
	s.invalidate(ctx, actor.FamilyID, actor.UserID)
	log.Info().
		Str("user_id", actor.UserID.String()).
		Str("card_id", card.ID.String()).
		Str("tier", string(card.Tier)).
		Int("credit_score", b.TotalScore).
		Msg("credit card application submitted")
	return card, nil
}

func (s *service) ApproveApplication(ctx context.Context, actor user.Actor, cardID uuid.UUID) (*Card, error) {
	return s.transition(ctx, actor, cardID, CardStatusPendingApproval, CardStatusActive)
}

func (s *service) DeclineApplication(ctx context.Context, actor user.Actor, cardID uuid.UUID) (*Card, error) {
	return s.transition(ctx, actor, cardID, CardStatusPendingApproval, CardStatusClosed)
}

func (s *service) FreezeCard(ctx context.Context, actor user.Actor, cardID uuid.UUID) (*Card, error) {
	return s.transition(ctx, actor, cardID, CardStatusActive, CardStatusFrozen)
}

func (s *service) UnfreezeCard(ctx context.Context, actor user.Actor, cardID uuid.UUID) (*Card, error) {
	return s.transition(ctx, actor, cardID, CardStatusFrozen, CardStatusActive)
}

// transition moves a card from -> to on behalf of a parent in the owner's family.
func (s *service) transition(ctx context.Context, actor user.Actor, cardID uuid.UUID, from, to CardStatus) (*Card, error) {
	if !actor.IsParent() {
		return nil, ErrForbidden
	}

	var card *Card
	err := s.tx.WithTx(ctx, func(q database.Querier) error {
		var err error
		card, err = s.repo.LockCard(ctx, q, cardID)
		if err != nil {
			return err
		}
		if _, err := s.authorizeUser(ctx, actor, card.UserID); err != nil {
			return err
		}
		if card.Status != from {
			return ErrInvalidTransition
		}
		card.Status = to
		if from == CardStatusPendingApproval && to == CardStatusActive {
			// Card age counts from activation, not from the application.
			card.OpenedAt = s.now()
		}
		return s.repo.UpdateStatus(ctx, q, card)
	})
	if err != nil {
		return nil, err
	}

	metrics.WorkflowTransitions.WithLabelValues("credit_card", string(to)).Inc()
	s.invalidate(ctx, actor.FamilyID, card.UserID)
	log.Info().
		Str("card_id", card.ID.String()).
		Str("user_id", card.UserID.String()).
		Str("parent_id", actor.UserID.String()).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("credit card status changed")
	return card, nil
}

// ListApplications is the parent's review queue (family:{id}:cardApplications).
func (s *service) ListApplications(ctx context.Context, actor user.Actor) ([]Card, error) {
	if !actor.IsParent() {
		return nil, ErrForbidden
	}
	return cache.GetOrLoad(ctx, s.cache, cache.FamilyCardApplicationsKey(actor.FamilyID), s.cache.TTLs().CardApplications,
		func(ctx context.Context) ([]Card, error) {
			return s.repo.ListPendingByFamily(ctx, actor.FamilyID)
		})
}

func (s *service) MakeCreditPurchase(ctx context.Context, actor user.Actor, cardID uuid.UUID, amountCents int64, description string, merchant *string) (*CreditTransaction, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = "Purchase"
	}

	var rec *CreditTransaction
	err := s.tx.WithTx(ctx, func(q database.Querier) error {
		card, err := s.repo.LockCard(ctx, q, cardID)
		if err != nil {
			return err
		}
		if card.UserID != actor.UserID {
			return ErrCardNotFound
		}
		if card.Status != CardStatusActive {
			return ErrCardNotActive
		}
		if card.BalanceCents+amountCents > card.LimitCents {
			return ErrCreditLimitExceeded
		}

		card.BalanceCents += amountCents
		if err := s.repo.UpdateBalance(ctx, q, card); err != nil {
			return err
		}
		rec = &CreditTransaction{
			ID:          uuid.New(),
			CardID:      card.ID,
			UserID:      card.UserID,
			AmountCents: amountCents,
			Type:        TxTypePurchase,
			Description: description,
			Merchant:    merchant,
		}
		return s.repo.InsertTransaction(ctx, q, rec)
	})
	metrics.CreditOperations.WithLabelValues("purchase", outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, cache.UserCardsKey(actor.UserID))
	log.Info().
		Str("card_id", cardID.String()).
		Str("user_id", actor.UserID.String()).
		Int64("amount_cents", amountCents).
		Msg("credit purchase recorded")
	return rec, nil
}

func (s *service) MakeCreditPayment(ctx context.Context, actor user.Actor, cardID uuid.UUID, amountCents int64) (*Payment, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	now := s.now()
	var payment *Payment
	err := s.tx.WithTx(ctx, func(q database.Querier) error {
		card, err := s.repo.LockCard(ctx, q, cardID)
		if err != nil {
			return err
		}
		if card.UserID != actor.UserID {
			return ErrCardNotFound
		}
		if card.Status != CardStatusActive && card.Status != CardStatusFrozen {
			return ErrCardNotActive
		}
		if amountCents > card.BalanceCents {
			return ErrPaymentExceedsBalance
		}

		card.BalanceCents -= amountCents
		card.LastPaymentAt = &now
		if err := s.repo.UpdateBalance(ctx, q, card); err != nil {
			return err
		}

		payment = &Payment{
			ID:          uuid.New(),
			CardID:      card.ID,
			UserID:      card.UserID,
			AmountCents: amountCents,
			PaymentDate: now,
			IsOnTime:    now.Day() <= OnTimeDay,
		}
		if err := s.repo.InsertPayment(ctx, q, payment); err != nil {
			return err
		}
		return s.repo.InsertTransaction(ctx, q, &CreditTransaction{
			ID:          uuid.New(),
			CardID:      card.ID,
			UserID:      card.UserID,
			AmountCents: -amountCents,
			Type:        TxTypePayment,
			Description: "Payment",
		})
	})
	metrics.CreditOperations.WithLabelValues("payment", outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, cache.UserCardsKey(actor.UserID))
	log.Info().
		Str("card_id", cardID.String()).
		Str("user_id", actor.UserID.String()).
		Int64("amount_cents", amountCents).
		Bool("on_time", payment.IsOnTime).
		Msg("credit payment recorded")
	return payment, nil
}

func (s *service) CheckTierUpgradeEligibility(ctx context.Context, actor user.Actor, cardID uuid.UUID) (*Eligibility, error) {
	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeUser(ctx, actor, card.UserID); err != nil {
		return nil, err
	}
	return s.eligibility(ctx, card)
}

func (s *service) eligibility(ctx context.Context, card *Card) (*Eligibility, error) {
	b, err := s.score(ctx, card.UserID)
	if err != nil {
		return nil, err
	}
	e := &Eligibility{CurrentTier: card.Tier, CreditScore: b.TotalScore}
	if qualified := DetermineTier(b.TotalScore); qualified.Rank() > card.Tier.Rank() {
		e.Eligible = true
		e.NewTier = &qualified
	}
	return e, nil
}

func (s *service) UpgradeCreditCardTier(ctx context.Context, actor user.Actor, cardID uuid.UUID) (*Card, error) {
	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != actor.UserID {
		return nil, ErrCardNotFound
	}

	// Eligibility is always recomputed here; a client-side check may be stale.
	e, err := s.eligibility(ctx, card)
	if err != nil {
		return nil, err
	}
	if !e.Eligible {
		metrics.CreditOperations.WithLabelValues("upgrade", "rejected").Inc()
		return nil, ErrNotEligible
	}
	cfg, _ := e.NewTier.Config()

	err = s.tx.WithTx(ctx, func(q database.Querier) error {
		locked, err := s.repo.LockCard(ctx, q, cardID)
		if err != nil {
			return err
		}
		if locked.Status != CardStatusActive {
			return ErrCardNotActive
		}
		if cfg.Tier.Rank() <= locked.Tier.Rank() {
			return ErrNotEligible
		}
		locked.Tier = cfg.Tier
		locked.CardName = cfg.CardName
		locked.LimitCents = cfg.LimitCents
		locked.APR = cfg.APR
		locked.RewardsRate = cfg.RewardsRate
		if err := s.repo.UpdateTier(ctx, q, locked); err != nil {
			return err
		}
		card = locked
		return nil
	})
	metrics.CreditOperations.WithLabelValues("upgrade", outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, cache.UserCardsKey(actor.UserID))
	log.Info().
		Str("card_id", card.ID.String()).
		Str("user_id", card.UserID.String()).
		Str("tier", string(card.Tier)).
		Msg("credit card tier upgraded")
	return card, nil
}

// ListCards is cached under user:{id}:cards.
func (s *service) ListCards(ctx context.Context, actor user.Actor, userID uuid.UUID) ([]Card, error) {
	if _, err := s.authorizeUser(ctx, actor, userID); err != nil {
		return nil, err
	}
	return cache.GetOrLoad(ctx, s.cache, cache.UserCardsKey(userID), s.cache.TTLs().Wallet,
		func(ctx context.Context) ([]Card, error) {
			return s.repo.ListCardsByUser(ctx, userID)
		})
}

func (s *service) ListTransactions(ctx context.Context, actor user.Actor, cardID uuid.UUID, limit, offset int) ([]CreditTransaction, error) {
	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeUser(ctx, actor, card.UserID); err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, cardID, limit, offset)
}

// authorizeUser lets actors see themselves and parents see their family.
func (s *service) authorizeUser(ctx context.Context, actor user.Actor, userID uuid.UUID) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if u.ID == actor.UserID || actor.CanManage(u) {
		return u, nil
	}
	return nil, ErrForbidden
}

func (s *service) invalidate(ctx context.Context, familyID, userID uuid.UUID) {
	s.cache.Delete(ctx,
		cache.FamilyCardApplicationsKey(familyID),
		cache.UserCardsKey(userID),
	)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInternal):
		return "error"
	default:
		return "rejected"
	}
}

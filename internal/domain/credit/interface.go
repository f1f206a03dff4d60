package credit

import (
	"context"

	"github.com/google/uuid"

	"github.com/famfin/famfin-api/internal/domain/user"
)

// Service is the credit scoring engine plus the card tier state machine.
type Service interface {
	// CalculateCreditScore recomputes a user's score from stored history and
	// records it on the user row.
	CalculateCreditScore(ctx context.Context, actor user.Actor, userID uuid.UUID) (*ScoreBreakdown, error)

	// ApplyForCreditCard opens a PENDING_APPROVAL card at min(requested, qualified).
	// A nil requested tier means "whatever I qualify for".
	ApplyForCreditCard(ctx context.Context, actor user.Actor, requested *Tier) (*Card, error)

	// Application review and freezing are parent decisions.
	ApproveApplication(ctx context.Context, actor user.Actor, cardID uuid.UUID) (*Card, error)
	DeclineApplication(ctx context.Context, actor user.Actor, cardID uuid.UUID) (*Card, error)
	FreezeCard(ctx context.Context, actor user.Actor, cardID uuid.UUID) (*Card, error)
	UnfreezeCard(ctx context.Context, actor user.Actor, cardID uuid.UUID) (*Card, error)
	ListApplications(ctx context.Context, actor user.Actor) ([]Card, error)

	MakeCreditPurchase(ctx context.Context, actor user.Actor, cardID uuid.UUID, amountCents int64, description string, merchant *string) (*CreditTransaction, error)
	MakeCreditPayment(ctx context.Context, actor user.Actor, cardID uuid.UUID, amountCents int64) (*Payment, error)

	CheckTierUpgradeEligibility(ctx context.Context, actor user.Actor, cardID uuid.UUID) (*Eligibility, error)
	UpgradeCreditCardTier(ctx context.Context, actor user.Actor, cardID uuid.UUID) (*Card, error)

	ListCards(ctx context.Context, actor user.Actor, userID uuid.UUID) ([]Card, error)
	ListTransactions(ctx context.Context, actor user.Actor, cardID uuid.UUID, limit, offset int) ([]CreditTransaction, error)
}

// Users is what the credit service needs from the user package.
type Users interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	RecordCreditScore(ctx context.Context, id uuid.UUID, score int) error
}

package credit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tier is a card product configuration gated by score range.
type Tier string

const (
	TierStarter Tier = "STARTER"
	TierBuilder Tier = "BUILDER"
	TierStrong  Tier = "STRONG"
	TierElite   Tier = "ELITE"
)

type CardStatus string

const (
	CardStatusPendingApproval CardStatus = "PENDING_APPROVAL"
	CardStatusActive          CardStatus = "ACTIVE"
	CardStatusFrozen          CardStatus = "FROZEN"
	CardStatusClosed          CardStatus = "CLOSED"
)

// Card is a simulated credit card. BalanceCents is maintained directly by
// purchases and payments; it is not derived from ledger postings.
type Card struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	UserID        uuid.UUID       `db:"user_id" json:"user_id"`
	CardName      string          `db:"card_name" json:"card_name"`
	Tier          Tier            `db:"tier" json:"tier"`
	LimitCents    int64           `db:"limit_cents" json:"limit_cents"`
	BalanceCents  int64           `db:"balance_cents" json:"balance_cents"`
	APR           decimal.Decimal `db:"apr" json:"apr"`
	RewardsRate   decimal.Decimal `db:"rewards_rate" json:"rewards_rate"`
	OpenedAt      time.Time       `db:"opened_at" json:"opened_at"`
	LastPaymentAt *time.Time      `db:"last_payment_at" json:"last_payment_at,omitempty"`
	Status        CardStatus      `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// AvailableCents is the unused part of the limit.
func (c *Card) AvailableCents() int64 {
	return c.LimitCents - c.BalanceCents
}

type TransactionType string

const (
	TxTypePurchase TransactionType = "PURCHASE"
	TxTypePayment  TransactionType = "PAYMENT"
	TxTypeInterest TransactionType = "INTEREST"
	TxTypeFee      TransactionType = "FEE"
	TxTypeReward   TransactionType = "REWARD"
	TxTypeRefund   TransactionType = "REFUND"
)

// CreditTransaction is the append-only card audit trail. PAYMENT rows carry
// a negative amount.
type CreditTransaction struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	CardID      uuid.UUID       `db:"card_id" json:"card_id"`
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`
	AmountCents int64           `db:"amount_cents" json:"amount_cents"`
	Type        TransactionType `db:"type" json:"type"`
	Description string          `db:"description" json:"description"`
	Merchant    *string         `db:"merchant" json:"merchant,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

type Payment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	CardID      uuid.UUID `db:"card_id" json:"card_id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	AmountCents int64     `db:"amount_cents" json:"amount_cents"`
	PaymentDate time.Time `db:"payment_date" json:"payment_date"`
	IsOnTime    bool      `db:"is_on_time" json:"is_on_time"`
}

// ScoreBreakdown holds the four 0-100 factor scores and the 300-850 total.
type ScoreBreakdown struct {
	PaymentHistoryScore int `json:"payment_history_score"`
	UtilizationScore    int `json:"utilization_score"`
	CreditAgeScore      int `json:"credit_age_score"`
	CreditMixScore      int `json:"credit_mix_score"`
	TotalScore          int `json:"total_score"`
}

type Eligibility struct {
	Eligible    bool  `json:"eligible"`
	CurrentTier Tier  `json:"current_tier"`
	NewTier     *Tier `json:"new_tier,omitempty"`
	CreditScore int   `json:"credit_score"`
}

package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"github.com/famfin/famfin-api/internal/domain/account"
)

// Status of a ledger transaction. Transactions are immutable once written;
// corrections are new offsetting transactions.
type Status string

const StatusCleared Status = "CLEARED"

// Kind tags what produced a transaction (stored in metadata["kind"]).
type Kind string

const (
	KindChoreReward Kind = "chore_reward"
	KindAllowance   Kind = "allowance"
	KindRequest     Kind = "request"
	KindManual      Kind = "manual"
)

// Metadata is free-form context stored alongside a transaction.
type Metadata map[string]string

type Transaction struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	Description string         `db:"description" json:"description"`
	Status      Status         `db:"status" json:"status"`
	Metadata    types.JSONText `db:"metadata" json:"metadata"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// Posting is one signed entry against one account. Positive amounts increase
// an ASSET account.
type Posting struct {
	ID            uuid.UUID `db:"id" json:"id"`
	TransactionID uuid.UUID `db:"transaction_id" json:"transaction_id"`
	AccountID     uuid.UUID `db:"account_id" json:"account_id"`
	AmountCents   int64     `db:"amount_cents" json:"amount_cents"`
}

// PostingInput is what callers hand to CreateTransactionWithPostings.
type PostingInput struct {
	AccountID   uuid.UUID
	AmountCents int64
}

// WalletAccounts are the standard pair every earning flow posts against.
type WalletAccounts struct {
	WalletID uuid.UUID
	IncomeID uuid.UUID
}

// Activity is a wallet posting joined with its transaction.
type Activity struct {
	TransactionID uuid.UUID      `db:"transaction_id" json:"transaction_id"`
	Description   string         `db:"description" json:"description"`
	AmountCents   int64          `db:"amount_cents" json:"amount_cents"`
	Metadata      types.JSONText `db:"metadata" json:"metadata"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// WalletView is the cached wallet screen payload.
type WalletView struct {
	UserID         uuid.UUID  `json:"user_id"`
	BalanceCents   int64      `json:"balance_cents"`
	RecentActivity []Activity `json:"recent_activity"`
}

type AccountBalance struct {
	account.Account
	BalanceCents int64 `json:"balance_cents"`
}

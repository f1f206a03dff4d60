package request

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusDenied   Status = "DENIED"
)

// MoneyRequest is a child asking a parent for money.
type MoneyRequest struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	FamilyID      uuid.UUID  `db:"family_id" json:"family_id"`
	RequesterID   uuid.UUID  `db:"requester_id" json:"requester_id"`
	AmountCents   int64      `db:"amount_cents" json:"amount_cents"`
	Reason        string     `db:"reason" json:"reason"`
	Status        Status     `db:"status" json:"status"`
	DecidedBy     *uuid.UUID `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt     *time.Time `db:"decided_at" json:"decided_at,omitempty"`
	TransactionID *uuid.UUID `db:"transaction_id" json:"transaction_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateRequest struct {
	AmountCents int64  `json:"amount_cents" validate:"gt=0,lte=1000000"`
	Reason      string `json:"reason" validate:"required,max=200"`
}

type DecisionRequest struct {
	Decision string `json:"decision" validate:"required,decision"`
}

package ledger

import "github.com/google/uuid"

// GrantAllowanceRequest is the body of POST /allowances
type GrantAllowanceRequest struct {
	ChildID     uuid.UUID `json:"child_id" validate:"required"`
	AmountCents int64     `json:"amount_cents" validate:"gt=0,lte=10000000"`
	Note        string    `json:"note" validate:"max=200"`
}

type TransactionCreatedResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
}

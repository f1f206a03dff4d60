package credit

type ApplyRequest struct {
	Tier string `json:"tier" validate:"card_tier"`
}

type PurchaseRequest struct {
	AmountCents int64   `json:"amount_cents" validate:"gt=0,lte=10000000"`
	Description string  `json:"description" validate:"max=200"`
	Merchant    *string `json:"merchant" validate:"omitempty,max=100"`
}

type PaymentRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"gt=0,lte=10000000"`
}

package credit

import "errors"

var (
	ErrCardNotFound          = errors.New("credit card not found")
	ErrCardNotActive         = errors.New("credit card is not active")
	ErrCreditLimitExceeded   = errors.New("purchase exceeds available credit")
	ErrPaymentExceedsBalance = errors.New("payment exceeds card balance")
	ErrInvalidAmount         = errors.New("invalid amount: must be greater than 0")
	ErrInvalidTier           = errors.New("unknown card tier")
	ErrNotEligible           = errors.New("card is not eligible for a tier upgrade")
	ErrApplicationPending    = errors.New("a card application is already pending")
	ErrInvalidTransition     = errors.New("card status does not allow this change")
	ErrForbidden             = errors.New("not allowed to manage this card")
	ErrInternal              = errors.New("internal error")
)

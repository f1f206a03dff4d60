package ledger

import "errors"

var (
	ErrInvalidAmount         = errors.New("invalid amount: must be greater than 0")
	ErrEmptyPostings         = errors.New("a transaction needs at least two postings")
	ErrInvalidPosting        = errors.New("posting has no account or a zero amount")
	ErrUnbalancedTransaction = errors.New("postings do not sum to zero")
	ErrMissingDescription    = errors.New("transaction description is required")
	ErrForbidden             = errors.New("not allowed to access this wallet")
	ErrInternal              = errors.New("internal error")
)

package request

import "errors"

var (
	ErrRequestNotFound = errors.New("money request not found")
	ErrOnlyChildren    = errors.New("only children can request money")
	ErrOnlyParents     = errors.New("only a parent in the family can decide")
	ErrAlreadyDecided  = errors.New("money request has already been decided")
	ErrInvalidAmount   = errors.New("invalid amount: must be greater than 0")
	ErrReasonRequired  = errors.New("reason is required")
	ErrInternal        = errors.New("internal error")
)

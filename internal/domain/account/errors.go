package account

import "errors"

var (
	ErrInvalidAccount = errors.New("invalid account: owner, name and type are required")
	ErrInternal       = errors.New("internal error")
)

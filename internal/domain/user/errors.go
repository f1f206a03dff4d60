package user

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrNotInFamily  = errors.New("user is not a member of this family")
	ErrInternal     = errors.New("internal error")
)

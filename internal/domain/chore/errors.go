package chore

import "errors"

var (
	ErrChoreNotFound     = errors.New("chore not found")
	ErrNotAssignee       = errors.New("only the assignee can submit this chore")
	ErrOnlyParents       = errors.New("only a parent in the family can do this")
	ErrAssigneeNotChild  = errors.New("chores can only be assigned to a child in the family")
	ErrChoreFinalized    = errors.New("chore has already been decided")
	ErrInvalidTransition = errors.New("chore is not in a state that allows this")
	ErrInvalidReward     = errors.New("reward must not be negative")
	ErrInvalidRecurrence = errors.New("invalid recurrence type")
	ErrTitleRequired     = errors.New("title is required")
	ErrInternal          = errors.New("internal error")
)

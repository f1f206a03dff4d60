package chore

import (
	"time"

	"github.com/google/uuid"
)

type CreateChoreRequest struct {
	AssigneeID       uuid.UUID  `json:"assignee_id" validate:"required"`
	Title            string     `json:"title" validate:"required,max=120"`
	Description      string     `json:"description" validate:"max=1000"`
	RewardValueCents int64      `json:"reward_value_cents" validate:"min=0,max=10000000"`
	DueDate          *time.Time `json:"due_date"`
	RecurrenceType   string     `json:"recurrence_type" validate:"recurrence"`
}

type DecisionRequest struct {
	Decision string `json:"decision" validate:"required,decision"`
}

// CreateInput is the service-level form of CreateChoreRequest.
type CreateInput struct {
	AssigneeID       uuid.UUID
	Title            string
	Description      string
	RewardValueCents int64
	DueDate          *time.Time
	Recurrence       *Recurrence
}

type ChoreResponse struct {
	ID                  uuid.UUID  `json:"id"`
	AssigneeID          uuid.UUID  `json:"assignee_id"`
	CreatedBy           uuid.UUID  `json:"created_by"`
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	RewardValueCents    int64      `json:"reward_value_cents"`
	Status              Status     `json:"status"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	RecurrenceType      *string    `json:"recurrence_type,omitempty"`
	ParentChoreID       *uuid.UUID `json:"parent_chore_id,omitempty"`
	SubmittedAt         *time.Time `json:"submitted_at,omitempty"`
	DecidedAt           *time.Time `json:"decided_at,omitempty"`
	RewardTransactionID *uuid.UUID `json:"reward_transaction_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func ChoreResponseFromEntity(c *Chore) *ChoreResponse {
	resp := &ChoreResponse{
		ID:               c.ID,
		AssigneeID:       c.AssigneeID,
		CreatedBy:        c.CreatedBy,
		Title:            c.Title,
		Description:      c.Description,
		RewardValueCents: c.RewardValueCents,
		Status:           c.Status,
		CreatedAt:        c.CreatedAt,
	}
	if c.DueDate.Valid {
		resp.DueDate = &c.DueDate.Time
	}
	if c.RecurrenceType.Valid {
		resp.RecurrenceType = &c.RecurrenceType.String
	}
	if c.ParentChoreID.Valid {
		resp.ParentChoreID = &c.ParentChoreID.UUID
	}
	if c.SubmittedAt.Valid {
		resp.SubmittedAt = &c.SubmittedAt.Time
	}
	if c.DecidedAt.Valid {
		resp.DecidedAt = &c.DecidedAt.Time
	}
	if c.RewardTransactionID.Valid {
		resp.RewardTransactionID = &c.RewardTransactionID.UUID
	}
	return resp
}

func ChoreResponses(chores []Chore) []*ChoreResponse {
	out := make([]*ChoreResponse, len(chores))
	for i := range chores {
		out[i] = ChoreResponseFromEntity(&chores[i])
	}
	return out
}

package chore

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents chore status (matches chore_status check constraint)
type Status string

const (
	StatusAssigned        Status = "ASSIGNED"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusCompleted       Status = "COMPLETED"
	StatusRejected        Status = "REJECTED"
)

// Terminal states accept no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

type Recurrence string

const (
	RecurrenceDaily   Recurrence = "DAILY"
	RecurrenceWeekly  Recurrence = "WEEKLY"
	RecurrenceMonthly Recurrence = "MONTHLY"
)

// Next returns the due date of the following instance.
func (r Recurrence) Next(from time.Time) time.Time {
	switch r {
	case RecurrenceDaily:
		return from.AddDate(0, 0, 1)
	case RecurrenceWeekly:
		return from.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		return from.AddDate(0, 1, 0)
	}
	return from
}

func (r Recurrence) Valid() bool {
	return r == RecurrenceDaily || r == RecurrenceWeekly || r == RecurrenceMonthly
}

// Chore is a task a parent assigns to a child for a reward.
type Chore struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	FamilyID   uuid.UUID `db:"family_id"`
	CreatedBy  uuid.UUID `db:"created_by"`
	AssigneeID uuid.UUID `db:"assignee_id"`

	Title            string `db:"title"`
	Description      string `db:"description"`
	RewardValueCents int64  `db:"reward_value_cents"`
	Status           Status `db:"status"`

	DueDate        sql.NullTime   `db:"due_date"`
	RecurrenceType sql.NullString `db:"recurrence_type"`
	// ParentChoreID points at the first chore of a recurring series.
	ParentChoreID uuid.NullUUID `db:"parent_chore_id"`

	SubmittedAt         sql.NullTime  `db:"submitted_at"`
	DecidedAt           sql.NullTime  `db:"decided_at"`
	DecidedBy           uuid.NullUUID `db:"decided_by"`
	RewardTransactionID uuid.NullUUID `db:"reward_transaction_id"`
}

func (c *Chore) Recurrence() (Recurrence, bool) {
	if !c.RecurrenceType.Valid {
		return "", false
	}
	r := Recurrence(c.RecurrenceType.String)
	return r, r.Valid()
}

// SeriesRoot is the chore every instance of a recurring series points back to.
func (c *Chore) SeriesRoot() uuid.UUID {
	if c.ParentChoreID.Valid {
		return c.ParentChoreID.UUID
	}
	return c.ID
}

package chore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/famfin/famfin-api/internal/pkg/database"
)

const queryTimeout = 3 * time.Second

type Repository interface {
	Create(ctx context.Context, q database.Querier, c *Chore) error
	GetByID(ctx context.Context, id uuid.UUID) (*Chore, error)
	// Lock loads a chore with SELECT ... FOR UPDATE inside q's transaction.
	Lock(ctx context.Context, q database.Querier, id uuid.UUID) (*Chore, error)
	UpdateStatus(ctx context.Context, q database.Querier, c *Chore) error
	ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]Chore, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Chore, error)
	ListByFamily(ctx context.Context, familyID uuid.UUID) ([]Chore, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const choreColumns = `id, created_at, updated_at, family_id, created_by, assignee_id, title, description,
	reward_value_cents, status, due_date, recurrence_type, parent_chore_id,
	submitted_at, decided_at, decided_by, reward_transaction_id`

func (r *repository) Create(ctx context.Context, q database.Querier, c *Chore) error {
	if q == nil {
		q = r.db
	}
	err := q.QueryRowxContext(ctx, `
		INSERT INTO chores (id, family_id, created_by, assignee_id, title, description,
			reward_value_cents, status, due_date, recurrence_type, parent_chore_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, c.ID, c.FamilyID, c.CreatedBy, c.AssigneeID, c.Title, c.Description,
		c.RewardValueCents, c.Status, c.DueDate, c.RecurrenceType, c.ParentChoreID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert chore: %v", ErrInternal, err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Chore, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var c Chore
	if err := r.db.GetContext(ctx, &c, `SELECT `+choreColumns+` FROM chores WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChoreNotFound
		}
		return nil, fmt.Errorf("%w: get chore: %v", ErrInternal, err)
	}
	return &c, nil
}

func (r *repository) Lock(ctx context.Context, q database.Querier, id uuid.UUID) (*Chore, error) {
	var c Chore
	if err := q.GetContext(ctx, &c, `SELECT `+choreColumns+` FROM chores WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChoreNotFound
		}
		return nil, fmt.Errorf("%w: lock chore: %v", ErrInternal, err)
	}
	return &c, nil
}

func (r *repository) UpdateStatus(ctx context.Context, q database.Querier, c *Chore) error {
	_, err := q.ExecContext(ctx, `
		UPDATE chores
		SET status = $2, submitted_at = $3, decided_at = $4, decided_by = $5,
			reward_transaction_id = $6, updated_at = NOW()
		WHERE id = $1
	`, c.ID, c.Status, c.SubmittedAt, c.DecidedAt, c.DecidedBy, c.RewardTransactionID)
	if err != nil {
		return fmt.Errorf("%w: update chore status: %v", ErrInternal, err)
	}
	return nil
}

func (r *repository) list(ctx context.Context, where string, arg interface{}) ([]Chore, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	chores := make([]Chore, 0)
	if err := r.db.SelectContext(ctx, &chores, `
		SELECT `+choreColumns+` FROM chores
		WHERE `+where+` = $1
		ORDER BY created_at DESC
		LIMIT 200
	`, arg); err != nil {
		return nil, fmt.Errorf("%w: list chores: %v", ErrInternal, err)
	}
	return chores, nil
}

func (r *repository) ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]Chore, error) {
	return r.list(ctx, "assignee_id", assigneeID)
}

func (r *repository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Chore, error) {
	return r.list(ctx, "created_by", creatorID)
}

func (r *repository) ListByFamily(ctx context.Context, familyID uuid.UUID) ([]Chore, error) {
	return r.list(ctx, "family_id", familyID)
}

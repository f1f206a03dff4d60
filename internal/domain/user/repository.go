package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

// Repository defines user data access interface
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	ListByFamily(ctx context.Context, familyID uuid.UUID) ([]User, error)
	// UpdateCreditScore stores the latest computed score. The column is a
	// cache of the scoring engine's output, never an input to it.
	UpdateCreditScore(ctx context.Context, id uuid.UUID, score int) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u User
	err := r.db.GetContext(ctx, &u, `
		SELECT id, family_id, name, role, current_credit_score, created_at, updated_at
		FROM users WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get user: %v", ErrInternal, err)
	}
	return &u, nil
}

func (r *repository) ListByFamily(ctx context.Context, familyID uuid.UUID) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	members := make([]User, 0)
	err := r.db.SelectContext(ctx, &members, `
		SELECT id, family_id, name, role, current_credit_score, created_at, updated_at
		FROM users
		WHERE family_id = $1
		ORDER BY role DESC, created_at ASC
	`, familyID)
	if err != nil {
		return nil, fmt.Errorf("%w: list family: %v", ErrInternal, err)
	}
	return members, nil
}

func (r *repository) UpdateCreditScore(ctx context.Context, id uuid.UUID, score int) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET current_credit_score = $2, updated_at = now() WHERE id = $1
	`, id, score)
	if err != nil {
		return fmt.Errorf("%w: update credit score: %v", ErrInternal, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

package request

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
	Create(ctx context.Context, r *MoneyRequest) error
	Lock(ctx context.Context, q database.Querier, id uuid.UUID) (*MoneyRequest, error)
	UpdateDecision(ctx context.Context, q database.Querier, r *MoneyRequest) error
	ListByFamily(ctx context.Context, familyID uuid.UUID) ([]MoneyRequest, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, m *MoneyRequest) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO money_requests (id, family_id, requester_id, amount_cents, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, m.ID, m.FamilyID, m.RequesterID, m.AmountCents, m.Reason, m.Status).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert money request: %v", ErrInternal, err)
	}
	return nil
}

func (r *repository) Lock(ctx context.Context, q database.Querier, id uuid.UUID) (*MoneyRequest, error) {
	var m MoneyRequest
	err := q.GetContext(ctx, &m, `
		SELECT id, family_id, requester_id, amount_cents, reason, status, decided_by, decided_at,
			transaction_id, created_at, updated_at
		FROM money_requests WHERE id = $1 FOR UPDATE
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("%w: lock money request: %v", ErrInternal, err)
	}
	return &m, nil
}

func (r *repository) UpdateDecision(ctx context.Context, q database.Querier, m *MoneyRequest) error {
	_, err := q.ExecContext(ctx, `
		UPDATE money_requests
		SET status = $2, decided_by = $3, decided_at = $4, transaction_id = $5, updated_at = NOW()
		WHERE id = $1
	`, m.ID, m.Status, m.DecidedBy, m.DecidedAt, m.TransactionID)
	if err != nil {
		return fmt.Errorf("%w: update money request: %v", ErrInternal, err)
	}
	return nil
}

func (r *repository) ListByFamily(ctx context.Context, familyID uuid.UUID) ([]MoneyRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	out := make([]MoneyRequest, 0)
	if err := r.db.SelectContext(ctx, &out, `
		SELECT id, family_id, requester_id, amount_cents, reason, status, decided_by, decided_at,
			transaction_id, created_at, updated_at
		FROM money_requests
		WHERE family_id = $1
		ORDER BY created_at DESC
		LIMIT 200
	`, familyID); err != nil {
		return nil, fmt.Errorf("%w: list money requests: %v", ErrInternal, err)
	}
	return out, nil
}

package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/famfin/famfin-api/internal/pkg/database"
)

type Repository interface {
	// Ensure returns the earliest account for (owner, name, type), creating it
	// if absent. Safe under concurrent callers.
	Ensure(ctx context.Context, q database.Querier, ownerID uuid.UUID, name string, typ Type) (*Account, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Account, error)
}

// AccountRepository stores accounts in Postgres. The unique index
// accounts_owner_name_type_key backs the get-or-create.
type AccountRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Ensure(ctx context.Context, q database.Querier, ownerID uuid.UUID, name string, typ Type) (*Account, error) {
	if q == nil {
		q = r.db
	}

	// ON CONFLICT turns the racing insert of a second caller into a no-op.
	if _, err := q.ExecContext(ctx, `
		INSERT INTO accounts (id, owner_user_id, name, type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_user_id, name, type) DO NOTHING
	`, uuid.New(), ownerID, name, string(typ)); err != nil {
		return nil, fmt.Errorf("%w: insert account: %v", ErrInternal, err)
	}

	var acc Account
	if err := q.GetContext(ctx, &acc, `
		SELECT id, owner_user_id, name, type, created_at
		FROM accounts
		WHERE owner_user_id = $1 AND name = $2 AND type = $3
		ORDER BY created_at ASC
		LIMIT 1
	`, ownerID, name, string(typ)); err != nil {
		return nil, fmt.Errorf("%w: select account: %v", ErrInternal, err)
	}

	return &acc, nil
}

func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Account, error) {
	accounts := make([]Account, 0)
	if err := r.db.SelectContext(ctx, &accounts, `
		SELECT id, owner_user_id, name, type, created_at
		FROM accounts
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerID); err != nil {
		return nil, fmt.Errorf("%w: list accounts: %v", ErrInternal, err)
	}
	return accounts, nil
}

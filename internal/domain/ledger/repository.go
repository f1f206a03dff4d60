package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/famfin/famfin-api/internal/pkg/database"
)

const queryTimeout = 3 * time.Second

type Repository interface {
	InsertTransaction(ctx context.Context, q database.Querier, t *Transaction) error
	InsertPostings(ctx context.Context, q database.Querier, postings []Posting) error
	SumAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
	ListAccountActivity(ctx context.Context, accountID uuid.UUID, limit int) ([]Activity, error)
}

// LedgerRepository stores transactions and postings. Balances are never
// stored; they are sums over postings.
type LedgerRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) InsertTransaction(ctx context.Context, q database.Querier, t *Transaction) error {
	err := q.QueryRowxContext(ctx, `
		INSERT INTO ledger_transactions (id, description, status, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, t.ID, t.Description, string(t.Status), t.Metadata).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert transaction: %v", ErrInternal, err)
	}
	return nil
}

func (r *LedgerRepository) InsertPostings(ctx context.Context, q database.Querier, postings []Posting) error {
	if len(postings) == 0 {
		return nil
	}
	_, err := sqlx.NamedExecContext(ctx, q, `
		INSERT INTO postings (id, transaction_id, account_id, amount_cents)
		VALUES (:id, :transaction_id, :account_id, :amount_cents)
	`, postings)
	if err != nil {
		return fmt.Errorf("%w: insert postings: %v", ErrInternal, err)
	}
	return nil
}

func (r *LedgerRepository) SumAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var sum int64
	if err := r.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM postings WHERE account_id = $1
	`, accountID); err != nil {
		return 0, fmt.Errorf("%w: sum postings: %v", ErrInternal, err)
	}
	return sum, nil
}

func (r *LedgerRepository) ListAccountActivity(ctx context.Context, accountID uuid.UUID, limit int) ([]Activity, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}

	activity := make([]Activity, 0)
	if err := r.db.SelectContext(ctx, &activity, `
		SELECT t.id AS transaction_id, t.description, p.amount_cents, t.metadata, t.created_at
		FROM postings p
		JOIN ledger_transactions t ON t.id = p.transaction_id
		WHERE p.account_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2
	`, accountID, limit); err != nil {
		return nil, fmt.Errorf("%w: list activity: %v", ErrInternal, err)
	}
	return activity, nil
}

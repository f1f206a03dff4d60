package credit

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
	CreateCard(ctx context.Context, q database.Querier, card *Card) error
	GetCard(ctx context.Context, id uuid.UUID) (*Card, error)
	// LockCard loads a card with SELECT ... FOR UPDATE inside q's transaction.
	LockCard(ctx context.Context, q database.Querier, id uuid.UUID) (*Card, error)
	UpdateBalance(ctx context.Context, q database.Querier, card *Card) error
	UpdateStatus(ctx context.Context, q database.Querier, card *Card) error
	UpdateTier(ctx context.Context, q database.Querier, card *Card) error
	ListCardsByUser(ctx context.Context, userID uuid.UUID) ([]Card, error)
	ListPendingByFamily(ctx context.Context, familyID uuid.UUID) ([]Card, error)

	InsertTransaction(ctx context.Context, q database.Querier, t *CreditTransaction) error
	ListTransactions(ctx context.Context, cardID uuid.UUID, limit, offset int) ([]CreditTransaction, error)
	InsertPayment(ctx context.Context, q database.Querier, p *Payment) error
	ListPaymentsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]Payment, error)
}

// CardRepository stores cards, their transaction trail and payments.
type CardRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *CardRepository {
	return &CardRepository{db: db}
}

const cardColumns = `id, user_id, card_name, tier, limit_cents, balance_cents, apr, rewards_rate,
	opened_at, last_payment_at, status, created_at, updated_at`

// CreateCard relies on the partial unique index over pending applications.
func (r *CardRepository) CreateCard(ctx context.Context, q database.Querier, card *Card) error {
	err := q.QueryRowxContext(ctx, `
		INSERT INTO credit_cards (id, user_id, card_name, tier, limit_cents, balance_cents, apr, rewards_rate, opened_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, card.ID, card.UserID, card.CardName, card.Tier, card.LimitCents, card.BalanceCents,
		card.APR, card.RewardsRate, card.OpenedAt, card.Status,
	).Scan(&card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrApplicationPending
		}
		return fmt.Errorf("%w: insert card: %v", ErrInternal, err)
	}
	return nil
}

func (r *CardRepository) GetCard(ctx context.Context, id uuid.UUID) (*Card, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var card Card
	err := r.db.GetContext(ctx, &card, `SELECT `+cardColumns+` FROM credit_cards WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("%w: get card: %v", ErrInternal, err)
	}
	return &card, nil
}

func (r *CardRepository) LockCard(ctx context.Context, q database.Querier, id uuid.UUID) (*Card, error) {
	var card Card
	err := q.GetContext(ctx, &card, `SELECT `+cardColumns+` FROM credit_cards WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("%w: lock card: %v", ErrInternal, err)
	}
	return &card, nil
}

func (r *CardRepository) UpdateBalance(ctx context.Context, q database.Querier, card *Card) error {
	_, err := q.ExecContext(ctx, `
		UPDATE credit_cards
		SET balance_cents = $2, last_payment_at = $3, updated_at = NOW()
		WHERE id = $1
	`, card.ID, card.BalanceCents, card.LastPaymentAt)
	if err != nil {
		return fmt.Errorf("%w: update balance: %v", ErrInternal, err)
	}
	return nil
}

func (r *CardRepository) UpdateStatus(ctx context.Context, q database.Querier, card *Card) error {
	_, err := q.ExecContext(ctx, `
		UPDATE credit_cards
		SET status = $2, opened_at = $3, updated_at = NOW()
		WHERE id = $1
	`, card.ID, card.Status, card.OpenedAt)
	if err != nil {
		return fmt.Errorf("%w: update status: %v", ErrInternal, err)
	}
	return nil
}

func (r *CardRepository) UpdateTier(ctx context.Context, q database.Querier, card *Card) error {
	_, err := q.ExecContext(ctx, `
		UPDATE credit_cards
		SET tier = $2, card_name = $3, limit_cents = $4, apr = $5, rewards_rate = $6, updated_at = NOW()
		WHERE id = $1
	`, card.ID, card.Tier, card.CardName, card.LimitCents, card.APR, card.RewardsRate)
	if err != nil {
		return fmt.Errorf("%w: update tier: %v", ErrInternal, err)
	}
	return nil
}

func (r *CardRepository) ListCardsByUser(ctx context.Context, userID uuid.UUID) ([]Card, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cards := make([]Card, 0)
	if err := r.db.SelectContext(ctx, &cards, `
		SELECT `+cardColumns+` FROM credit_cards
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID); err != nil {
		return nil, fmt.Errorf("%w: list cards: %v", ErrInternal, err)
	}
	return cards, nil
}

func (r *CardRepository) ListPendingByFamily(ctx context.Context, familyID uuid.UUID) ([]Card, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cards := make([]Card, 0)
	if err := r.db.SelectContext(ctx, &cards, `
		SELECT c.id, c.user_id, c.card_name, c.tier, c.limit_cents, c.balance_cents, c.apr, c.rewards_rate,
			c.opened_at, c.last_payment_at, c.status, c.created_at, c.updated_at
		FROM credit_cards c
		JOIN users u ON u.id = c.user_id
		WHERE u.family_id = $1 AND c.status = $2
		ORDER BY c.created_at ASC
	`, familyID, CardStatusPendingApproval); err != nil {
		return nil, fmt.Errorf("%w: list applications: %v", ErrInternal, err)
	}
	return cards, nil
}

func (r *CardRepository) InsertTransaction(ctx context.Context, q database.Querier, t *CreditTransaction) error {
	err := q.QueryRowxContext(ctx, `
		INSERT INTO credit_transactions (id, card_id, user_id, amount_cents, type, description, merchant)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, t.ID, t.CardID, t.UserID, t.AmountCents, t.Type, t.Description, t.Merchant).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert credit transaction: %v", ErrInternal, err)
	}
	return nil
}

func (r *CardRepository) ListTransactions(ctx context.Context, cardID uuid.UUID, limit, offset int) ([]CreditTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	txs := make([]CreditTransaction, 0)
	if err := r.db.SelectContext(ctx, &txs, `
		SELECT id, card_id, user_id, amount_cents, type, description, merchant, created_at
		FROM credit_transactions
		WHERE card_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, cardID, limit, offset); err != nil {
		return nil, fmt.Errorf("%w: list credit transactions: %v", ErrInternal, err)
	}
	return txs, nil
}

func (r *CardRepository) InsertPayment(ctx context.Context, q database.Querier, p *Payment) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO credit_payments (id, card_id, user_id, amount_cents, payment_date, is_on_time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.CardID, p.UserID, p.AmountCents, p.PaymentDate, p.IsOnTime)
	if err != nil {
		return fmt.Errorf("%w: insert payment: %v", ErrInternal, err)
	}
	return nil
}

func (r *CardRepository) ListPaymentsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	payments := make([]Payment, 0)
	if err := r.db.SelectContext(ctx, &payments, `
		SELECT id, card_id, user_id, amount_cents, payment_date, is_on_time
		FROM credit_payments
		WHERE user_id = $1 AND payment_date >= $2
		ORDER BY payment_date ASC
	`, userID, since); err != nil {
		return nil, fmt.Errorf("%w: list payments: %v", ErrInternal, err)
	}
	return payments, nil
}

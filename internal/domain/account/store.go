package account

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/famfin/famfin-api/internal/pkg/database"
)

// Store is the Account Store. The ledger is its only writer.
type Store struct {
	repo Repository
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// EnsureAccount is an idempotent get-or-create. q may be a transaction the
// caller is already inside.
func (s *Store) EnsureAccount(ctx context.Context, q database.Querier, ownerID uuid.UUID, name string, typ Type) (uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if ownerID == uuid.Nil || name == "" || (typ != TypeAsset && typ != TypeRevenue) {
		return uuid.Nil, ErrInvalidAccount
	}

	acc, err := s.repo.Ensure(ctx, q, ownerID, name, typ)
	if err != nil {
		return uuid.Nil, err
	}
	return acc.ID, nil
}

func (s *Store) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]Account, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

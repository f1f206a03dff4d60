package account

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famfin/famfin-api/internal/pkg/database"
)

// memoryRepo mimics the unique index with a mutex-guarded map.
type memoryRepo struct {
	mu       sync.Mutex
	accounts map[string]*Account
	inserts  int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{accounts: map[string]*Account{}}
}

func (m *memoryRepo) Ensure(_ context.Context, _ database.Querier, ownerID uuid.UUID, name string, typ Type) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ownerID.String() + "|" + name + "|" + string(typ)
	if acc, ok := m.accounts[key]; ok {
		return acc, nil
	}
	m.inserts++
	acc := &Account{ID: uuid.New(), OwnerUserID: ownerID, Name: name, Type: typ}
	m.accounts[key] = acc
	return acc, nil
}

func (m *memoryRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Account{}
	for _, a := range m.accounts {
		if a.OwnerUserID == ownerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func TestEnsureAccountIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	store := NewStore(repo)
	owner := uuid.New()

	first, err := store.EnsureAccount(context.Background(), nil, owner, NameWallet, TypeAsset)
	require.NoError(t, err)
	second, err := store.EnsureAccount(context.Background(), nil, owner, " Wallet ", TypeAsset)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.inserts)
}

func TestEnsureAccountDistinguishesType(t *testing.T) {
	store := NewStore(newMemoryRepo())
	owner := uuid.New()

	wallet, err := store.EnsureAccount(context.Background(), nil, owner, NameWallet, TypeAsset)
	require.NoError(t, err)
	income, err := store.EnsureAccount(context.Background(), nil, owner, NameChoresIncome, TypeRevenue)
	require.NoError(t, err)

	assert.NotEqual(t, wallet, income)
}

func TestEnsureAccountValidation(t *testing.T) {
	store := NewStore(newMemoryRepo())

	tests := []struct {
		name  string
		owner uuid.UUID
		acct  string
		typ   Type
	}{
		{"nil owner", uuid.Nil, NameWallet, TypeAsset},
		{"blank name", uuid.New(), "  ", TypeAsset},
		{"unknown type", uuid.New(), NameWallet, Type("LIABILITY")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.EnsureAccount(context.Background(), nil, tt.owner, tt.acct, tt.typ)
			assert.ErrorIs(t, err, ErrInvalidAccount)
		})
	}
}

func TestEnsureAccountConcurrentCallers(t *testing.T) {
	repo := newMemoryRepo()
	store := NewStore(repo)
	owner := uuid.New()

	const workers = 20
	ids := make([]uuid.UUID, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := store.EnsureAccount(context.Background(), nil, owner, NameWallet, TypeAsset)
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 1, repo.inserts)
}

package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.data[key] = value
	return nil
}

func (m *memoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryStore) DeletePattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.data, k)
		}
	}
	return nil
}

type brokenStore struct{}

var errDown = errors.New("connection refused")

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errDown }
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errDown
}
func (brokenStore) Delete(context.Context, ...string) error     { return errDown }
func (brokenStore) DeletePattern(context.Context, string) error { return errDown }

type walletView struct {
	BalanceCents int64 `json:"balance_cents"`
}

func TestGetOrLoadPopulatesOnMiss(t *testing.T) {
	store := newMemoryStore()
	c := New(store, true, TTLs{})
	ctx := context.Background()
	key := UserWalletKey(uuid.New())

	loads := 0
	load := func(context.Context) (walletView, error) {
		loads++
		return walletView{BalanceCents: 1200}, nil
	}

	first, err := GetOrLoad(ctx, c, key, time.Minute, load)
	require.NoError(t, err)
	second, err := GetOrLoad(ctx, c, key, time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, int64(1200), first.BalanceCents)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, loads, "second read must be served from cache")
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	store := newMemoryStore()
	c := New(store, true, TTLs{})
	loadErr := errors.New("db down")

	_, err := GetOrLoad(context.Background(), c, "k", time.Minute, func(context.Context) (int, error) {
		return 0, loadErr
	})

	assert.ErrorIs(t, err, loadErr)
	assert.Zero(t, store.sets)
}

func TestDeleteInvalidatesView(t *testing.T) {
	store := newMemoryStore()
	c := New(store, true, TTLs{})
	ctx := context.Background()
	key := UserChoresKey(uuid.New())

	balance := int64(100)
	load := func(context.Context) (int64, error) { return balance, nil }

	v, err := GetOrLoad(ctx, c, key, time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, int64(100), v)

	balance = 250
	c.Delete(ctx, key)

	v, err = GetOrLoad(ctx, c, key, time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, int64(250), v)
}

func TestDeletePatternDropsAllUserViews(t *testing.T) {
	store := newMemoryStore()
	c := New(store, true, TTLs{})
	ctx := context.Background()
	userID := uuid.New()
	other := uuid.New()

	c.Set(ctx, UserChoresKey(userID), 1, time.Minute)
	c.Set(ctx, UserWalletKey(userID), 2, time.Minute)
	c.Set(ctx, UserWalletKey(other), 3, time.Minute)

	c.DeletePattern(ctx, UserPattern(userID))

	var n int
	assert.False(t, c.Get(ctx, UserChoresKey(userID), &n))
	assert.False(t, c.Get(ctx, UserWalletKey(userID), &n))
	assert.True(t, c.Get(ctx, UserWalletKey(other), &n))
	assert.Equal(t, 3, n)
}

func TestFailOpenWithBrokenStore(t *testing.T) {
	c := New(brokenStore{}, true, TTLs{})
	ctx := context.Background()

	assert.NotPanics(t, func() {
		c.Set(ctx, "k", 1, time.Second)
		c.Delete(ctx, "k")
		c.DeletePattern(ctx, "user:*")
	})

	v, err := GetOrLoad(ctx, c, "k", time.Second, func(context.Context) (string, error) {
		return "from-store", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "from-store", v)
}

func TestFailOpenWithUnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := New(NewRedisStore(client), true, TTLs{})
	ctx := context.Background()

	v, err := GetOrLoad(ctx, c, FamilyMembersKey(uuid.New()), time.Second, func(context.Context) ([]string, error) {
		return []string{"parent", "child"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"parent", "child"}, v)

	assert.NotPanics(t, func() {
		c.Delete(ctx, "x")
		c.DeletePattern(ctx, "family:*")
	})
}

func TestDisabledCacheAlwaysLoads(t *testing.T) {
	store := newMemoryStore()
	c := New(store, false, TTLs{})
	loads := 0

	for i := 0; i < 3; i++ {
		_, err := GetOrLoad(context.Background(), c, "k", time.Minute, func(context.Context) (int, error) {
			loads++
			return loads, nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, loads)
	assert.Zero(t, store.sets)
}

func TestNilCacheIsUsable(t *testing.T) {
	var c *Cache
	v, err := GetOrLoad(context.Background(), c, "k", time.Second, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.NotPanics(t, func() { c.Delete(context.Background(), "k") })
}

func TestTTLDefaults(t *testing.T) {
	ttls := New(nil, true, TTLs{Wallet: 5 * time.Second}).TTLs()

	assert.Equal(t, time.Second, ttls.Chores)
	assert.Equal(t, time.Second, ttls.Requests)
	assert.Equal(t, 5*time.Second, ttls.Wallet)
	assert.Equal(t, 30*time.Second, ttls.Members)
	assert.Equal(t, 10*time.Second, ttls.CardApplications)
}

package credit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famfin/famfin-api/internal/domain/user"
	"github.com/famfin/famfin-api/internal/pkg/cache"
	"github.com/famfin/famfin-api/internal/pkg/database"
)

type txStub struct{}

func (txStub) WithTx(_ context.Context, fn func(q database.Querier) error) error { return fn(nil) }

type repoStub struct {
	mu       sync.Mutex
	cards    map[uuid.UUID]Card
	families map[uuid.UUID]uuid.UUID
	txs      []CreditTransaction
	payments []Payment
}

func newRepoStub() *repoStub {
	return &repoStub{cards: map[uuid.UUID]Card{}, families: map[uuid.UUID]uuid.UUID{}}
}

func (r *repoStub) CreateCard(_ context.Context, _ database.Querier, card *Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cards {
		if c.UserID == card.UserID && c.Status == CardStatusPendingApproval {
			return ErrApplicationPending
		}
	}
	card.CreatedAt = time.Now()
	r.cards[card.ID] = *card
	return nil
}

func (r *repoStub) GetCard(_ context.Context, id uuid.UUID) (*Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok {
		return nil, ErrCardNotFound
	}
	return &c, nil
}

func (r *repoStub) LockCard(ctx context.Context, _ database.Querier, id uuid.UUID) (*Card, error) {
	return r.GetCard(ctx, id)
}

func (r *repoStub) save(card *Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards[card.ID] = *card
	return nil
}

func (r *repoStub) UpdateBalance(_ context.Context, _ database.Querier, card *Card) error {
	return r.save(card)
}

func (r *repoStub) UpdateStatus(_ context.Context, _ database.Querier, card *Card) error {
	return r.save(card)
}

func (r *repoStub) UpdateTier(_ context.Context, _ database.Querier, card *Card) error {
	return r.save(card)
}

func (r *repoStub) ListCardsByUser(_ context.Context, userID uuid.UUID) ([]Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Card{}
	for _, c := range r.cards {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *repoStub) ListPendingByFamily(_ context.Context, familyID uuid.UUID) ([]Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Card{}
	for _, c := range r.cards {
		if c.Status == CardStatusPendingApproval && r.families[c.UserID] == familyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *repoStub) InsertTransaction(_ context.Context, _ database.Querier, t *CreditTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = append(r.txs, *t)
	return nil
}

func (r *repoStub) ListTransactions(_ context.Context, cardID uuid.UUID, _, _ int) ([]CreditTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []CreditTransaction{}
	for _, t := range r.txs {
		if t.CardID == cardID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *repoStub) InsertPayment(_ context.Context, _ database.Querier, p *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, *p)
	return nil
}

func (r *repoStub) ListPaymentsSince(_ context.Context, userID uuid.UUID, since time.Time) ([]Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Payment{}
	for _, p := range r.payments {
		if p.UserID == userID && !p.PaymentDate.Before(since) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.Before(out[j].PaymentDate) })
	return out, nil
}

type usersStub struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*user.User
	recorded map[uuid.UUID]int
}

func (u *usersStub) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	if m, ok := u.users[id]; ok {
		return m, nil
	}
	return nil, user.ErrUserNotFound
}

func (u *usersStub) RecordCreditScore(_ context.Context, id uuid.UUID, score int) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.recorded[id] = score
	return nil
}

type family struct {
	svc    Service
	repo   *repoStub
	users  *usersStub
	parent user.Actor
	child  user.Actor
	clock  *time.Time
}

func newFamily(t *testing.T, now time.Time) *family {
	t.Helper()
	familyID := uuid.New()
	parentID, childID := uuid.New(), uuid.New()

	repo := newRepoStub()
	repo.families[parentID] = familyID
	repo.families[childID] = familyID

	users := &usersStub{
		users: map[uuid.UUID]*user.User{
			parentID: {ID: parentID, FamilyID: familyID, Role: user.RoleParent},
			childID:  {ID: childID, FamilyID: familyID, Role: user.RoleChild},
		},
		recorded: map[uuid.UUID]int{},
	}

	f := &family{
		repo:   repo,
		users:  users,
		parent: user.Actor{UserID: parentID, FamilyID: familyID, Role: user.RoleParent},
		child:  user.Actor{UserID: childID, FamilyID: familyID, Role: user.RoleChild},
		clock:  &now,
	}
	f.svc = NewService(repo, users, txStub{}, cache.Disabled(), WithClock(func() time.Time { return *f.clock }))
	return f
}

func tierPtr(t Tier) *Tier { return &t }

func TestCardLifecycleScenario(t *testing.T) {
	f := newFamily(t, time.Date(2026, 4, 3, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	score, err := f.svc.CalculateCreditScore(ctx, f.child, f.child.UserID)
	require.NoError(t, err)
	assert.Equal(t, ScoreBreakdown{TotalScore: 300}, *score)
	assert.Equal(t, 300, f.users.recorded[f.child.UserID])

	card, err := f.svc.ApplyForCreditCard(ctx, f.child, tierPtr(TierElite))
	require.NoError(t, err)
	assert.Equal(t, TierStarter, card.Tier, "never more than qualified")
	assert.Equal(t, int64(20000), card.LimitCents)
	assert.Equal(t, "19.9", card.APR.String())
	assert.True(t, card.RewardsRate.IsZero())
	assert.Equal(t, CardStatusPendingApproval, card.Status)

	_, err = f.svc.MakeCreditPurchase(ctx, f.child, card.ID, 1000, "snack", nil)
	assert.ErrorIs(t, err, ErrCardNotActive)

	card, err = f.svc.ApproveApplication(ctx, f.parent, card.ID)
	require.NoError(t, err)
	assert.Equal(t, CardStatusActive, card.Status)

	_, err = f.svc.MakeCreditPurchase(ctx, f.child, card.ID, 15000, "bike helmet", nil)
	require.NoError(t, err)

	_, err = f.svc.MakeCreditPurchase(ctx, f.child, card.ID, 10000, "game", nil)
	assert.ErrorIs(t, err, ErrCreditLimitExceeded)
	stored, _ := f.repo.GetCard(ctx, card.ID)
	assert.Equal(t, int64(15000), stored.BalanceCents, "rejected purchase leaves balance unchanged")

	_, err = f.svc.MakeCreditPayment(ctx, f.child, card.ID, 20000)
	assert.ErrorIs(t, err, ErrPaymentExceedsBalance)

	p, err := f.svc.MakeCreditPayment(ctx, f.child, card.ID, 15000)
	require.NoError(t, err)
	assert.True(t, p.IsOnTime, "paid on the 3rd")

	stored, _ = f.repo.GetCard(ctx, card.ID)
	assert.Equal(t, int64(0), stored.BalanceCents)
	require.NotNil(t, stored.LastPaymentAt)

	history, err := f.svc.ListTransactions(ctx, f.parent, card.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, TxTypePurchase, history[0].Type)
	assert.Equal(t, int64(15000), history[0].AmountCents)
	assert.Equal(t, TxTypePayment, history[1].Type)
	assert.Equal(t, int64(-15000), history[1].AmountCents)
}

func TestPaymentAfterFifthIsLate(t *testing.T) {
	f := newFamily(t, time.Date(2026, 4, 20, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()
	card := f.activeCard(t, 5000)

	p, err := f.svc.MakeCreditPayment(ctx, f.child, card.ID, 1000)
	require.NoError(t, err)
	assert.False(t, p.IsOnTime)

	_, err = f.svc.MakeCreditPayment(ctx, f.child, card.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func (f *family) activeCard(t *testing.T, balance int64) *Card {
	t.Helper()
	ctx := context.Background()
	card, err := f.svc.ApplyForCreditCard(ctx, f.child, nil)
	require.NoError(t, err)
	card, err = f.svc.ApproveApplication(ctx, f.parent, card.ID)
	require.NoError(t, err)
	if balance > 0 {
		_, err = f.svc.MakeCreditPurchase(ctx, f.child, card.ID, balance, "setup", nil)
		require.NoError(t, err)
	}
	return card
}

func TestApplicationReview(t *testing.T) {
	f := newFamily(t, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	card, err := f.svc.ApplyForCreditCard(ctx, f.child, nil)
	require.NoError(t, err)

	_, err = f.svc.ApplyForCreditCard(ctx, f.child, nil)
	assert.ErrorIs(t, err, ErrApplicationPending)

	_, err = f.svc.ApplyForCreditCard(ctx, f.child, tierPtr("PLATINUM"))
	assert.ErrorIs(t, err, ErrInvalidTier)

	pending, err := f.svc.ListApplications(ctx, f.parent)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, card.ID, pending[0].ID)

	_, err = f.svc.ListApplications(ctx, f.child)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.ApproveApplication(ctx, f.child, card.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	stranger := user.Actor{UserID: uuid.New(), FamilyID: uuid.New(), Role: user.RoleParent}
	_, err = f.svc.ApproveApplication(ctx, stranger, card.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	declined, err := f.svc.DeclineApplication(ctx, f.parent, card.ID)
	require.NoError(t, err)
	assert.Equal(t, CardStatusClosed, declined.Status)

	_, err = f.svc.ApproveApplication(ctx, f.parent, card.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApprovalResetsOpenedAt(t *testing.T) {
	f := newFamily(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	card, err := f.svc.ApplyForCreditCard(ctx, f.child, nil)
	require.NoError(t, err)

	approvedAt := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	*f.clock = approvedAt
	card, err = f.svc.ApproveApplication(ctx, f.parent, card.ID)
	require.NoError(t, err)
	assert.Equal(t, approvedAt, card.OpenedAt)
}

func TestFrozenCardTakesPaymentsOnly(t *testing.T) {
	f := newFamily(t, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()
	card := f.activeCard(t, 4000)

	_, err := f.svc.FreezeCard(ctx, f.child, card.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	frozen, err := f.svc.FreezeCard(ctx, f.parent, card.ID)
	require.NoError(t, err)
	assert.Equal(t, CardStatusFrozen, frozen.Status)

	_, err = f.svc.MakeCreditPurchase(ctx, f.child, card.ID, 100, "candy", nil)
	assert.ErrorIs(t, err, ErrCardNotActive)

	_, err = f.svc.MakeCreditPayment(ctx, f.child, card.ID, 1000)
	assert.NoError(t, err)

	_, err = f.svc.FreezeCard(ctx, f.parent, card.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	thawed, err := f.svc.UnfreezeCard(ctx, f.parent, card.ID)
	require.NoError(t, err)
	assert.Equal(t, CardStatusActive, thawed.Status)
	assert.Equal(t, int64(3000), thawed.BalanceCents)
}

func TestPurchaseOnSomeoneElsesCard(t *testing.T) {
	f := newFamily(t, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC))
	card := f.activeCard(t, 0)

	_, err := f.svc.MakeCreditPurchase(context.Background(), f.parent, card.ID, 100, "x", nil)
	assert.ErrorIs(t, err, ErrCardNotFound)

	_, err = f.svc.MakeCreditPurchase(context.Background(), f.child, uuid.New(), 100, "x", nil)
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestTierUpgrade(t *testing.T) {
	start := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	f := newFamily(t, start)
	ctx := context.Background()

	card, err := f.svc.ApplyForCreditCard(ctx, f.child, nil)
	require.NoError(t, err)
	require.Equal(t, TierStarter, card.Tier)
	card, err = f.svc.ApproveApplication(ctx, f.parent, card.ID)
	require.NoError(t, err)

	// A year of small on-time payments.
	for month := 0; month < 13; month++ {
		*f.clock = start.AddDate(0, month, 0)
		_, err := f.svc.MakeCreditPurchase(ctx, f.child, card.ID, 1500, "lunch", nil)
		require.NoError(t, err)
		_, err = f.svc.MakeCreditPayment(ctx, f.child, card.ID, 1000)
		require.NoError(t, err)
	}

	e, err := f.svc.CheckTierUpgradeEligibility(ctx, f.parent, card.ID)
	require.NoError(t, err)
	assert.True(t, e.Eligible)
	assert.Equal(t, TierStarter, e.CurrentTier)
	require.NotNil(t, e.NewTier)
	assert.Equal(t, TierElite, *e.NewTier)

	before, _ := f.repo.GetCard(ctx, card.ID)
	upgraded, err := f.svc.UpgradeCreditCardTier(ctx, f.child, card.ID)
	require.NoError(t, err)
	assert.Equal(t, TierElite, upgraded.Tier)
	assert.Equal(t, int64(200000), upgraded.LimitCents)
	assert.Equal(t, "5.9", upgraded.APR.String())
	assert.Equal(t, before.BalanceCents, upgraded.BalanceCents, "balance carries over")
	assert.LessOrEqual(t, upgraded.BalanceCents, upgraded.LimitCents)

	_, err = f.svc.UpgradeCreditCardTier(ctx, f.child, card.ID)
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestUpgradeRejectedForWeakHistory(t *testing.T) {
	f := newFamily(t, time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()
	card := f.activeCard(t, 19500)

	// Late partial payment on the 20th, then back up to 95% utilization.
	_, err := f.svc.MakeCreditPayment(ctx, f.child, card.ID, 100)
	require.NoError(t, err)
	_, err = f.svc.MakeCreditPurchase(ctx, f.child, card.ID, 100, "top up", nil)
	require.NoError(t, err)

	e, err := f.svc.CheckTierUpgradeEligibility(ctx, f.child, card.ID)
	require.NoError(t, err)
	assert.False(t, e.Eligible)
	assert.Nil(t, e.NewTier)
	assert.Less(t, e.CreditScore, 580)

	_, err = f.svc.UpgradeCreditCardTier(ctx, f.child, card.ID)
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestScoreVisibility(t *testing.T) {
	f := newFamily(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := f.svc.CalculateCreditScore(ctx, f.parent, f.child.UserID)
	assert.NoError(t, err)

	_, err = f.svc.CalculateCreditScore(ctx, f.child, f.parent.UserID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.ListCards(ctx, f.child, uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)
}

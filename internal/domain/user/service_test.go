package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famfin/famfin-api/internal/pkg/cache"
)

type repoStub struct {
	users     map[uuid.UUID]*User
	listCalls int
}

func (r *repoStub) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrUserNotFound
}

func (r *repoStub) ListByFamily(_ context.Context, familyID uuid.UUID) ([]User, error) {
	r.listCalls++
	out := []User{}
	for _, u := range r.users {
		if u.FamilyID == familyID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *repoStub) UpdateCreditScore(_ context.Context, id uuid.UUID, score int) error {
	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.CurrentCreditScore = &score
	return nil
}

func TestMemberOfRejectsOtherFamily(t *testing.T) {
	family, other := uuid.New(), uuid.New()
	child := &User{ID: uuid.New(), FamilyID: other, Role: RoleChild}
	svc := NewService(&repoStub{users: map[uuid.UUID]*User{child.ID: child}}, cache.Disabled())

	_, err := svc.MemberOf(context.Background(), family, child.ID)
	assert.ErrorIs(t, err, ErrNotInFamily)

	got, err := svc.MemberOf(context.Background(), other, child.ID)
	require.NoError(t, err)
	assert.Equal(t, child.ID, got.ID)
}

func TestRecordCreditScore(t *testing.T) {
	child := &User{ID: uuid.New(), FamilyID: uuid.New(), Role: RoleChild, CreatedAt: time.Now()}
	repo := &repoStub{users: map[uuid.UUID]*User{child.ID: child}}
	svc := NewService(repo, cache.Disabled())

	require.NoError(t, svc.RecordCreditScore(context.Background(), child.ID, 612))
	require.NotNil(t, child.CurrentCreditScore)
	assert.Equal(t, 612, *child.CurrentCreditScore)

	assert.ErrorIs(t, svc.RecordCreditScore(context.Background(), uuid.New(), 300), ErrUserNotFound)
}

func TestActorCanManage(t *testing.T) {
	family := uuid.New()
	parent := Actor{UserID: uuid.New(), FamilyID: family, Role: RoleParent}
	child := Actor{UserID: uuid.New(), FamilyID: family, Role: RoleChild}

	member := &User{ID: uuid.New(), FamilyID: family}
	stranger := &User{ID: uuid.New(), FamilyID: uuid.New()}

	assert.True(t, parent.CanManage(member))
	assert.False(t, parent.CanManage(stranger))
	assert.False(t, child.CanManage(member))
}

func TestActorContext(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)

	a := Actor{UserID: uuid.New(), FamilyID: uuid.New(), Role: RoleChild}
	got, ok := ActorFromContext(WithActor(context.Background(), a))
	assert.True(t, ok)
	assert.Equal(t, a, got)
}

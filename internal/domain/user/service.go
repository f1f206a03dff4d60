package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/famfin/famfin-api/internal/pkg/cache"
)

// Service serves the family roster and member lookups for the workflows.
type Service struct {
	repo  Repository
	cache *cache.Cache
}

func NewService(repo Repository, c *cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// FamilyMembers is the cached roster view (family:{id}:members).
func (s *Service) FamilyMembers(ctx context.Context, familyID uuid.UUID) ([]User, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.FamilyMembersKey(familyID), s.cache.TTLs().Members,
		func(ctx context.Context) ([]User, error) {
			return s.repo.ListByFamily(ctx, familyID)
		})
}

// MemberOf loads id and checks it belongs to familyID.
func (s *Service) MemberOf(ctx context.Context, familyID, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.FamilyID != familyID {
		return nil, ErrNotInFamily
	}
	return u, nil
}

// RecordCreditScore refreshes the cached score column and the roster view that shows it.
func (s *Service) RecordCreditScore(ctx context.Context, id uuid.UUID, score int) error {
	if err := s.repo.UpdateCreditScore(ctx, id, score); err != nil {
		return err
	}
	if u, err := s.repo.GetByID(ctx, id); err == nil {
		s.cache.Delete(ctx, cache.FamilyMembersKey(u.FamilyID))
	}
	return nil
}

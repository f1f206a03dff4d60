package chore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/famfin/famfin-api/internal/domain/user"
	"github.com/famfin/famfin-api/internal/pkg/cache"
	"github.com/famfin/famfin-api/internal/pkg/database"
	"github.com/famfin/famfin-api/internal/pkg/metrics"
)

// Members resolves family membership.
type Members interface {
	MemberOf(ctx context.Context, familyID, id uuid.UUID) (*user.User, error)
}

// Rewards posts chore rewards to the ledger inside the approval transaction.
type Rewards interface {
	PostChoreReward(ctx context.Context, q database.Querier, childID uuid.UUID, amountCents int64, choreID uuid.UUID, title string) (uuid.UUID, error)
	InvalidateWallet(ctx context.Context, userID uuid.UUID)
}

// Service runs the chore workflow:
// ASSIGNED -> PENDING_APPROVAL -> COMPLETED | REJECTED.
type Service struct {
	repo    Repository
	members Members
	rewards Rewards
	tx      database.TxRunner
	cache   *cache.Cache
	now     func() time.Time
}

func NewService(repo Repository, members Members, rewards Rewards, tx database.TxRunner, c *cache.Cache) *Service {
	return &Service{repo: repo, members: members, rewards: rewards, tx: tx, cache: c, now: time.Now}
}

// Create assigns a new chore to a child of the parent's family.
func (s *Service) Create(ctx context.Context, actor user.Actor, in CreateInput) (*Chore, error) {
	if !actor.IsParent() {
		return nil, ErrOnlyParents
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if in.RewardValueCents < 0 {
		return nil, ErrInvalidReward
	}
	if in.Recurrence != nil && !in.Recurrence.Valid() {
		return nil, ErrInvalidRecurrence
	}

	assignee, err := s.members.MemberOf(ctx, actor.FamilyID, in.AssigneeID)
	if err != nil || !assignee.IsChild() {
		return nil, ErrAssigneeNotChild
	}

	c := &Chore{
		ID:               uuid.New(),
		FamilyID:         actor.FamilyID,
		CreatedBy:        actor.UserID,
		AssigneeID:       assignee.ID,
		Title:            title,
		Description:      strings.TrimSpace(in.Description),
		RewardValueCents: in.RewardValueCents,
		Status:           StatusAssigned,
	}
	if in.DueDate != nil {
		c.DueDate = sql.NullTime{Time: *in.DueDate, Valid: true}
	}
	if in.Recurrence != nil {
		c.RecurrenceType = sql.NullString{String: string(*in.Recurrence), Valid: true}
	}

	if err := s.repo.Create(ctx, nil, c); err != nil {
		return nil, err
	}

	metrics.WorkflowTransitions.WithLabelValues("chore", string(StatusAssigned)).Inc()
	s.invalidate(ctx, c)
	log.Info().
		Str("chore_id", c.ID.String()).
		Str("assignee_id", c.AssigneeID.String()).
		Int64("reward_cents", c.RewardValueCents).
		Msg("chore assigned")
	return c, nil
}

// Submit marks the chore done and waiting for a parent. Assignee only.
func (s *Service) Submit(ctx context.Context, actor user.Actor, choreID uuid.UUID) (*Chore, error) {
	var c *Chore
	err := s.tx.WithTx(ctx, func(q database.Querier) error {
		var err error
		c, err = s.repo.Lock(ctx, q, choreID)
		if err != nil {
			return err
		}
		if c.AssigneeID != actor.UserID {
			return ErrNotAssignee
		}
		if c.Status.Terminal() {
			return ErrChoreFinalized
		}
		if c.Status != StatusAssigned {
			return ErrInvalidTransition
		}
		c.Status = StatusPendingApproval
		c.SubmittedAt = sql.NullTime{Time: s.now(), Valid: true}
		return s.repo.UpdateStatus(ctx, q, c)
	})
	if err != nil {
		return nil, err
	}

	metrics.WorkflowTransitions.WithLabelValues("chore", string(StatusPendingApproval)).Inc()
	s.invalidate(ctx, c)
	log.Info().Str("chore_id", c.ID.String()).Str("assignee_id", c.AssigneeID.String()).Msg("chore submitted")
	return c, nil
}

// Approve completes the chore and pays its reward in the same transaction.
func (s *Service) Approve(ctx context.Context, actor user.Actor, choreID uuid.UUID) (*Chore, error) {
	return s.decide(ctx, actor, choreID, StatusCompleted)
}

// Reject closes the chore without moving money.
func (s *Service) Reject(ctx context.Context, actor user.Actor, choreID uuid.UUID) (*Chore, error) {
	return s.decide(ctx, actor, choreID, StatusRejected)
}

func (s *Service) decide(ctx context.Context, actor user.Actor, choreID uuid.UUID, to Status) (*Chore, error) {
	if !actor.IsParent() {
		return nil, ErrOnlyParents
	}

	var c, next *Chore
	err := s.tx.WithTx(ctx, func(q database.Querier) error {
		var err error
		c, err = s.repo.Lock(ctx, q, choreID)
		if err != nil {
			return err
		}
		if c.FamilyID != actor.FamilyID {
			return ErrOnlyParents
		}
		if c.Status.Terminal() {
			return ErrChoreFinalized
		}
		if c.Status != StatusPendingApproval {
			return ErrInvalidTransition
		}

		now := s.now()
		c.Status = to
		c.DecidedAt = sql.NullTime{Time: now, Valid: true}
		c.DecidedBy = uuid.NullUUID{UUID: actor.UserID, Valid: true}

		if to == StatusCompleted {
			if c.RewardValueCents > 0 {
				txID, err := s.rewards.PostChoreReward(ctx, q, c.AssigneeID, c.RewardValueCents, c.ID, c.Title)
				if err != nil {
					log.Error().Err(err).
						Str("chore_id", c.ID.String()).
						Str("assignee_id", c.AssigneeID.String()).
						Int64("amount_cents", c.RewardValueCents).
						Msg("chore reward posting failed, approval rolled back")
					return err
				}
				c.RewardTransactionID = uuid.NullUUID{UUID: txID, Valid: true}
			}
			if next, err = s.spawnNext(ctx, q, c, now); err != nil {
				return err
			}
		}
		return s.repo.UpdateStatus(ctx, q, c)
	})
	if err != nil {
		return nil, err
	}

	metrics.WorkflowTransitions.WithLabelValues("chore", string(to)).Inc()
	s.invalidate(ctx, c)
	if to == StatusCompleted && c.RewardTransactionID.Valid {
		s.rewards.InvalidateWallet(ctx, c.AssigneeID)
	}

	ev := log.Info().
		Str("chore_id", c.ID.String()).
		Str("assignee_id", c.AssigneeID.String()).
		Str("parent_id", actor.UserID.String()).
		Str("status", string(to))
	if next != nil {
		ev = ev.Str("next_chore_id", next.ID.String())
	}
	ev.Msg("chore decided")
	return c, nil
}

// spawnNext creates the following instance of a recurring chore.
func (s *Service) spawnNext(ctx context.Context, q database.Querier, c *Chore, now time.Time) (*Chore, error) {
	r, ok := c.Recurrence()
	if !ok {
		return nil, nil
	}
	base := now
	if c.DueDate.Valid {
		base = c.DueDate.Time
	}

	next := &Chore{
		ID:               uuid.New(),
		FamilyID:         c.FamilyID,
		CreatedBy:        c.CreatedBy,
		AssigneeID:       c.AssigneeID,
		Title:            c.Title,
		Description:      c.Description,
		RewardValueCents: c.RewardValueCents,
		Status:           StatusAssigned,
		DueDate:          sql.NullTime{Time: r.Next(base), Valid: true},
		RecurrenceType:   c.RecurrenceType,
		ParentChoreID:    uuid.NullUUID{UUID: c.SeriesRoot(), Valid: true},
	}
	if err := s.repo.Create(ctx, q, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Get returns a chore visible to the actor.
func (s *Service) Get(ctx context.Context, actor user.Actor, choreID uuid.UUID) (*Chore, error) {
	c, err := s.repo.GetByID(ctx, choreID)
	if err != nil {
		return nil, err
	}
	if c.FamilyID != actor.FamilyID || (!actor.IsParent() && c.AssigneeID != actor.UserID) {
		return nil, ErrChoreNotFound
	}
	return c, nil
}

// ListMine is the actor's chore list (user:{id}:chores): assigned chores for a
// child, created chores for a parent.
func (s *Service) ListMine(ctx context.Context, actor user.Actor) ([]Chore, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.UserChoresKey(actor.UserID), s.cache.TTLs().Chores,
		func(ctx context.Context) ([]Chore, error) {
			if actor.IsParent() {
				return s.repo.ListByCreator(ctx, actor.UserID)
			}
			return s.repo.ListByAssignee(ctx, actor.UserID)
		})
}

// ListFamily is every chore in the family (family:{id}:chores). Parents only.
func (s *Service) ListFamily(ctx context.Context, actor user.Actor) ([]Chore, error) {
	if !actor.IsParent() {
		return nil, ErrOnlyParents
	}
	return cache.GetOrLoad(ctx, s.cache, cache.FamilyChoresKey(actor.FamilyID), s.cache.TTLs().Chores,
		func(ctx context.Context) ([]Chore, error) {
			return s.repo.ListByFamily(ctx, actor.FamilyID)
		})
}

// invalidate drops both sides' chore lists and the family list.
func (s *Service) invalidate(ctx context.Context, c *Chore) {
	s.cache.Delete(ctx,
		cache.UserChoresKey(c.AssigneeID),
		cache.UserChoresKey(c.CreatedBy),
		cache.FamilyChoresKey(c.FamilyID),
	)
}

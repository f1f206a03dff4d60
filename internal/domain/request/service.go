package request

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/famfin/famfin-api/internal/domain/ledger"
	"github.com/famfin/famfin-api/internal/domain/user"
	"github.com/famfin/famfin-api/internal/pkg/cache"
	"github.com/famfin/famfin-api/internal/pkg/database"
	"github.com/famfin/famfin-api/internal/pkg/metrics"
)

// Transfers moves approved money into the child's wallet.
type Transfers interface {
	PostParentTransfer(ctx context.Context, q database.Querier, childID uuid.UUID, amountCents int64, kind ledger.Kind, description string, meta ledger.Metadata) (uuid.UUID, error)
	InvalidateWallet(ctx context.Context, userID uuid.UUID)
}

type Service struct {
	repo      Repository
	transfers Transfers
	tx        database.TxRunner
	cache     *cache.Cache
}

func NewService(repo Repository, transfers Transfers, tx database.TxRunner, c *cache.Cache) *Service {
	return &Service{repo: repo, transfers: transfers, tx: tx, cache: c}
}

func (s *Service) Create(ctx context.Context, actor user.Actor, amountCents int64, reason string) (*MoneyRequest, error) {
	if actor.IsParent() {
		return nil, ErrOnlyChildren
	}
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	if reason = strings.TrimSpace(reason); reason == "" {
		return nil, ErrReasonRequired
	}

	m := &MoneyRequest{
		ID:          uuid.New(),
		FamilyID:    actor.FamilyID,
		RequesterID: actor.UserID,
		AmountCents: amountCents,
		Reason:      reason,
		Status:      StatusPending,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	metrics.WorkflowTransitions.WithLabelValues("money_request", string(StatusPending)).Inc()
	s.cache.Delete(ctx, cache.FamilyRequestsKey(actor.FamilyID))
	log.Info().
		Str("request_id", m.ID.String()).
		Str("user_id", actor.UserID.String()).
		Int64("amount_cents", amountCents).
		Msg("money request created")
	return m, nil
}

// Approve pays the request from the child's Allowance Income account in the
// same transaction as the status change.
func (s *Service) Approve(ctx context.Context, actor user.Actor, id uuid.UUID) (*MoneyRequest, error) {
	return s.decide(ctx, actor, id, StatusApproved)
}

func (s *Service) Deny(ctx context.Context, actor user.Actor, id uuid.UUID) (*MoneyRequest, error) {
	return s.decide(ctx, actor, id, StatusDenied)
}

func (s *Service) decide(ctx context.Context, actor user.Actor, id uuid.UUID, to Status) (*MoneyRequest, error) {
	if !actor.IsParent() {
		return nil, ErrOnlyParents
	}

	var m *MoneyRequest
	err := s.tx.WithTx(ctx, func(q database.Querier) error {
		var err error
		m, err = s.repo.Lock(ctx, q, id)
		if err != nil {
			return err
		}
		if m.FamilyID != actor.FamilyID {
			return ErrRequestNotFound
		}
		if m.Status != StatusPending {
			return ErrAlreadyDecided
		}

		now := time.Now()
		m.Status = to
		m.DecidedBy = &actor.UserID
		m.DecidedAt = &now

		if to == StatusApproved {
			txID, err := s.transfers.PostParentTransfer(ctx, q, m.RequesterID, m.AmountCents, ledger.KindRequest,
				"Money request: "+m.Reason, ledger.Metadata{
					"request_id":  m.ID.String(),
					"approved_by": actor.UserID.String(),
				})
			if err != nil {
				return err
			}
			m.TransactionID = &txID
		}
		return s.repo.UpdateDecision(ctx, q, m)
	})
	if err != nil {
		return nil, err
	}

	metrics.WorkflowTransitions.WithLabelValues("money_request", string(to)).Inc()
	s.cache.Delete(ctx, cache.FamilyRequestsKey(m.FamilyID))
	if m.TransactionID != nil {
		s.transfers.InvalidateWallet(ctx, m.RequesterID)
	}
	log.Info().
		Str("request_id", m.ID.String()).
		Str("user_id", m.RequesterID.String()).
		Str("parent_id", actor.UserID.String()).
		Str("status", string(to)).
		Msg("money request decided")
	return m, nil
}

// List is the family request list (family:{id}:requests). Children only see
// their own requests.
func (s *Service) List(ctx context.Context, actor user.Actor) ([]MoneyRequest, error) {
	all, err := cache.GetOrLoad(ctx, s.cache, cache.FamilyRequestsKey(actor.FamilyID), s.cache.TTLs().Requests,
		func(ctx context.Context) ([]MoneyRequest, error) {
			return s.repo.ListByFamily(ctx, actor.FamilyID)
		})
	if err != nil || actor.IsParent() {
		return all, err
	}

	own := make([]MoneyRequest, 0, len(all))
	for _, m := range all {
		if m.RequesterID == actor.UserID {
			own = append(own, m)
		}
	}
	return own, nil
}

package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/famfin/famfin-api/internal/domain/user"
	"github.com/famfin/famfin-api/internal/pkg/database"
)

// GrantAllowance lets a parent fund a child's wallet directly.
func (s *Service) GrantAllowance(ctx context.Context, actor user.Actor, childID uuid.UUID, amountCents int64, note string) (uuid.UUID, error) {
	if amountCents <= 0 {
		return uuid.Nil, ErrInvalidAmount
	}
	if !actor.IsParent() {
		return uuid.Nil, ErrForbidden
	}
	child, err := s.members.MemberOf(ctx, actor.FamilyID, childID)
	if err != nil {
		return uuid.Nil, ErrForbidden
	}
	if !child.IsChild() {
		return uuid.Nil, ErrForbidden
	}

	description := "Allowance"
	if note = strings.TrimSpace(note); note != "" {
		description += ": " + note
	}

	var txID uuid.UUID
	err = s.tx.WithTx(ctx, func(q database.Querier) error {
		var err error
		txID, err = s.PostParentTransfer(ctx, q, childID, amountCents, KindAllowance, description, Metadata{
			"granted_by": actor.UserID.String(),
		})
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.InvalidateWallet(ctx, childID)
	log.Info().
		Str("child_id", childID.String()).
		Str("parent_id", actor.UserID.String()).
		Int64("amount_cents", amountCents).
		Msg("allowance granted")
	return txID, nil
}

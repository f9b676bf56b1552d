package transfer

import (
	"context"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/models"
)

// Cancel withdraws a pending entry of the user before any money moved.
func (s *service) Cancel(ctx context.Context, userID uint, reference string) (*models.Transaction, error) {
	t := track("cancel", userID)
	t.withReference(reference)

	entry, err := s.ledger.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, apperrors.ErrTransactionNotFound
	}

	cancelled, err := s.ledger.MarkCancelled(ctx, reference)
	if err != nil {
		return nil, err
	}
	t.to(StateCancelled)
	s.notify(ctx, cancelled)
	return cancelled, nil
}

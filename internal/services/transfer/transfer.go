package transfer

import (
	"context"
	"errors"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/models"
	"oruswallet/internal/repositories"
	"oruswallet/internal/services/ledger"
	"oruswallet/internal/services/wallet"
	"oruswallet/internal/validation"
)

const (
	ChannelWallet = "wallet"
	ChannelQR     = "qr"
)

// Transfer moves money between two wallets. The debit, the credit and the
// ledger completion commit together or not at all.
func (s *service) Transfer(ctx context.Context, req TransferRequest) (*models.Transaction, error) {
	t := track("transfer", req.SenderID)
	t.to(StateInitiated)

	if req.SenderID == 0 || req.RecipientID == 0 {
		return nil, apperrors.Validation("sender and recipient are required")
	}
	if req.SenderID == req.RecipientID {
		return nil, apperrors.ErrSelfTransfer
	}
	if err := validation.Amount(req.Amount); err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, req.SenderID, req.Credential); err != nil {
		return nil, err
	}
	t.to(StateAuthorized)

	if existing, ok, err := s.replay(ctx, req.SenderID, req.IdempotencyKey); err != nil || ok {
		return existing, err
	}

	recipient, err := s.store.Users().GetByID(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound.WithMessage("recipient not found")
		}
		return nil, err
	}
	if err := s.wallets.ValidateBalance(ctx, req.SenderID, req.Amount); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		t.to(StateCancelled)
		return nil, err
	}

	channel := req.Channel
	if channel == "" {
		channel = ChannelWallet
	}
	entry, replayed, err := s.createPending(ctx, ledger.PendingEntry{
		UserID:         req.SenderID,
		Type:           models.TransactionTypeTransfer,
		Amount:         req.Amount,
		RecipientID:    &recipient.ID,
		IdempotencyKey: req.IdempotencyKey,
		Metadata: models.NewTransferMetadata(models.TransferMetadata{
			RecipientID:    recipient.ID,
			RecipientName:  recipient.Name,
			RecipientPhone: recipient.Phone,
			Channel:        channel,
		}),
	})
	if err != nil || replayed {
		return entry, err
	}
	t.withReference(entry.Reference)

	if err := ctx.Err(); err != nil {
		return s.cancelPending(ctx, t, entry, err)
	}

	// Past this point the caller can no longer cancel.
	commitCtx := context.WithoutCancel(ctx)
	var (
		final    *models.Transaction
		reversed error
	)
	err = s.store.ExecuteInTransaction(commitCtx, func(tx repositories.Store) error {
		txLedger := s.ledger.WithStore(tx)
		if err := txLedger.MarkDebited(commitCtx, entry.Reference); err != nil {
			return err
		}
		locked, err := wallet.Lock(commitCtx, tx, req.SenderID, req.RecipientID)
		if err != nil {
			return err
		}
		if err := locked.Apply(commitCtx, wallet.Debit(req.SenderID, req.Amount, entry.Reference)); err != nil {
			return err
		}
		t.to(StateDebited)

		if creditErr := locked.Apply(commitCtx, wallet.Credit(req.RecipientID, req.Amount, entry.Reference)); creditErr != nil {
			if !isBusinessFailure(creditErr) {
				return creditErr
			}
			if err := locked.Apply(commitCtx, wallet.Reverse(req.SenderID, req.Amount, entry.Reference)); err != nil {
				return err
			}
			reason := "recipient cannot receive funds: " + apperrors.Message(creditErr)
			final, err = txLedger.MarkFailed(commitCtx, entry.Reference, reason)
			if err != nil {
				return err
			}
			reversed = apperrors.ErrPartialFailureReversed.WithMessage(reason + "; the debit was reversed")
			return nil
		}
		t.to(StateCredited)

		final, err = txLedger.MarkCompleted(commitCtx, entry.Reference)
		return err
	})
	if err != nil {
		return s.abort(commitCtx, t, entry, err)
	}

	s.notify(commitCtx, final)
	if reversed != nil {
		t.failed(final.FailureReason)
		return final, reversed
	}
	t.to(StateCompleted)
	return final, nil
}

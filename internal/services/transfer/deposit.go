package transfer

import (
	"context"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/models"
	"oruswallet/internal/repositories"
	"oruswallet/internal/services/ledger"
	"oruswallet/internal/services/settlement"
	"oruswallet/internal/services/wallet"
	"oruswallet/internal/validation"
)

// AddMoney collects funds through the collector for the payment method and
// credits them to the wallet.
func (s *service) AddMoney(ctx context.Context, req AddMoneyRequest) (*models.Transaction, error) {
	t := track("deposit", req.UserID)
	t.to(StateInitiated)

	if req.UserID == 0 {
		return nil, apperrors.Validation("user is required")
	}
	if err := validation.Amount(req.Amount); err != nil {
		return nil, err
	}
	if !req.Method.Valid() {
		return nil, apperrors.ErrUnsupportedPaymentMethod
	}
	if err := s.authorize(ctx, req.UserID, req.Credential); err != nil {
		return nil, err
	}
	t.to(StateAuthorized)

	if existing, ok, err := s.replay(ctx, req.UserID, req.IdempotencyKey); err != nil || ok {
		return existing, err
	}

	w, err := s.wallets.GetWallet(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if w.Status != models.WalletStatusActive {
		return nil, apperrors.ErrWalletInactive
	}

	deposit := models.DepositMetadata{PaymentMethod: string(req.Method)}
	var bank *models.BankAccount
	if req.Method == settlement.MethodBank {
		bank, err = s.bankAccount(ctx, req.UserID, req.BankAccountID)
		if err != nil {
			return nil, err
		}
		snapshot := models.BankSnapshot(bank)
		deposit.Bank = &snapshot
	}

	entry, replayed, err := s.createPending(ctx, ledger.PendingEntry{
		UserID:         req.UserID,
		Type:           models.TransactionTypeDeposit,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
		Metadata:       models.NewDepositMetadata(deposit),
	})
	if err != nil || replayed {
		return entry, err
	}
	t.withReference(entry.Reference)

	if err := ctx.Err(); err != nil {
		return s.cancelPending(ctx, t, entry, err)
	}

	commitCtx := context.WithoutCancel(ctx)
	// Once collection starts the entry can no longer be cancelled.
	if err := s.ledger.MarkDebited(commitCtx, entry.Reference); err != nil {
		return s.abort(commitCtx, t, entry, err)
	}

	receipt, err := s.collector.Collect(commitCtx, settlement.FundingRequest{
		UserID:      req.UserID,
		Reference:   entry.Reference,
		Amount:      req.Amount,
		Currency:    entry.Currency,
		Method:      req.Method,
		SourceToken: req.SourceToken,
		Bank:        bank,
	})
	if err != nil {
		return s.abort(commitCtx, t, entry, err)
	}
	t.entry.WithField("external_ref", receipt.ExternalRef).Info("funds collected")
	t.to(StateDebited)

	var final *models.Transaction
	err = s.store.ExecuteInTransaction(commitCtx, func(tx repositories.Store) error {
		locked, err := wallet.Lock(commitCtx, tx, req.UserID)
		if err != nil {
			return err
		}
		if err := locked.Apply(commitCtx, wallet.Settle(req.UserID, req.Amount, entry.Reference)); err != nil {
			return err
		}
		t.to(StateCredited)
		final, err = s.ledger.WithStore(tx).MarkCompleted(commitCtx, entry.Reference)
		return err
	})
	if err != nil {
		t.entry.WithError(err).WithField("external_ref", receipt.ExternalRef).
			Error("collected funds could not be credited; needs reconciliation")
		return nil, err
	}

	s.notify(commitCtx, final)
	t.to(StateCompleted)
	return final, nil
}

package transfer

import (
	"context"
	"errors"
	"strings"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/models"
	"oruswallet/internal/repositories"
	"oruswallet/internal/services/authz"
	"oruswallet/internal/services/ledger"
	"oruswallet/internal/services/settlement"
	"oruswallet/internal/services/wallet"
	"oruswallet/internal/validation"

	"github.com/shopspring/decimal"
)

// outbound is money leaving the wallet for an external payee.
type outbound struct {
	userID   uint
	amount   decimal.Decimal
	key      string
	metadata models.Metadata
	// settled runs in the completing transaction after the payee accepted.
	settled func(ctx context.Context, tx repositories.Store) error
}

func (s *service) PayBill(ctx context.Context, req PayBillRequest) (*models.Transaction, error) {
	t := track("bill_payment", req.UserID)
	t.to(StateInitiated)

	if req.UserID == 0 || req.BillerID == 0 {
		return nil, apperrors.Validation("user and biller are required")
	}
	if err := s.authorize(ctx, req.UserID, req.Credential); err != nil {
		return nil, err
	}
	t.to(StateAuthorized)

	if existing, ok, err := s.replay(ctx, req.UserID, req.IdempotencyKey); err != nil || ok {
		return existing, err
	}

	biller, err := s.store.Billers().GetByID(ctx, req.UserID, req.BillerID)
	if err != nil {
		if errors.Is(err, repositories.ErrBillerNotFound) {
			return nil, apperrors.ErrBillerNotFound
		}
		return nil, err
	}

	amount := req.Amount
	if amount.IsZero() {
		if !biller.HasUnpaidBill() {
			return nil, apperrors.Validation("amount is required when no bill is due")
		}
		amount = biller.DueAmount.Decimal
	}
	if err := validation.Amount(amount); err != nil {
		return nil, err
	}

	return s.payOut(ctx, t, outbound{
		userID: req.UserID,
		amount: amount,
		key:    req.IdempotencyKey,
		metadata: models.NewBillPaymentMetadata(models.BillPaymentMetadata{
			BillerID:   biller.ID,
			BillType:   biller.BillType,
			Provider:   biller.Provider,
			ConsumerID: biller.ConsumerID,
			BillNumber: biller.BillNumber,
			AutoPay:    req.Credential.Action == authz.ActionAutoPay,
		}),
		settled: func(ctx context.Context, tx repositories.Store) error {
			return tx.Billers().RecordPayment(ctx, biller.ID, amount, s.now())
		},
	})
}

func (s *service) Recharge(ctx context.Context, req RechargeRequest) (*models.Transaction, error) {
	t := track("recharge", req.UserID)
	t.to(StateInitiated)

	if req.UserID == 0 {
		return nil, apperrors.Validation("user is required")
	}
	if strings.TrimSpace(req.Operator) == "" {
		return nil, apperrors.Validation("operator is required")
	}
	if !validation.MobileNumber(req.MobileNumber) {
		return nil, apperrors.Validation("mobile number must be 10 digits")
	}
	if err := validation.Amount(req.Amount); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, req.UserID, req.Credential); err != nil {
		return nil, err
	}
	t.to(StateAuthorized)

	if existing, ok, err := s.replay(ctx, req.UserID, req.IdempotencyKey); err != nil || ok {
		return existing, err
	}

	return s.payOut(ctx, t, outbound{
		userID: req.UserID,
		amount: req.Amount,
		key:    req.IdempotencyKey,
		metadata: models.NewRechargeMetadata(models.RechargeMetadata{
			Operator:     strings.TrimSpace(req.Operator),
			MobileNumber: req.MobileNumber,
			Plan:         req.Plan,
		}),
	})
}

func (s *service) Withdraw(ctx context.Context, req WithdrawRequest) (*models.Transaction, error) {
	t := track("withdrawal", req.UserID)
	t.to(StateInitiated)

	if req.UserID == 0 {
		return nil, apperrors.Validation("user is required")
	}
	if err := validation.Amount(req.Amount); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, req.UserID, req.Credential); err != nil {
		return nil, err
	}
	t.to(StateAuthorized)

	if existing, ok, err := s.replay(ctx, req.UserID, req.IdempotencyKey); err != nil || ok {
		return existing, err
	}

	acct, err := s.bankAccount(ctx, req.UserID, req.BankAccountID)
	if err != nil {
		return nil, err
	}

	return s.payOut(ctx, t, outbound{
		userID:   req.UserID,
		amount:   req.Amount,
		key:      req.IdempotencyKey,
		metadata: models.NewWithdrawalMetadata(models.BankSnapshot(acct)),
	})
}

// bankAccount resolves a linked account, falling back to the default one.
func (s *service) bankAccount(ctx context.Context, userID, id uint) (*models.BankAccount, error) {
	repo := s.store.BankAccounts()
	if id == 0 {
		acct, err := repo.GetDefault(ctx, userID)
		if errors.Is(err, repositories.ErrBankAccountNotFound) {
			return nil, apperrors.ErrNoDefaultBankAccount
		}
		return acct, err
	}
	acct, err := repo.GetByID(ctx, userID, id)
	if errors.Is(err, repositories.ErrBankAccountNotFound) {
		return nil, apperrors.ErrBankAccountNotFound
	}
	return acct, err
}

// payOut debits the wallet, hands the money to the payee and then either
// completes the entry or reverses the debit.
func (s *service) payOut(ctx context.Context, t *tracker, p outbound) (*models.Transaction, error) {
	if err := s.wallets.ValidateBalance(ctx, p.userID, p.amount); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		t.to(StateCancelled)
		return nil, err
	}

	entry, replayed, err := s.createPending(ctx, ledger.PendingEntry{
		UserID:         p.userID,
		Type:           p.metadata.Type,
		Amount:         p.amount,
		IdempotencyKey: p.key,
		Metadata:       p.metadata,
	})
	if err != nil || replayed {
		return entry, err
	}
	t.withReference(entry.Reference)

	if err := ctx.Err(); err != nil {
		return s.cancelPending(ctx, t, entry, err)
	}

	commitCtx := context.WithoutCancel(ctx)
	err = s.store.ExecuteInTransaction(commitCtx, func(tx repositories.Store) error {
		if err := s.ledger.WithStore(tx).MarkDebited(commitCtx, entry.Reference); err != nil {
			return err
		}
		locked, err := wallet.Lock(commitCtx, tx, p.userID)
		if err != nil {
			return err
		}
		return locked.Apply(commitCtx, wallet.Debit(p.userID, p.amount, entry.Reference))
	})
	if err != nil {
		return s.abort(commitCtx, t, entry, err)
	}
	t.to(StateDebited)

	receipt, payErr := s.payee.Pay(commitCtx, settlement.PayoutRequest{
		UserID:    p.userID,
		Reference: entry.Reference,
		Amount:    p.amount,
		Currency:  entry.Currency,
		Metadata:  p.metadata,
	})

	var final *models.Transaction
	err = s.store.ExecuteInTransaction(commitCtx, func(tx repositories.Store) error {
		txLedger := s.ledger.WithStore(tx)
		if payErr == nil {
			if p.settled != nil {
				if err := p.settled(commitCtx, tx); err != nil {
					return err
				}
			}
			t.to(StateCredited)
			var err error
			final, err = txLedger.MarkCompleted(commitCtx, entry.Reference)
			return err
		}

		locked, err := wallet.Lock(commitCtx, tx, p.userID)
		if err != nil {
			return err
		}
		if err := locked.Apply(commitCtx, wallet.Reverse(p.userID, p.amount, entry.Reference)); err != nil {
			return err
		}
		final, err = txLedger.MarkFailed(commitCtx, entry.Reference, "payee rejected the payment: "+failureReason(payErr))
		return err
	})
	if err != nil {
		t.entry.WithError(err).Error("debited entry could not be settled; needs reconciliation")
		return nil, err
	}

	s.notify(commitCtx, final)
	if payErr != nil {
		t.failed(final.FailureReason)
		return final, apperrors.ErrPartialFailureReversed.WithMessage(final.FailureReason + "; the debit was reversed")
	}
	t.entry.WithField("external_ref", receipt.ExternalRef).Info("payee confirmed")
	t.to(StateCompleted)
	return final, nil
}

package wallet

import (
	"context"
	"fmt"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/logger"
	"oruswallet/internal/models"
	"oruswallet/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Operation string

const (
	OperationCredit Operation = "credit"
	OperationDebit  Operation = "debit"
)

type WalletOperation struct {
	UserID    uint
	Operation Operation
	Amount    decimal.Decimal
	Reference string
	// IgnoreStatus lets money that has already moved elsewhere land in a
	// wallet that was locked in the meantime.
	IgnoreStatus bool
}

func Debit(userID uint, amount decimal.Decimal, reference string) WalletOperation {
	return WalletOperation{UserID: userID, Operation: OperationDebit, Amount: amount, Reference: reference}
}

func Credit(userID uint, amount decimal.Decimal, reference string) WalletOperation {
	return WalletOperation{UserID: userID, Operation: OperationCredit, Amount: amount, Reference: reference}
}

// Reverse returns money taken by an earlier debit of the same reference.
func Reverse(userID uint, amount decimal.Decimal, reference string) WalletOperation {
	return WalletOperation{UserID: userID, Operation: OperationCredit, Amount: amount, Reference: reference, IgnoreStatus: true}
}

// Settle credits funds already collected from an external source.
func Settle(userID uint, amount decimal.Decimal, reference string) WalletOperation {
	return WalletOperation{UserID: userID, Operation: OperationCredit, Amount: amount, Reference: reference, IgnoreStatus: true}
}

// Locked is a set of wallets held under row locks for one transaction.
type Locked struct {
	repo    repositories.WalletRepository
	wallets map[uint]*models.Wallet
}

// Lock locks the wallets of userIDs. Missing wallets are not an error here;
// Apply reports them.
func Lock(ctx context.Context, tx repositories.Store, userIDs ...uint) (*Locked, error) {
	repo := tx.Wallets()
	wallets, err := repo.LockByUserIDs(ctx, userIDs...)
	if err != nil {
		return nil, err
	}
	return &Locked{repo: repo, wallets: wallets}, nil
}

// Wallet returns the locked wallet of a user.
func (l *Locked) Wallet(userID uint) (*models.Wallet, bool) {
	w, ok := l.wallets[userID]
	return w, ok
}

func (l *Locked) Apply(ctx context.Context, op WalletOperation) error {
	if !op.Amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	w, ok := l.wallets[op.UserID]
	if !ok {
		return apperrors.ErrWalletNotFound
	}
	if w.Status != models.WalletStatusActive && !op.IgnoreStatus {
		return apperrors.ErrWalletInactive
	}

	var balance decimal.Decimal
	switch op.Operation {
	case OperationDebit:
		if !w.CanDebit(op.Amount) {
			return apperrors.ErrInsufficientFunds
		}
		balance = w.Balance.Sub(op.Amount)
	case OperationCredit:
		balance = w.Balance.Add(op.Amount)
	default:
		return fmt.Errorf("unsupported operation: %s", op.Operation)
	}

	if err := l.repo.SetBalance(ctx, w, balance); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"reference": op.Reference,
		"user_id":   op.UserID,
		"operation": op.Operation,
		"amount":    op.Amount.StringFixed(2),
	}).Debugf("wallet balance now %s", balance.StringFixed(2))
	return nil
}

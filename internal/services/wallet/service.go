package wallet

import (
	"context"
	"errors"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/models"
	"oruswallet/internal/repositories"

	"github.com/shopspring/decimal"
)

type Service interface {
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	// ValidateBalance is an unlocked pre-check; the locked debit re-checks.
	ValidateBalance(ctx context.Context, userID uint, amount decimal.Decimal) error
}

type service struct {
	store repositories.Store
}

func NewService(store repositories.Store) Service {
	return &service{store: store}
}

func (s *service) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	w, err := s.store.Wallets().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, err
	}
	return w, nil
}

func (s *service) ValidateBalance(ctx context.Context, userID uint, amount decimal.Decimal) error {
	w, err := s.GetWallet(ctx, userID)
	if err != nil {
		return err
	}
	if w.Status != models.WalletStatusActive {
		return apperrors.ErrWalletInactive
	}
	if !w.CanDebit(amount) {
		return apperrors.ErrInsufficientFunds
	}
	return nil
}

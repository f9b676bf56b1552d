package repositories

import (
	"context"

	"oruswallet/internal/models"

	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet-related database operations
type WalletRepository interface {
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error)

	// LockByUserIDs locks the wallets in ascending user id order and returns them keyed by user id.
	// Missing wallets are simply absent from the map.
	LockByUserIDs(ctx context.Context, userIDs ...uint) (map[uint]*models.Wallet, error)

	// SetBalance writes a balance computed by the caller on a locked wallet.
	SetBalance(ctx context.Context, wallet *models.Wallet, balance decimal.Decimal) error

	UpdateStatus(ctx context.Context, userID uint, status string) error
	TotalBalance(ctx context.Context) (decimal.Decimal, error)
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"oruswallet/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{
		db: db,
	}
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	if err := r.db.WithContext(ctx).Create(wallet).Error; err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) LockByUserIDs(ctx context.Context, userIDs ...uint) (map[uint]*models.Wallet, error) {
	ids := append([]uint(nil), userIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked := make(map[uint]*models.Wallet, len(ids))
	for _, id := range ids {
		if _, seen := locked[id]; seen {
			continue
		}
		var wallet models.Wallet
		err := forUpdate(r.db.WithContext(ctx)).Where("user_id = ?", id).First(&wallet).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to lock wallet: %w", err)
		}
		locked[id] = &wallet
	}
	return locked, nil
}

func (r *walletRepository) SetBalance(ctx context.Context, wallet *models.Wallet, balance decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("id = ?", wallet.ID).
		Update("balance", balance)
	if result.Error != nil {
		return fmt.Errorf("failed to update balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	wallet.Balance = balance
	return nil
}

func (r *walletRepository) UpdateStatus(ctx context.Context, userID uint, status string) error {
	result := r.db.WithContext(ctx).Model(&models.Wallet{}).Where("user_id = ?", userID).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update wallet status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (r *walletRepository) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	var wallets []models.Wallet
	if err := r.db.WithContext(ctx).Select("balance").Find(&wallets).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to get total balance: %w", err)
	}
	total := decimal.Zero
	for _, w := range wallets {
		total = total.Add(w.Balance)
	}
	return total, nil
}

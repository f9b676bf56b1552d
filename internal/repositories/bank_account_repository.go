package repositories

import (
	"context"
	"errors"
	"fmt"

	"oruswallet/internal/models"

	"gorm.io/gorm"
)

type BankAccountRepository interface {
	Create(ctx context.Context, acct *models.BankAccount) error
	GetByID(ctx context.Context, userID, id uint) (*models.BankAccount, error)
	GetDefault(ctx context.Context, userID uint) (*models.BankAccount, error)
	ListByUser(ctx context.Context, userID uint) ([]models.BankAccount, error)

	// LockByUser locks every account row of the user, newest first.
	LockByUser(ctx context.Context, userID uint) ([]models.BankAccount, error)
	// SetDefault clears the user's default flags and sets it on id.
	SetDefault(ctx context.Context, userID, id uint) error
	Delete(ctx context.Context, userID, id uint) error
}

type bankAccountRepository struct {
	db *gorm.DB
}

func NewBankAccountRepository(db *gorm.DB) BankAccountRepository {
	return &bankAccountRepository{db: db}
}

func (r *bankAccountRepository) Create(ctx context.Context, acct *models.BankAccount) error {
	if err := r.db.WithContext(ctx).Create(acct).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		return fmt.Errorf("failed to create bank account: %w", err)
	}
	return nil
}

func (r *bankAccountRepository) GetByID(ctx context.Context, userID, id uint) (*models.BankAccount, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id))
}

func (r *bankAccountRepository) GetDefault(ctx context.Context, userID uint) (*models.BankAccount, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("user_id = ? AND is_default = ?", userID, true))
}

func (r *bankAccountRepository) first(_ context.Context, q *gorm.DB) (*models.BankAccount, error) {
	var acct models.BankAccount
	if err := q.First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBankAccountNotFound
		}
		return nil, fmt.Errorf("failed to get bank account: %w", err)
	}
	return &acct, nil
}

func (r *bankAccountRepository) ListByUser(ctx context.Context, userID uint) ([]models.BankAccount, error) {
	var accts []models.BankAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").Order("created_at DESC").Order("id DESC").
		Find(&accts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	return accts, nil
}

func (r *bankAccountRepository) LockByUser(ctx context.Context, userID uint) ([]models.BankAccount, error) {
	var accts []models.BankAccount
	err := forUpdate(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&accts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock bank accounts: %w", err)
	}
	return accts, nil
}

func (r *bankAccountRepository) SetDefault(ctx context.Context, userID, id uint) error {
	db := r.db.WithContext(ctx)
	// Clear first so the single-default index never sees two rows.
	err := db.Model(&models.BankAccount{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear default bank account: %w", err)
	}
	result := db.Model(&models.BankAccount{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("is_default", true)
	if result.Error != nil {
		return fmt.Errorf("failed to set default bank account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBankAccountNotFound
	}
	return nil
}

func (r *bankAccountRepository) Delete(ctx context.Context, userID, id uint) error {
	result := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&models.BankAccount{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete bank account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBankAccountNotFound
	}
	return nil
}

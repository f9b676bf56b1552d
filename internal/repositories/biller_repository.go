package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"oruswallet/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BillerRepository interface {
	Create(ctx context.Context, biller *models.Biller) error
	Save(ctx context.Context, biller *models.Biller) error
	GetByID(ctx context.Context, userID, id uint) (*models.Biller, error)
	GetByKey(ctx context.Context, userID uint, billType, provider, consumerID string) (*models.Biller, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Biller, error)

	// ListAutoPayCandidates returns billers with auto-pay on and an unpaid bill.
	ListAutoPayCandidates(ctx context.Context) ([]models.Biller, error)
	RecordDue(ctx context.Context, id uint, amount decimal.Decimal, dueDate time.Time, billNumber string) error
	// RecordPayment stores the last payment and takes it off the due bill.
	// The due is cleared once it is paid in full.
	RecordPayment(ctx context.Context, id uint, amount decimal.Decimal, at time.Time) error
	// ClearDue drops the due bill if it is still billNumber.
	ClearDue(ctx context.Context, id uint, billNumber string) error
}

type billerRepository struct {
	db *gorm.DB
}

func NewBillerRepository(db *gorm.DB) BillerRepository {
	return &billerRepository{db: db}
}

func (r *billerRepository) Create(ctx context.Context, biller *models.Biller) error {
	err := r.db.WithContext(ctx).Transaction(func(sp *gorm.DB) error {
		return sp.Create(biller).Error
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		return fmt.Errorf("failed to create biller: %w", err)
	}
	return nil
}

func (r *billerRepository) Save(ctx context.Context, biller *models.Biller) error {
	if err := r.db.WithContext(ctx).Save(biller).Error; err != nil {
		return fmt.Errorf("failed to update biller: %w", err)
	}
	return nil
}

func (r *billerRepository) GetByID(ctx context.Context, userID, id uint) (*models.Biller, error) {
	return r.first(r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id))
}

func (r *billerRepository) GetByKey(ctx context.Context, userID uint, billType, provider, consumerID string) (*models.Biller, error) {
	return r.first(r.db.WithContext(ctx).Where(
		"user_id = ? AND bill_type = ? AND provider = ? AND consumer_id = ?",
		userID, billType, provider, consumerID,
	))
}

func (r *billerRepository) first(q *gorm.DB) (*models.Biller, error) {
	var biller models.Biller
	if err := q.First(&biller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillerNotFound
		}
		return nil, fmt.Errorf("failed to get biller: %w", err)
	}
	return &biller, nil
}

func (r *billerRepository) ListByUser(ctx context.Context, userID uint) ([]models.Biller, error) {
	var billers []models.Biller
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&billers).Error; err != nil {
		return nil, fmt.Errorf("failed to list billers: %w", err)
	}
	return billers, nil
}

func (r *billerRepository) ListAutoPayCandidates(ctx context.Context) ([]models.Biller, error) {
	var billers []models.Biller
	err := r.db.WithContext(ctx).
		Where("auto_pay_enabled = ? AND due_amount IS NOT NULL AND due_amount > 0", true).
		Order("id ASC").
		Find(&billers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list auto-pay billers: %w", err)
	}
	return billers, nil
}

func (r *billerRepository) RecordDue(ctx context.Context, id uint, amount decimal.Decimal, dueDate time.Time, billNumber string) error {
	return r.update(ctx, id, map[string]interface{}{
		"due_amount":  decimal.NewNullDecimal(amount),
		"due_date":    dueDate,
		"bill_number": billNumber,
	})
}

func (r *billerRepository) RecordPayment(ctx context.Context, id uint, amount decimal.Decimal, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"last_paid_at":     at,
		"last_paid_amount": decimal.NewNullDecimal(amount),
		"due_amount": gorm.Expr(
			"CASE WHEN due_amount IS NULL OR due_amount <= ? THEN NULL ELSE due_amount - ? END",
			amount, amount),
	})
}

func (r *billerRepository) ClearDue(ctx context.Context, id uint, billNumber string) error {
	err := r.db.WithContext(ctx).Model(&models.Biller{}).
		Where("id = ? AND bill_number = ?", id, billNumber).
		Update("due_amount", decimal.NullDecimal{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear biller due: %w", err)
	}
	return nil
}

func (r *billerRepository) update(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Biller{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update biller: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBillerNotFound
	}
	return nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"oruswallet/internal/models"

	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	err := r.db.WithContext(ctx).Transaction(func(sp *gorm.DB) error {
		return sp.Create(tx).Error
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) FindByIdempotencyKey(ctx context.Context, userID uint, key string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by idempotency key: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) CompareAndSetStatus(ctx context.Context, reference string, to models.TransactionStatus, reason string, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": at,
	}
	if to == models.TransactionStatusCompleted {
		updates["completed_at"] = at
	}
	if reason != "" {
		updates["failure_reason"] = reason
	}

	q := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("reference = ? AND status = ?", reference, models.TransactionStatusPending)
	if to == models.TransactionStatusCancelled {
		// money already left the wallet
		q = q.Where("debited_at IS NULL")
	}
	result := q.Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update transaction status: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *transactionRepository) MarkDebited(ctx context.Context, reference string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("reference = ? AND status = ?", reference, models.TransactionStatusPending).
		Update("debited_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to mark transaction debited: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID uint, filter TransactionFilter, limit, offset int) ([]models.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", *filter.To)
	}
	return r.page(q, limit, offset)
}

func (r *transactionRepository) ListByRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]models.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("recipient_id = ?", recipientID)
	return r.page(q, limit, offset)
}

func (r *transactionRepository) page(q *gorm.DB, limit, offset int) ([]models.Transaction, int64, error) {
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	var txs []models.Transaction
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return txs, total, nil
}

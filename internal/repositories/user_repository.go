package repositories

import (
	"context"

	"oruswallet/internal/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	// Create inserts the user together with its KYC record.
	Create(ctx context.Context, user *models.User) error

	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*models.User, error)

	UpdateStatus(ctx context.Context, userID uint, status string) error
	UpdatePIN(ctx context.Context, userID uint, pinHash string) error
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, userID uint) error
}

package repositories

import (
	"context"
	"time"

	"oruswallet/internal/models"
)

// TransactionFilter narrows a ledger listing. Zero values are ignored.
type TransactionFilter struct {
	Type   models.TransactionType
	Status models.TransactionStatus
	From   *time.Time
	To     *time.Time
}

// TransactionRepository persists ledger entries.
type TransactionRepository interface {
	// Create inserts the entry inside a savepoint so a unique violation
	// leaves an enclosing transaction usable. Unique violations wrap ErrDuplicateKey.
	Create(ctx context.Context, tx *models.Transaction) error
	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)
	FindByIdempotencyKey(ctx context.Context, userID uint, key string) (*models.Transaction, error)

	// CompareAndSetStatus moves a pending entry to a terminal status.
	// It reports false when the entry was not pending.
	CompareAndSetStatus(ctx context.Context, reference string, to models.TransactionStatus, reason string, at time.Time) (bool, error)
	MarkDebited(ctx context.Context, reference string, at time.Time) error

	ListByUser(ctx context.Context, userID uint, filter TransactionFilter, limit, offset int) ([]models.Transaction, int64, error)
	ListByRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]models.Transaction, int64, error)
}

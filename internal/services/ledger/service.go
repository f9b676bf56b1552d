// Package ledger records money movements as immutable-reference entries
// that move from pending to exactly one terminal status.
package ledger

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/logger"
	"oruswallet/internal/models"
	"oruswallet/internal/repositories"
	"oruswallet/internal/repositories/cache"
	"oruswallet/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const maxReferenceAttempts = 8

// PendingEntry describes a ledger entry about to be recorded.
type PendingEntry struct {
	UserID         uint
	Type           models.TransactionType
	Amount         decimal.Decimal
	Currency       string
	RecipientID    *uint
	IdempotencyKey string
	Metadata       models.Metadata
}

type Service interface {
	// WithStore returns a ledger bound to a transaction-scoped store.
	WithStore(store repositories.Store) Service

	CreatePending(ctx context.Context, entry PendingEntry) (*models.Transaction, error)
	MarkDebited(ctx context.Context, reference string) error
	MarkCompleted(ctx context.Context, reference string) (*models.Transaction, error)
	MarkFailed(ctx context.Context, reference, reason string) (*models.Transaction, error)
	MarkCancelled(ctx context.Context, reference string) (*models.Transaction, error)

	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)
	GetForUser(ctx context.Context, userID uint, reference string) (*models.Transaction, error)
	FindByIdempotencyKey(ctx context.Context, userID uint, key string) (*models.Transaction, error)
	ListByUser(ctx context.Context, userID uint, filter repositories.TransactionFilter, limit, offset int) ([]models.Transaction, int64, error)
	ListReceived(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, int64, error)
}

type service struct {
	store        repositories.Store
	cache        *cache.CacheService
	now          func() time.Time
	newReference func(time.Time) (string, error)
	currency     string
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithReferenceSource replaces the reference generator, mostly for tests.
func WithReferenceSource(gen func(time.Time) (string, error)) Option {
	return func(s *service) { s.newReference = gen }
}

func WithCurrency(currency string) Option {
	return func(s *service) { s.currency = currency }
}

// NewService creates a ledger. cacheSvc may be nil.
func NewService(store repositories.Store, cacheSvc *cache.CacheService, opts ...Option) Service {
	if store == nil {
		panic("store is required")
	}
	s := &service{
		store:    store,
		cache:    cacheSvc,
		now:      time.Now,
		currency: "INR",
		newReference: func(t time.Time) (string, error) {
			return GenerateReference(t, rand.Reader)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) WithStore(store repositories.Store) Service {
	cp := *s
	cp.store = store
	// Nothing written inside an uncommitted transaction may reach the cache.
	cp.cache = nil
	return &cp
}

func (s *service) CreatePending(ctx context.Context, entry PendingEntry) (*models.Transaction, error) {
	if err := validateEntry(entry); err != nil {
		return nil, err
	}
	repo := s.store.Transactions()

	var key *string
	if k := strings.TrimSpace(entry.IdempotencyKey); k != "" {
		key = &k
		if existing, err := repo.FindByIdempotencyKey(ctx, entry.UserID, k); err == nil {
			return nil, &DuplicateError{Existing: existing}
		} else if !errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, err
		}
	}

	currency := entry.Currency
	if currency == "" {
		currency = s.currency
	}

	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		now := s.now()
		ref, err := s.newReference(now)
		if err != nil {
			return nil, err
		}
		tx := &models.Transaction{
			TransactionID:  uuid.NewString(),
			UserID:         entry.UserID,
			Type:           entry.Type,
			Amount:         entry.Amount,
			Currency:       currency,
			Status:         models.TransactionStatusPending,
			Reference:      ref,
			IdempotencyKey: key,
			RecipientID:    entry.RecipientID,
			Metadata:       entry.Metadata,
		}

		err = repo.Create(ctx, tx)
		if err == nil {
			logger.WithFields(logrus.Fields{
				"reference": ref,
				"user_id":   entry.UserID,
				"type":      entry.Type,
				"amount":    entry.Amount.StringFixed(2),
			}).Info("ledger entry created")
			return tx, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, err
		}
		if key != nil {
			if existing, findErr := repo.FindByIdempotencyKey(ctx, entry.UserID, *key); findErr == nil {
				return nil, &DuplicateError{Existing: existing}
			}
		}
		logger.WithFields(logrus.Fields{"reference": ref, "attempt": attempt}).Warn("reference collision, regenerating")
	}
	return nil, apperrors.ErrDuplicateReference
}

func validateEntry(entry PendingEntry) error {
	if entry.UserID == 0 {
		return apperrors.Validation("user is required")
	}
	if !entry.Type.Valid() {
		return apperrors.Validation("unknown transaction type")
	}
	if err := validation.Amount(entry.Amount); err != nil {
		return err
	}
	if entry.Metadata.Type != entry.Type {
		return apperrors.Validation("metadata does not match transaction type")
	}
	if err := entry.Metadata.Validate(); err != nil {
		return apperrors.Validation(err.Error())
	}
	return nil
}

func (s *service) MarkDebited(ctx context.Context, reference string) error {
	err := s.store.Transactions().MarkDebited(ctx, reference, s.now())
	if errors.Is(err, repositories.ErrTransactionNotFound) {
		return apperrors.ErrInvalidStateTransition
	}
	return err
}

func (s *service) MarkCompleted(ctx context.Context, reference string) (*models.Transaction, error) {
	return s.transition(ctx, reference, models.TransactionStatusCompleted, "")
}

func (s *service) MarkFailed(ctx context.Context, reference, reason string) (*models.Transaction, error) {
	return s.transition(ctx, reference, models.TransactionStatusFailed, reason)
}

// MarkCancelled only succeeds while the entry is pending and nothing was debited.
func (s *service) MarkCancelled(ctx context.Context, reference string) (*models.Transaction, error) {
	return s.transition(ctx, reference, models.TransactionStatusCancelled, "")
}

// transition is idempotent for the same terminal status and rejects any other.
func (s *service) transition(ctx context.Context, reference string, to models.TransactionStatus, reason string) (*models.Transaction, error) {
	repo := s.store.Transactions()

	changed, err := repo.CompareAndSetStatus(ctx, reference, to, reason, s.now())
	if err != nil {
		return nil, err
	}
	current, err := repo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, err
	}
	if !changed && current.Status == models.TransactionStatusPending {
		return nil, apperrors.ErrNotCancellable
	}
	if !changed && current.Status != to {
		return nil, apperrors.ErrInvalidStateTransition.WithMessage(
			fmt.Sprintf("transaction %s is already %s", reference, current.Status))
	}

	if changed {
		logger.WithFields(logrus.Fields{"reference": reference, "status": to, "reason": reason}).Info("ledger entry finalized")
	}
	return current, nil
}

func (s *service) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	if s.cache != nil {
		if tx, found, err := s.cache.GetTransaction(ctx, reference); err == nil && found {
			return tx, nil
		}
	}

	tx, err := s.store.Transactions().GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheTransaction(ctx, tx); err != nil {
			logger.WithField("reference", reference).Warnf("failed to cache transaction: %v", err)
		}
	}
	return tx, nil
}

// GetForUser hides entries the user neither owns nor received.
func (s *service) GetForUser(ctx context.Context, userID uint, reference string) (*models.Transaction, error) {
	tx, err := s.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID && (tx.RecipientID == nil || *tx.RecipientID != userID) {
		return nil, apperrors.ErrTransactionNotFound
	}
	return tx, nil
}

func (s *service) FindByIdempotencyKey(ctx context.Context, userID uint, key string) (*models.Transaction, error) {
	tx, err := s.store.Transactions().FindByIdempotencyKey(ctx, userID, key)
	if errors.Is(err, repositories.ErrTransactionNotFound) {
		return nil, apperrors.ErrTransactionNotFound
	}
	return tx, err
}

func (s *service) ListByUser(ctx context.Context, userID uint, filter repositories.TransactionFilter, limit, offset int) ([]models.Transaction, int64, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, apperrors.Validation("unknown transaction type")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperrors.Validation("unknown transaction status")
	}
	return s.store.Transactions().ListByUser(ctx, userID, filter, limit, offset)
}

func (s *service) ListReceived(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, int64, error) {
	return s.store.Transactions().ListByRecipient(ctx, userID, limit, offset)
}

package transfer

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/models"
	"oruswallet/internal/repositories"
	"oruswallet/internal/services/authz"
	"oruswallet/internal/services/ledger"
	"oruswallet/internal/services/notification"
	"oruswallet/internal/services/settlement"
	"oruswallet/internal/services/wallet"
)

type service struct {
	store     repositories.Store
	ledger    ledger.Service
	gate      authz.Gate
	wallets   wallet.Service
	collector settlement.Collector
	payee     settlement.Payee
	notifier  notification.Notifier
	now       func() time.Time
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates the transfer engine. notifier may be nil.
func NewService(
	store repositories.Store,
	ledgerSvc ledger.Service,
	gate authz.Gate,
	wallets wallet.Service,
	collector settlement.Collector,
	payee settlement.Payee,
	notifier notification.Notifier,
	opts ...Option,
) Service {
	s := &service{
		store:     store,
		ledger:    ledgerSvc,
		gate:      gate,
		wallets:   wallets,
		collector: collector,
		payee:     payee,
		notifier:  notifier,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) authorize(ctx context.Context, userID uint, cred Credential) error {
	decision, err := s.gate.Authorize(ctx, userID, cred.Action, cred.Secret)
	if err != nil {
		return err
	}
	return decision.Err()
}

// replay returns the entry already recorded under key, if any.
func (s *service) replay(ctx context.Context, userID uint, key string) (*models.Transaction, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, nil
	}
	existing, err := s.ledger.FindByIdempotencyKey(ctx, userID, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return existing, true, nil
}

// createPending records the entry, resolving a racing duplicate to the
// entry that won.
func (s *service) createPending(ctx context.Context, entry ledger.PendingEntry) (*models.Transaction, bool, error) {
	tx, err := s.ledger.CreatePending(ctx, entry)
	if err != nil {
		var dup *ledger.DuplicateError
		if errors.As(err, &dup) {
			return dup.Existing, true, nil
		}
		return nil, false, err
	}
	return tx, false, nil
}

// cancelPending closes an entry whose caller went away before any money moved.
func (s *service) cancelPending(ctx context.Context, t *tracker, entry *models.Transaction, cause error) (*models.Transaction, error) {
	ctx = context.WithoutCancel(ctx)
	cancelled, err := s.ledger.MarkCancelled(ctx, entry.Reference)
	if err != nil {
		t.entry.WithError(err).Warn("could not cancel ledger entry")
		return entry, cause
	}
	t.to(StateCancelled)
	s.notify(ctx, cancelled)
	return cancelled, cause
}

// abort marks the entry failed after a rolled back attempt. Business
// failures return the failed entry; storage faults return none.
func (s *service) abort(ctx context.Context, t *tracker, entry *models.Transaction, cause error) (*models.Transaction, error) {
	reason := failureReason(cause)
	t.failed(reason)

	failed, err := s.ledger.MarkFailed(ctx, entry.Reference, reason)
	if err != nil {
		t.entry.WithError(err).Warn("could not mark ledger entry failed")
		failed = entry
	} else {
		s.notify(ctx, failed)
	}
	if isBusinessFailure(cause) {
		return failed, cause
	}
	return nil, cause
}

func (s *service) notify(ctx context.Context, tx *models.Transaction) {
	if s.notifier == nil || tx == nil {
		return
	}
	if err := s.notifier.TransactionUpdated(ctx, tx); err != nil {
		t := track("notify", tx.UserID)
		t.withReference(tx.Reference)
		t.entry.WithError(err).Warn("transaction notification failed")
	}
}

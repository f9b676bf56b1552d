package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/models"
	"oruswallet/internal/repositories"
	"oruswallet/internal/repositories/cache"
	"oruswallet/internal/services/ledger"
	"oruswallet/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	store  repositories.Store
	ledger ledger.Service
	user   *models.User
	peer   *models.User
}

func setup(t *testing.T, opts ...ledger.Option) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	store := repositories.NewStore(db)
	return &fixture{
		db:     db,
		store:  store,
		ledger: ledger.NewService(store, cache.NewCacheService(rdb, time.Minute), opts...),
		user:   testutil.CreateUser(t, db, "9000000001", "100"),
		peer:   testutil.CreateUser(t, db, "9000000002", "0"),
	}
}

func (f *fixture) transferEntry(amount, key string) ledger.PendingEntry {
	return ledger.PendingEntry{
		UserID:         f.user.ID,
		Type:           models.TransactionTypeTransfer,
		Amount:         decimal.RequireFromString(amount),
		RecipientID:    &f.peer.ID,
		IdempotencyKey: key,
		Metadata:       models.NewTransferMetadata(models.TransferMetadata{RecipientID: f.peer.ID}),
	}
}

func TestCreatePending(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tx, err := f.ledger.CreatePending(ctx, f.transferEntry("25.50", ""))
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusPending, tx.Status)
	assert.Regexp(t, `^TX-\d+-[A-Z0-9]{6}$`, tx.Reference)
	assert.NotEmpty(t, tx.TransactionID)
	assert.Equal(t, "INR", tx.Currency)

	stored, err := f.ledger.GetByReference(ctx, tx.Reference)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(decimal.RequireFromString("25.50")))
	require.NotNil(t, stored.Metadata.Transfer)
	assert.Equal(t, f.peer.ID, stored.Metadata.Transfer.RecipientID)
}

func TestCreatePending_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		patch func(*ledger.PendingEntry)
	}{
		{"zero amount", func(e *ledger.PendingEntry) { e.Amount = decimal.Zero }},
		{"negative amount", func(e *ledger.PendingEntry) { e.Amount = decimal.NewFromInt(-1) }},
		{"three decimals", func(e *ledger.PendingEntry) { e.Amount = decimal.RequireFromString("1.005") }},
		{"missing user", func(e *ledger.PendingEntry) { e.UserID = 0 }},
		{"unknown type", func(e *ledger.PendingEntry) { e.Type = "gift" }},
		{"metadata mismatch", func(e *ledger.PendingEntry) {
			e.Metadata = models.NewRechargeMetadata(models.RechargeMetadata{Operator: "jio", MobileNumber: "9000000001"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := f.transferEntry("10", "")
			tt.patch(&entry)
			_, err := f.ledger.CreatePending(ctx, entry)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		})
	}
}

func TestCreatePending_IdempotencyKey(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.ledger.CreatePending(ctx, f.transferEntry("10", "key-1"))
	require.NoError(t, err)

	_, err = f.ledger.CreatePending(ctx, f.transferEntry("10", "key-1"))
	var dup *ledger.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.ErrorIs(t, err, ledger.ErrDuplicateIdempotencyKey)
	assert.Equal(t, first.Reference, dup.Existing.Reference)

	// keys are scoped per user
	other := f.transferEntry("10", "key-1")
	other.UserID = f.peer.ID
	other.RecipientID = &f.user.ID
	other.Metadata = models.NewTransferMetadata(models.TransferMetadata{RecipientID: f.user.ID})
	_, err = f.ledger.CreatePending(ctx, other)
	assert.NoError(t, err)
}

func TestCreatePending_RerollsOnCollision(t *testing.T) {
	refs := []string{"TX-1-AAAAAA", "TX-1-AAAAAA", "TX-1-BBBBBB"}
	var calls int
	f := setup(t, ledger.WithReferenceSource(func(time.Time) (string, error) {
		ref := refs[calls]
		calls++
		return ref, nil
	}))
	ctx := context.Background()

	first, err := f.ledger.CreatePending(ctx, f.transferEntry("1", ""))
	require.NoError(t, err)
	second, err := f.ledger.CreatePending(ctx, f.transferEntry("1", ""))
	require.NoError(t, err)

	assert.Equal(t, "TX-1-AAAAAA", first.Reference)
	assert.Equal(t, "TX-1-BBBBBB", second.Reference)
	assert.Equal(t, 3, calls)
}

func TestCreatePending_GivesUpAfterRepeatedCollisions(t *testing.T) {
	f := setup(t, ledger.WithReferenceSource(func(time.Time) (string, error) {
		return "TX-1-SAMESS", nil
	}))
	ctx := context.Background()

	_, err := f.ledger.CreatePending(ctx, f.transferEntry("1", ""))
	require.NoError(t, err)

	_, err = f.ledger.CreatePending(ctx, f.transferEntry("1", ""))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateReference)
}

func TestCreatePending_ConcurrentReferencesAreUnique(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	refs := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := f.ledger.CreatePending(ctx, f.transferEntry("1", ""))
			if assert.NoError(t, err) {
				refs <- tx.Reference
			}
		}()
	}
	wg.Wait()
	close(refs)

	seen := make(map[string]bool)
	for ref := range refs {
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
	assert.Len(t, seen, n)
}

func TestTransitions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	t.Run("complete is idempotent", func(t *testing.T) {
		tx, err := f.ledger.CreatePending(ctx, f.transferEntry("5", ""))
		require.NoError(t, err)

		done, err := f.ledger.MarkCompleted(ctx, tx.Reference)
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusCompleted, done.Status)
		assert.NotNil(t, done.CompletedAt)

		again, err := f.ledger.MarkCompleted(ctx, tx.Reference)
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusCompleted, again.Status)

		_, err = f.ledger.MarkFailed(ctx, tx.Reference, "late failure")
		assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
	})

	t.Run("failed records reason", func(t *testing.T) {
		tx, err := f.ledger.CreatePending(ctx, f.transferEntry("5", ""))
		require.NoError(t, err)

		failed, err := f.ledger.MarkFailed(ctx, tx.Reference, "recipient wallet inactive")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusFailed, failed.Status)
		assert.Equal(t, "recipient wallet inactive", failed.FailureReason)

		_, err = f.ledger.MarkCompleted(ctx, tx.Reference)
		assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
	})

	t.Run("cancel before debit", func(t *testing.T) {
		tx, err := f.ledger.CreatePending(ctx, f.transferEntry("5", ""))
		require.NoError(t, err)

		cancelled, err := f.ledger.MarkCancelled(ctx, tx.Reference)
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusCancelled, cancelled.Status)
	})

	t.Run("cancel after debit", func(t *testing.T) {
		tx, err := f.ledger.CreatePending(ctx, f.transferEntry("5", ""))
		require.NoError(t, err)
		require.NoError(t, f.ledger.MarkDebited(ctx, tx.Reference))

		_, err = f.ledger.MarkCancelled(ctx, tx.Reference)
		assert.ErrorIs(t, err, apperrors.ErrNotCancellable)

		_, err = f.ledger.MarkCompleted(ctx, tx.Reference)
		assert.NoError(t, err)
	})

	t.Run("unknown reference", func(t *testing.T) {
		_, err := f.ledger.MarkCompleted(ctx, "TX-0-NOPE00")
		assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)
	})
}

func TestConcurrentFinalization_SingleWinner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tx, err := f.ledger.CreatePending(ctx, f.transferEntry("5", ""))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan models.TransactionStatus, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var got *models.Transaction
			var err error
			if i%2 == 0 {
				got, err = f.ledger.MarkCompleted(ctx, tx.Reference)
			} else {
				got, err = f.ledger.MarkFailed(ctx, tx.Reference, "race")
			}
			if err == nil {
				results <- got.Status
			}
		}(i)
	}
	wg.Wait()
	close(results)

	var statuses []models.TransactionStatus
	for s := range results {
		statuses = append(statuses, s)
	}
	require.NotEmpty(t, statuses)
	for _, s := range statuses {
		assert.Equal(t, statuses[0], s, "entries finalized to different states")
	}
}

func TestWithStore_RollbackLeavesNoEntry(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var ref string
	err := f.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		entry, err := f.ledger.WithStore(tx).CreatePending(ctx, f.transferEntry("5", ""))
		if err != nil {
			return err
		}
		ref = entry.Reference
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = f.ledger.GetByReference(ctx, ref)
	assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)
}

func TestGetForUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	stranger := testutil.CreateUser(t, f.db, "9000000003", "0")

	tx, err := f.ledger.CreatePending(ctx, f.transferEntry("5", ""))
	require.NoError(t, err)

	_, err = f.ledger.GetForUser(ctx, f.user.ID, tx.Reference)
	assert.NoError(t, err)
	_, err = f.ledger.GetForUser(ctx, f.peer.ID, tx.Reference)
	assert.NoError(t, err)
	_, err = f.ledger.GetForUser(ctx, stranger.ID, tx.Reference)
	assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)
}

func TestListByUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		tx, err := f.ledger.CreatePending(ctx, f.transferEntry(fmt.Sprintf("%d", i+1), ""))
		require.NoError(t, err)
		if i%2 == 0 {
			_, err = f.ledger.MarkCompleted(ctx, tx.Reference)
			require.NoError(t, err)
		}
	}

	all, total, err := f.ledger.ListByUser(ctx, f.user.ID, repositories.TransactionFilter{}, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, all, 2)
	assert.True(t, all[0].Amount.Equal(decimal.NewFromInt(5)), "newest first")

	completed, total, err := f.ledger.ListByUser(ctx, f.user.ID,
		repositories.TransactionFilter{Status: models.TransactionStatusCompleted}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, completed, 3)

	_, _, err = f.ledger.ListByUser(ctx, f.user.ID, repositories.TransactionFilter{Status: "bogus"}, 10, 0)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	received, total, err := f.ledger.ListReceived(ctx, f.peer.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, received, 5)
}

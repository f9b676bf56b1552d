package transfer_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/models"
	"oruswallet/internal/services/authz"
	"oruswallet/internal/services/transfer"
	"oruswallet/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransfer_Completes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sender := f.user(t, "9300000001", "100")
	recipient := f.user(t, "9300000002", "20")

	tx, err := f.engine.Transfer(ctx, transfer.TransferRequest{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Amount:      amount("30.50"),
		Credential:  pin(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusCompleted, tx.Status)
	assert.Regexp(t, `^TX-\d+-[A-Z0-9]{6}$`, tx.Reference)
	require.NotNil(t, tx.RecipientID)
	assert.Equal(t, recipient.ID, *tx.RecipientID)
	assert.Equal(t, transfer.ChannelWallet, tx.Metadata.Transfer.Channel)

	assert.True(t, f.balance(t, sender.ID).Equal(amount("69.50")))
	assert.True(t, f.balance(t, recipient.ID).Equal(amount("50.50")))
	assert.Len(t, f.notifier.updates, 1)
}

func TestTransfer_ExactBalanceAllowed(t *testing.T) {
	f := setup(t)
	sender := f.user(t, "9300000003", "10")
	recipient := f.user(t, "9300000004", "0")

	_, err := f.engine.Transfer(context.Background(), transfer.TransferRequest{
		SenderID: sender.ID, RecipientID: recipient.ID, Amount: amount("10"), Credential: pin(),
	})
	require.NoError(t, err)
	assert.True(t, f.balance(t, sender.ID).IsZero())
}

func TestTransfer_RejectionsHaveNoSideEffects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sender := f.user(t, "9300000005", "50")
	recipient := f.user(t, "9300000006", "0")

	tests := []struct {
		name     string
		req      transfer.TransferRequest
		wantKind apperrors.Kind
	}{
		{
			name:     "insufficient funds",
			req:      transfer.TransferRequest{SenderID: sender.ID, RecipientID: recipient.ID, Amount: amount("50.01"), Credential: pin()},
			wantKind: apperrors.KindInsufficientFunds,
		},
		{
			name:     "wrong pin",
			req:      transfer.TransferRequest{SenderID: sender.ID, RecipientID: recipient.ID, Amount: amount("1"), Credential: transfer.Credential{Action: authz.ActionPayment, Secret: "0000"}},
			wantKind: apperrors.KindAuthorization,
		},
		{
			name:     "self transfer",
			req:      transfer.TransferRequest{SenderID: sender.ID, RecipientID: sender.ID, Amount: amount("1"), Credential: pin()},
			wantKind: apperrors.KindValidation,
		},
		{
			name:     "zero amount",
			req:      transfer.TransferRequest{SenderID: sender.ID, RecipientID: recipient.ID, Amount: amount("0"), Credential: pin()},
			wantKind: apperrors.KindValidation,
		},
		{
			name:     "fractional paise",
			req:      transfer.TransferRequest{SenderID: sender.ID, RecipientID: recipient.ID, Amount: amount("0.001"), Credential: pin()},
			wantKind: apperrors.KindValidation,
		},
		{
			name:     "unknown recipient",
			req:      transfer.TransferRequest{SenderID: sender.ID, RecipientID: 9999, Amount: amount("1"), Credential: pin()},
			wantKind: apperrors.KindNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := f.engine.Transfer(ctx, tt.req)
			require.Error(t, err)
			assert.Nil(t, tx)
			assert.Equal(t, tt.wantKind, apperrors.KindOf(err))
		})
	}

	assert.Empty(t, f.entries(t, sender.ID))
	assert.True(t, f.balance(t, sender.ID).Equal(amount("50")))
	assert.True(t, f.balance(t, recipient.ID).IsZero())
}

func TestTransfer_SessionCredential(t *testing.T) {
	f := setup(t)
	sender := f.user(t, "9300000007", "10")
	recipient := f.user(t, "9300000008", "0")

	token, err := utils.GenerateToken("test-secret", time.Minute, &models.UserClaims{
		UserID: sender.ID, TokenVersion: sender.TokenVersion,
	})
	require.NoError(t, err)

	_, err = f.engine.Transfer(context.Background(), transfer.TransferRequest{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Amount:      amount("5"),
		Credential:  transfer.Credential{Action: authz.ActionSession, Secret: token},
	})
	require.NoError(t, err)

	// a token for one user cannot move another user's money
	_, err = f.engine.Transfer(context.Background(), transfer.TransferRequest{
		SenderID:    recipient.ID,
		RecipientID: sender.ID,
		Amount:      amount("1"),
		Credential:  transfer.Credential{Action: authz.ActionSession, Secret: token},
	})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTransfer_RecipientWalletLockedIsReversed(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sender := f.user(t, "9300000009", "40")
	recipient := f.user(t, "9300000010", "0")
	require.NoError(t, f.store.Wallets().UpdateStatus(ctx, recipient.ID, models.WalletStatusLocked))

	tx, err := f.engine.Transfer(ctx, transfer.TransferRequest{
		SenderID: sender.ID, RecipientID: recipient.ID, Amount: amount("15"), Credential: pin(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPartialFailureReversed)
	require.NotNil(t, tx)
	assert.Equal(t, models.TransactionStatusFailed, tx.Status)
	assert.Contains(t, tx.FailureReason, "recipient")

	assert.True(t, f.balance(t, sender.ID).Equal(amount("40")))
	assert.True(t, f.balance(t, recipient.ID).IsZero())
}

func TestTransfer_IdempotentRetry(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sender := f.user(t, "9300000011", "100")
	recipient := f.user(t, "9300000012", "0")

	req := transfer.TransferRequest{
		SenderID: sender.ID, RecipientID: recipient.ID, Amount: amount("25"),
		Credential: pin(), IdempotencyKey: "retry-1",
	}
	first, err := f.engine.Transfer(ctx, req)
	require.NoError(t, err)
	second, err := f.engine.Transfer(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.Reference, second.Reference)
	assert.Len(t, f.entries(t, sender.ID), 1)
	assert.True(t, f.balance(t, sender.ID).Equal(amount("75")))
	assert.True(t, f.balance(t, recipient.ID).Equal(amount("25")))
}

func TestTransfer_ConcurrentRetriesProcessOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sender := f.user(t, "9300000013", "100")
	recipient := f.user(t, "9300000014", "0")

	var wg sync.WaitGroup
	refs := make(chan string, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := f.engine.Transfer(ctx, transfer.TransferRequest{
				SenderID: sender.ID, RecipientID: recipient.ID, Amount: amount("10"),
				Credential: pin(), IdempotencyKey: "same-key",
			})
			if assert.NoError(t, err) {
				refs <- tx.Reference
			}
		}()
	}
	wg.Wait()
	close(refs)

	seen := map[string]bool{}
	for ref := range refs {
		seen[ref] = true
	}
	assert.Len(t, seen, 1)
	assert.True(t, f.balance(t, sender.ID).Equal(amount("90")))
}

func TestTransfer_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sender := f.user(t, "9300000015", "100")
	recipient := f.user(t, "9300000016", "0")

	const attempts = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := f.engine.Transfer(ctx, transfer.TransferRequest{
				SenderID: sender.ID, RecipientID: recipient.ID, Amount: amount("10"), Credential: pin(),
			})
			if err == nil && tx.Status == models.TransactionStatusCompleted {
				mu.Lock()
				completed++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, completed)
	assert.True(t, f.balance(t, sender.ID).IsZero())
	assert.True(t, f.balance(t, recipient.ID).Equal(amount("100")))
}

func TestTransfer_CrossTransfersConserveMoney(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.user(t, "9300000017", "500")
	b := f.user(t, "9300000018", "500")

	before, err := f.store.Wallets().TotalBalance(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = f.engine.Transfer(ctx, transfer.TransferRequest{
				SenderID: a.ID, RecipientID: b.ID, Amount: amount(fmt.Sprintf("%d.25", i+1)), Credential: pin(),
			})
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _ = f.engine.Transfer(ctx, transfer.TransferRequest{
				SenderID: b.ID, RecipientID: a.ID, Amount: amount(fmt.Sprintf("%d.75", i+1)), Credential: pin(),
			})
		}(i)
	}
	wg.Wait()

	after, err := f.store.Wallets().TotalBalance(ctx)
	require.NoError(t, err)
	assert.True(t, before.Equal(after), "total %s became %s", before, after)
	assert.False(t, f.balance(t, a.ID).IsNegative())
	assert.False(t, f.balance(t, b.ID).IsNegative())
}

func TestTransfer_CancelledCallerLeavesNoTrace(t *testing.T) {
	f := setup(t)
	sender := f.user(t, "9300000019", "100")
	recipient := f.user(t, "9300000020", "0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.engine.Transfer(ctx, transfer.TransferRequest{
		SenderID: sender.ID, RecipientID: recipient.ID, Amount: amount("10"), Credential: pin(),
	})
	require.Error(t, err)
	assert.Empty(t, f.entries(t, sender.ID))
	assert.True(t, f.balance(t, sender.ID).Equal(amount("100")))
}

package wallet_test

import (
	"context"
	"testing"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/models"
	"oruswallet/internal/repositories"
	"oruswallet/internal/services/wallet"
	"oruswallet/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocked_Apply(t *testing.T) {
	db := testutil.NewDB(t)
	store := repositories.NewStore(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "9200000001", "100")
	b := testutil.CreateUser(t, db, "9200000002", "5")

	tests := []struct {
		name    string
		op      wallet.WalletOperation
		wantErr error
	}{
		{"debit exact balance", wallet.Debit(b.ID, decimal.NewFromInt(5), "r1"), nil},
		{"debit beyond balance", wallet.Debit(b.ID, decimal.NewFromInt(1), "r2"), apperrors.ErrInsufficientFunds},
		{"credit", wallet.Credit(a.ID, decimal.RequireFromString("0.01"), "r3"), nil},
		{"zero amount", wallet.Credit(a.ID, decimal.Zero, "r4"), apperrors.ErrInvalidAmount},
		{"unknown wallet", wallet.Credit(999, decimal.NewFromInt(1), "r5"), apperrors.ErrWalletNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
				locked, err := wallet.Lock(ctx, tx, a.ID, b.ID, tt.op.UserID)
				if err != nil {
					return err
				}
				return locked.Apply(ctx, tt.op)
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	assert.True(t, testutil.Balance(t, db, a.ID).Equal(decimal.RequireFromString("100.01")))
	assert.True(t, testutil.Balance(t, db, b.ID).IsZero())
}

func TestLocked_InactiveWallet(t *testing.T) {
	db := testutil.NewDB(t)
	store := repositories.NewStore(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "9200000003", "10")
	require.NoError(t, store.Wallets().UpdateStatus(ctx, u.ID, models.WalletStatusLocked))

	err := store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		locked, err := wallet.Lock(ctx, tx, u.ID)
		if err != nil {
			return err
		}
		return locked.Apply(ctx, wallet.Credit(u.ID, decimal.NewFromInt(1), "r"))
	})
	assert.ErrorIs(t, err, apperrors.ErrWalletInactive)

	err = store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		locked, err := wallet.Lock(ctx, tx, u.ID)
		if err != nil {
			return err
		}
		return locked.Apply(ctx, wallet.Reverse(u.ID, decimal.NewFromInt(1), "r"))
	})
	assert.NoError(t, err, "reversals reach locked wallets")
	assert.True(t, testutil.Balance(t, db, u.ID).Equal(decimal.NewFromInt(11)))
}

func TestService_ValidateBalance(t *testing.T) {
	db := testutil.NewDB(t)
	svc := wallet.NewService(repositories.NewStore(db))
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "9200000004", "50")

	assert.NoError(t, svc.ValidateBalance(ctx, u.ID, decimal.NewFromInt(50)))
	assert.ErrorIs(t, svc.ValidateBalance(ctx, u.ID, decimal.RequireFromString("50.01")), apperrors.ErrInsufficientFunds)
	assert.ErrorIs(t, svc.ValidateBalance(ctx, 999, decimal.NewFromInt(1)), apperrors.ErrWalletNotFound)
}

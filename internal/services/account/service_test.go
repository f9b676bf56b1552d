package account

import (
	"context"
	"testing"
	"time"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/models"
	"oruswallet/internal/repositories"
	"oruswallet/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newTestService(t *testing.T) (Service, *models.User) {
	t.Helper()
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "9000000001", "100")
	return NewService(repositories.NewStore(db)), user
}

func defaults(accts []models.BankAccount) []uint {
	var ids []uint
	for _, a := range accts {
		if a.IsDefault {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestService_GetWallet(t *testing.T) {
	svc, user := newTestService(t)

	wallet, err := svc.GetWallet(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(100)))

	_, err = svc.GetWallet(context.Background(), 4242)
	assert.ErrorIs(t, err, apperrors.ErrWalletNotFound)
}

func TestService_LinkBankAccount(t *testing.T) {
	svc, user := newTestService(t)
	ctx := context.Background()

	first, err := svc.LinkBankAccount(ctx, user.ID, BankAccountInput{
		AccountNumber: "123456789012", IFSC: "hdfc0001234", BankName: "HDFC", HolderName: "Asha",
	})
	require.NoError(t, err)
	assert.True(t, first.IsDefault, "first linked account becomes default")
	assert.Equal(t, "HDFC0001234", first.IFSC)

	second, err := svc.LinkBankAccount(ctx, user.ID, BankAccountInput{
		AccountNumber: "998877665544", IFSC: "ICIC0004321", BankName: "ICICI", HolderName: "Asha",
	})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	third, err := svc.LinkBankAccount(ctx, user.ID, BankAccountInput{
		AccountNumber: "556677889900", IFSC: "SBIN0000001", BankName: "SBI", HolderName: "Asha", MakeDefault: true,
	})
	require.NoError(t, err)

	accts, err := svc.ListBankAccounts(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, accts, 3)
	assert.Equal(t, []uint{third.ID}, defaults(accts))

	_, err = svc.LinkBankAccount(ctx, user.ID, BankAccountInput{
		AccountNumber: "123456789012", IFSC: "HDFC0001234", BankName: "HDFC", HolderName: "Asha",
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateBankAccount)

	_, err = svc.LinkBankAccount(ctx, user.ID, BankAccountInput{
		AccountNumber: "12", IFSC: "HDFC0001234", BankName: "HDFC", HolderName: "Asha",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestService_SetDefaultBankAccount(t *testing.T) {
	svc, user := newTestService(t)
	ctx := context.Background()

	a, err := svc.LinkBankAccount(ctx, user.ID, BankAccountInput{AccountNumber: "111122223333", IFSC: "HDFC0001234", BankName: "HDFC", HolderName: "Asha"})
	require.NoError(t, err)
	b, err := svc.LinkBankAccount(ctx, user.ID, BankAccountInput{AccountNumber: "444455556666", IFSC: "ICIC0004321", BankName: "ICICI", HolderName: "Asha"})
	require.NoError(t, err)

	require.NoError(t, svc.SetDefaultBankAccount(ctx, user.ID, b.ID))
	accts, err := svc.ListBankAccounts(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, defaults(accts))

	// Setting the current default again is a no-op.
	require.NoError(t, svc.SetDefaultBankAccount(ctx, user.ID, b.ID))

	err = svc.SetDefaultBankAccount(ctx, user.ID, 9999)
	assert.ErrorIs(t, err, apperrors.ErrBankAccountNotFound)
	accts, err = svc.ListBankAccounts(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, defaults(accts), "failed switch leaves the old default")

	def, err := svc.DefaultBankAccount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, def.ID)
	assert.NotEqual(t, a.ID, def.ID)
}

func TestService_UnlinkDefaultPromotesNewest(t *testing.T) {
	svc, user := newTestService(t)
	ctx := context.Background()

	a, err := svc.LinkBankAccount(ctx, user.ID, BankAccountInput{AccountNumber: "111122223333", IFSC: "HDFC0001234", BankName: "HDFC", HolderName: "Asha"})
	require.NoError(t, err)
	_, err = svc.LinkBankAccount(ctx, user.ID, BankAccountInput{AccountNumber: "444455556666", IFSC: "ICIC0004321", BankName: "ICICI", HolderName: "Asha"})
	require.NoError(t, err)
	c, err := svc.LinkBankAccount(ctx, user.ID, BankAccountInput{AccountNumber: "777788889999", IFSC: "SBIN0000001", BankName: "SBI", HolderName: "Asha"})
	require.NoError(t, err)

	require.NoError(t, svc.UnlinkBankAccount(ctx, user.ID, a.ID))
	accts, err := svc.ListBankAccounts(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, accts, 2)
	assert.Equal(t, []uint{c.ID}, defaults(accts))

	assert.ErrorIs(t, svc.UnlinkBankAccount(ctx, user.ID, a.ID), apperrors.ErrBankAccountNotFound)

}

func TestService_UpsertBiller(t *testing.T) {
	svc, user := newTestService(t)
	ctx := context.Background()
	key := BillerKey{BillType: "Electricity", Provider: "BESCOM", ConsumerID: "C-1001"}

	first, err := svc.UpsertBiller(ctx, user.ID, key, models.BillerAttrs{
		RegisteredName: strPtr("Asha Rao"),
		Nickname:       strPtr("Home"),
	})
	require.NoError(t, err)
	assert.Equal(t, "electricity", first.BillType)

	second, err := svc.UpsertBiller(ctx, user.ID, key, models.BillerAttrs{
		Nickname:       strPtr("Flat"),
		AutoPayEnabled: boolPtr(true),
		AutoPayLimit:   decPtr("500"),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	billers, err := svc.ListBillers(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, billers, 1)
	assert.Equal(t, "Flat", billers[0].Nickname)
	assert.Equal(t, "Asha Rao", billers[0].RegisteredName)
	assert.True(t, billers[0].AutoPayEnabled)
	assert.True(t, billers[0].AutoPayLimit.Decimal.Equal(decimal.NewFromInt(500)))
}

func TestService_UpsertBillerConflict(t *testing.T) {
	svc, user := newTestService(t)
	ctx := context.Background()
	key := BillerKey{BillType: "water", Provider: "BWSSB", ConsumerID: "W-9"}

	_, err := svc.UpsertBiller(ctx, user.ID, key, models.BillerAttrs{RegisteredName: strPtr("Asha Rao")})
	require.NoError(t, err)

	_, err = svc.UpsertBiller(ctx, user.ID, key, models.BillerAttrs{
		RegisteredName: strPtr("Someone Else"),
		Nickname:       strPtr("Overwrite"),
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateBiller)

	billers, err := svc.ListBillers(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, billers, 1)
	assert.Empty(t, billers[0].Nickname, "rejected upsert changes nothing")
}

func TestService_CreateBillerDuplicate(t *testing.T) {
	svc, user := newTestService(t)
	ctx := context.Background()
	key := BillerKey{BillType: "gas", Provider: "IGL", ConsumerID: "G-1"}

	_, err := svc.CreateBiller(ctx, user.ID, key, models.BillerAttrs{})
	require.NoError(t, err)
	_, err = svc.CreateBiller(ctx, user.ID, key, models.BillerAttrs{Nickname: strPtr("again")})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateBiller)
}

func TestService_BillerValidation(t *testing.T) {
	svc, user := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpsertBiller(ctx, user.ID, BillerKey{BillType: "gas", Provider: "IGL"}, models.BillerAttrs{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.UpsertBiller(ctx, user.ID, BillerKey{BillType: "gas", Provider: "IGL", ConsumerID: "G-1"},
		models.BillerAttrs{AutoPayEnabled: boolPtr(true)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestService_RecordBillDue(t *testing.T) {
	svc, user := newTestService(t)
	ctx := context.Background()

	biller, err := svc.CreateBiller(ctx, user.ID, BillerKey{BillType: "gas", Provider: "IGL", ConsumerID: "G-1"}, models.BillerAttrs{})
	require.NoError(t, err)

	due := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.RecordBillDue(ctx, user.ID, biller.ID, decimal.RequireFromString("420.50"), due, "B-77"))

	got, err := svc.GetBiller(ctx, user.ID, biller.ID)
	require.NoError(t, err)
	assert.True(t, got.HasUnpaidBill())
	assert.Equal(t, "B-77", got.BillNumber)

	err = svc.RecordBillDue(ctx, user.ID, 9999, decimal.NewFromInt(1), due, "")
	assert.ErrorIs(t, err, apperrors.ErrBillerNotFound)
}

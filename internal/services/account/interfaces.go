package account

import (
	"context"
	"time"

	"oruswallet/internal/models"

	"github.com/shopspring/decimal"
)

// Service reads and maintains the account data the ledger depends on.
type Service interface {
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)

	ListBankAccounts(ctx context.Context, userID uint) ([]models.BankAccount, error)
	GetBankAccount(ctx context.Context, userID, accountID uint) (*models.BankAccount, error)
	DefaultBankAccount(ctx context.Context, userID uint) (*models.BankAccount, error)
	LinkBankAccount(ctx context.Context, userID uint, in BankAccountInput) (*models.BankAccount, error)
	SetDefaultBankAccount(ctx context.Context, userID, accountID uint) error
	UnlinkBankAccount(ctx context.Context, userID, accountID uint) error

	ListBillers(ctx context.Context, userID uint) ([]models.Biller, error)
	GetBiller(ctx context.Context, userID, billerID uint) (*models.Biller, error)
	UpsertBiller(ctx context.Context, userID uint, key BillerKey, attrs models.BillerAttrs) (*models.Biller, error)
	CreateBiller(ctx context.Context, userID uint, key BillerKey, attrs models.BillerAttrs) (*models.Biller, error)
	RecordBillDue(ctx context.Context, userID, billerID uint, amount decimal.Decimal, dueDate time.Time, billNumber string) error
}

type BankAccountInput struct {
	AccountNumber string
	IFSC          string
	BankName      string
	HolderName    string
	MakeDefault   bool
}

// BillerKey is the compound identity of a saved biller.
type BillerKey struct {
	BillType   string
	Provider   string
	ConsumerID string
}

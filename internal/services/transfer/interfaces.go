package transfer

import (
	"context"
	"time"

	"oruswallet/internal/models"
	"oruswallet/internal/services/authz"
	"oruswallet/internal/services/settlement"

	"github.com/shopspring/decimal"
)

// Service moves money between wallets and the outside world.
//
// Every method returns the ledger entry it worked on. When a debit had to be
// reversed the entry is returned together with ErrPartialFailureReversed.
// A retry carrying an already used idempotency key returns the original
// entry without processing it again.
type Service interface {
	Transfer(ctx context.Context, req TransferRequest) (*models.Transaction, error)
	PayBill(ctx context.Context, req PayBillRequest) (*models.Transaction, error)
	Recharge(ctx context.Context, req RechargeRequest) (*models.Transaction, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (*models.Transaction, error)
	AddMoney(ctx context.Context, req AddMoneyRequest) (*models.Transaction, error)
	Cancel(ctx context.Context, userID uint, reference string) (*models.Transaction, error)
	RunAutoPay(ctx context.Context, now time.Time) (AutoPayReport, error)
}

// Credential is what the authorization gate checks before money moves.
type Credential struct {
	Action authz.Action
	Secret string
}

type TransferRequest struct {
	SenderID       uint
	RecipientID    uint
	Amount         decimal.Decimal
	Credential     Credential
	IdempotencyKey string
	// Channel is "wallet" or "qr".
	Channel string
}

type PayBillRequest struct {
	UserID   uint
	BillerID uint
	// Amount defaults to the biller's outstanding due amount when zero.
	Amount         decimal.Decimal
	Credential     Credential
	IdempotencyKey string
}

type RechargeRequest struct {
	UserID         uint
	Operator       string
	MobileNumber   string
	Plan           string
	Amount         decimal.Decimal
	Credential     Credential
	IdempotencyKey string
}

type WithdrawRequest struct {
	UserID uint
	// BankAccountID selects a linked account; zero means the default one.
	BankAccountID  uint
	Amount         decimal.Decimal
	Credential     Credential
	IdempotencyKey string
}

type AddMoneyRequest struct {
	UserID         uint
	Amount         decimal.Decimal
	Method         settlement.Method
	BankAccountID  uint
	SourceToken    string
	Credential     Credential
	IdempotencyKey string
}

// AutoPayReport summarizes one auto-pay sweep.
type AutoPayReport struct {
	Paid    int
	Skipped int
	Failed  int
}

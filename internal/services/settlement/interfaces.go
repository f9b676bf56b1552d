// Package settlement holds the collaborators that move money outside the
// wallet: funding for deposits and the outbound leg of bill payments,
// recharges and withdrawals.
package settlement

import (
	"context"

	"oruswallet/internal/models"

	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodWallet Method = "wallet"
	MethodBank   Method = "bank"
	MethodCard   Method = "card"
	MethodUPI    Method = "upi"
)

func (m Method) Valid() bool {
	switch m {
	case MethodWallet, MethodBank, MethodCard, MethodUPI:
		return true
	}
	return false
}

// FundingRequest asks a collector to pull money into the wallet.
type FundingRequest struct {
	UserID    uint
	Reference string
	Amount    decimal.Decimal
	Currency  string
	Method    Method
	// SourceToken identifies the external instrument, e.g. a card payment method.
	SourceToken string
	Bank        *models.BankAccount
}

// PayoutRequest asks a payee to deliver money that has left the wallet.
type PayoutRequest struct {
	UserID    uint
	Reference string
	Amount    decimal.Decimal
	Currency  string
	Metadata  models.Metadata
}

// Receipt is the external system's confirmation.
type Receipt struct {
	ExternalRef string
}

type Collector interface {
	Collect(ctx context.Context, req FundingRequest) (Receipt, error)
}

type Payee interface {
	Pay(ctx context.Context, req PayoutRequest) (Receipt, error)
}

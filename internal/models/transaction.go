package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdrawal  TransactionType = "withdrawal"
	TransactionTypeTransfer    TransactionType = "transfer"
	TransactionTypeBillPayment TransactionType = "billPayment"
	TransactionTypeRecharge    TransactionType = "recharge"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer,
		TransactionTypeBillPayment, TransactionTypeRecharge:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed || s == TransactionStatusCancelled
}

// Transaction is a ledger entry. Reference is immutable once written.
type Transaction struct {
	ID             uint              `gorm:"primarykey" json:"-"`
	TransactionID  string            `gorm:"type:varchar(36);uniqueIndex;not null" json:"transaction_id"`
	UserID         uint              `gorm:"not null;index:idx_tx_user_created,priority:1;uniqueIndex:idx_tx_user_idempotency,priority:1" json:"user_id"`
	Type           TransactionType   `gorm:"type:varchar(16);not null" json:"type"`
	Amount         decimal.Decimal   `gorm:"type:decimal(20,2);not null" json:"amount"`
	Currency       string            `gorm:"type:varchar(3);default:'INR'" json:"currency"`
	Status         TransactionStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	Reference      string            `gorm:"type:varchar(32);uniqueIndex;not null" json:"reference"`
	IdempotencyKey *string           `gorm:"type:varchar(128);uniqueIndex:idx_tx_user_idempotency,priority:2" json:"-"`
	RecipientID    *uint             `gorm:"index" json:"recipient_id,omitempty"`
	Metadata       Metadata          `gorm:"type:text" json:"metadata"`
	FailureReason  string            `json:"failure_reason,omitempty"`
	DebitedAt      *time.Time        `json:"-"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
	CreatedAt      time.Time         `gorm:"index:idx_tx_user_created,priority:2" json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

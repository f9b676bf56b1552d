// Package notification triggers user-facing notifications. Delivery itself
// (SMS, email, push) happens downstream of the published events.
package notification

import (
	"context"
	"time"

	"oruswallet/internal/models"

	"github.com/shopspring/decimal"
)

// Notifier is called after the state it reports on has been committed.
type Notifier interface {
	TransactionUpdated(ctx context.Context, tx *models.Transaction) error
	ActionRequired(ctx context.Context, event ActionRequiredEvent) error
	OTPIssued(ctx context.Context, identifier string, purpose models.OTPPurpose, code string) error
}

const (
	ReasonLimitExceeded     = "autopay_limit_exceeded"
	ReasonInsufficientFunds = "insufficient_funds"
	ReasonPaymentFailed     = "payment_failed"
)

// ActionRequiredEvent asks a user to act on something the system could not do alone.
type ActionRequiredEvent struct {
	UserID   uint            `json:"user_id"`
	BillerID uint            `json:"biller_id,omitempty"`
	Reason   string          `json:"reason"`
	Amount   decimal.Decimal `json:"amount"`
	DueDate  *time.Time      `json:"due_date,omitempty"`
}

type TransactionEvent struct {
	Reference     string                   `json:"reference"`
	TransactionID string                   `json:"transaction_id"`
	UserID        uint                     `json:"user_id"`
	RecipientID   *uint                    `json:"recipient_id,omitempty"`
	Type          models.TransactionType   `json:"type"`
	Status        models.TransactionStatus `json:"status"`
	Amount        decimal.Decimal          `json:"amount"`
	Currency      string                   `json:"currency"`
	FailureReason string                   `json:"failure_reason,omitempty"`
	OccurredAt    time.Time                `json:"occurred_at"`
}

type OTPEvent struct {
	Identifier string            `json:"identifier"`
	Purpose    models.OTPPurpose `json:"purpose"`
	Code       string            `json:"code"`
	IssuedAt   time.Time         `json:"issued_at"`
}

func newTransactionEvent(tx *models.Transaction) TransactionEvent {
	return TransactionEvent{
		Reference:     tx.Reference,
		TransactionID: tx.TransactionID,
		UserID:        tx.UserID,
		RecipientID:   tx.RecipientID,
		Type:          tx.Type,
		Status:        tx.Status,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		FailureReason: tx.FailureReason,
		OccurredAt:    time.Now(),
	}
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Biller is a saved payee for bill payments, unique per (user, bill type, provider, consumer id).
type Biller struct {
	ID             uint                `gorm:"primarykey" json:"id"`
	UserID         uint                `gorm:"not null;uniqueIndex:idx_biller_key,priority:1" json:"user_id"`
	BillType       string              `gorm:"not null;uniqueIndex:idx_biller_key,priority:2" json:"bill_type"`
	Provider       string              `gorm:"not null;uniqueIndex:idx_biller_key,priority:3" json:"provider"`
	ConsumerID     string              `gorm:"not null;uniqueIndex:idx_biller_key,priority:4" json:"consumer_id"`
	RegisteredName string              `json:"registered_name"`
	Nickname       string              `json:"nickname"`
	AutoPayEnabled bool                `gorm:"not null;default:false;index" json:"auto_pay_enabled"`
	AutoPayLimit   decimal.NullDecimal `gorm:"type:decimal(20,2)" json:"auto_pay_limit"`
	DueAmount      decimal.NullDecimal `gorm:"type:decimal(20,2)" json:"due_amount"`
	DueDate        *time.Time          `json:"due_date"`
	BillNumber     string              `json:"bill_number"`
	LastPaidAt     *time.Time          `json:"last_paid_at"`
	LastPaidAmount decimal.NullDecimal `gorm:"type:decimal(20,2)" json:"last_paid_amount"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// HasUnpaidBill reports whether a fetched bill is waiting to be paid.
func (b *Biller) HasUnpaidBill() bool {
	return b.DueAmount.Valid && b.DueAmount.Decimal.IsPositive()
}

// BillerAttrs carries the fields an upsert may set. Nil means "leave as is".
type BillerAttrs struct {
	RegisteredName *string
	Nickname       *string
	AutoPayEnabled *bool
	AutoPayLimit   *decimal.Decimal
}

package models

import (
	"encoding/json"
	"strings"
	"time"
)

type BankAccount struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	UserID        uint      `gorm:"not null;index;uniqueIndex:idx_bank_account_user_number,priority:1" json:"user_id"`
	AccountNumber string    `gorm:"not null;uniqueIndex:idx_bank_account_user_number,priority:2" json:"-"`
	IFSC          string    `gorm:"not null;uniqueIndex:idx_bank_account_user_number,priority:3" json:"ifsc"`
	BankName      string    `gorm:"not null" json:"bank_name"`
	HolderName    string    `gorm:"not null" json:"holder_name"`
	IsDefault     bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MaskedNumber keeps only the last four digits of the account number.
func (b BankAccount) MaskedNumber() string {
	n := len(b.AccountNumber)
	if n <= 4 {
		return b.AccountNumber
	}
	return strings.Repeat("X", n-4) + b.AccountNumber[n-4:]
}

func (b BankAccount) MarshalJSON() ([]byte, error) {
	type alias BankAccount
	return json.Marshal(struct {
		alias
		AccountNumber string `json:"account_number"`
	}{alias(b), b.MaskedNumber()})
}

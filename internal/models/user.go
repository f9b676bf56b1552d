package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	UserStatusPendingVerification = "pending_verification"
	UserStatusActive              = "active"
)

type User struct {
	gorm.Model
	Name         string  `gorm:"not null"`
	Email        string  `gorm:"uniqueIndex;not null"`
	Phone        string  `gorm:"uniqueIndex;not null"`
	Password     string  `gorm:"not null" json:"-"`
	PinHash      string  `json:"-"`
	PaymentID    *string `gorm:"uniqueIndex"` // external handle such as a UPI address
	DateOfBirth  *time.Time
	Status       string          `gorm:"default:'pending_verification'"`
	TokenVersion int             `gorm:"default:1"`
	KYC          KYCVerification `gorm:"foreignKey:UserID" json:"kyc"`
	Wallet       *Wallet         `gorm:"foreignKey:UserID" json:"wallet,omitempty"`
}

// HasPIN reports whether a payment PIN has been set.
func (u *User) HasPIN() bool {
	return u.PinHash != ""
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type KYCStatus string

const (
	KYCPending  KYCStatus = "PENDING"
	KYCApproved KYCStatus = "APPROVED"
	KYCRejected KYCStatus = "REJECTED"
)

type KYCVerification struct {
	gorm.Model
	UserID          uint      `gorm:"uniqueIndex;not null"`
	Status          KYCStatus `gorm:"type:varchar(16);default:'PENDING'"`
	DocumentType    string
	DocumentID      string
	ReviewedAt      *time.Time
	RejectionReason string
}

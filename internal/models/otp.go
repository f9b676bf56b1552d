package models

import "time"

type OTPPurpose string

const (
	OTPPurposeRegistration      OTPPurpose = "registration"
	OTPPurposeEmailVerification OTPPurpose = "email_verification"
	OTPPurposePhoneVerification OTPPurpose = "phone_verification"
	OTPPurposePINReset          OTPPurpose = "pin_reset"
)

func (p OTPPurpose) Valid() bool {
	switch p {
	case OTPPurposeRegistration, OTPPurposeEmailVerification, OTPPurposePhoneVerification, OTPPurposePINReset:
		return true
	}
	return false
}

// OTPRecord is the stored state of an issued one-time code.
type OTPRecord struct {
	Identifier string
	Purpose    OTPPurpose
	Code       string
	CreatedAt  time.Time
	Attempts   int
}

package otp

import (
	"context"

	"oruswallet/internal/models"
)

// Service issues and verifies one-time codes.
type Service interface {
	Issue(ctx context.Context, identifier string, purpose models.OTPPurpose) (string, error)
	Verify(ctx context.Context, identifier string, purpose models.OTPPurpose, code string) error
}

// Notifier hands an issued code to the delivery channel.
type Notifier interface {
	OTPIssued(ctx context.Context, identifier string, purpose models.OTPPurpose, code string) error
}

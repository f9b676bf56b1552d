package otp

import "time"

const (
	// Lifetime is how long an issued code stays valid.
	Lifetime = 300 * time.Second

	// retention keeps expired records around so they verify as expired, not missing.
	retention = 2 * Lifetime

	// MaxAttempts wrong guesses burn the code; a new one must be issued.
	MaxAttempts = 5

	codeDigits = 6
	keyPrefix  = "otp"
)

const (
	resultNotFound int64 = iota
	resultExpired
	resultMismatch
	resultConsumed
	resultExhausted
)

package validation

const (
	// Password requirements
	MinPasswordLength = 8
	MaxPasswordLength = 72

	// Payment PIN length bounds
	MinPINLength = 4
	MaxPINLength = 6

	// Amounts are kept in minor units of two decimal places.
	AmountScale = 2
)

package ledger

import (
	"errors"

	"oruswallet/internal/models"
)

var ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")

// DuplicateError carries the entry already recorded under an idempotency key.
type DuplicateError struct {
	Existing *models.Transaction
}

func (e *DuplicateError) Error() string {
	return ErrDuplicateIdempotencyKey.Error() + ": " + e.Existing.Reference
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicateIdempotencyKey
}

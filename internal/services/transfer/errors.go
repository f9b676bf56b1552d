package transfer

import (
	apperrors "oruswallet/internal/errors"
)

// isBusinessFailure reports errors that reject a money movement without
// being a storage fault.
func isBusinessFailure(err error) bool {
	switch apperrors.KindOf(err) {
	case apperrors.KindInternal:
		return false
	}
	return true
}

// failureReason is the text stored on a failed ledger entry.
func failureReason(err error) string {
	if isBusinessFailure(err) {
		return apperrors.Message(err)
	}
	return "internal error"
}

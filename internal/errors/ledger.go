package errors

var (
	ErrTransactionNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "TRANSACTION_NOT_FOUND",
		Message: "transaction not found",
	}
	ErrDuplicateReference = &DomainError{
		Kind:    KindConflict,
		Code:    "DUPLICATE_REFERENCE",
		Message: "could not allocate a unique transaction reference",
	}
	ErrInvalidStateTransition = &DomainError{
		Kind:    KindInvalidStateTransition,
		Code:    "INVALID_STATE_TRANSITION",
		Message: "transaction is already in a different final state",
	}
	ErrPartialFailureReversed = &DomainError{
		Kind:    KindPartialFailureReversed,
		Code:    "PARTIAL_FAILURE_REVERSED",
		Message: "payment could not be completed and the debit was reversed",
	}
	ErrNotCancellable = &DomainError{
		Kind:    KindInvalidStateTransition,
		Code:    "NOT_CANCELLABLE",
		Message: "transaction can no longer be cancelled",
	}
)

var (
	ErrPaymentDeclined = &DomainError{
		Kind:    KindValidation,
		Code:    "PAYMENT_DECLINED",
		Message: "payment was declined",
	}
	ErrUnsupportedPaymentMethod = &DomainError{
		Kind:    KindValidation,
		Code:    "UNSUPPORTED_PAYMENT_METHOD",
		Message: "payment method must be one of wallet, bank, card or upi",
	}
)

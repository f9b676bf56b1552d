package errors

var (
	ErrDuplicateBiller = &DomainError{
		Kind:    KindConflict,
		Code:    "DUPLICATE_BILLER",
		Message: "biller already saved with different details",
	}
	ErrBillerNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "BILLER_NOT_FOUND",
		Message: "biller not found",
	}
	ErrBankAccountNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "BANK_ACCOUNT_NOT_FOUND",
		Message: "bank account not found",
	}
	ErrDuplicateBankAccount = &DomainError{
		Kind:    KindConflict,
		Code:    "DUPLICATE_BANK_ACCOUNT",
		Message: "bank account already linked",
	}
	ErrNoDefaultBankAccount = &DomainError{
		Kind:    KindValidation,
		Code:    "NO_DEFAULT_BANK_ACCOUNT",
		Message: "no bank account linked",
	}
	ErrEmailTaken = &DomainError{
		Kind:    KindConflict,
		Code:    "EMAIL_TAKEN",
		Message: "email already registered",
	}
	ErrPhoneTaken = &DomainError{
		Kind:    KindConflict,
		Code:    "PHONE_TAKEN",
		Message: "phone number already registered",
	}
)

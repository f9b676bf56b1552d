package errors

var (
	ErrOTPNotFound = &DomainError{
		Kind:    KindAuthorization,
		Code:    "OTP_NOT_FOUND",
		Message: "no active verification code",
	}
	ErrOTPExpired = &DomainError{
		Kind:    KindAuthorization,
		Code:    "OTP_EXPIRED",
		Message: "verification code has expired",
	}
	ErrOTPMismatch = &DomainError{
		Kind:    KindAuthorization,
		Code:    "OTP_MISMATCH",
		Message: "verification code is incorrect",
	}
	ErrOTPAttemptsExceeded = &DomainError{
		Kind:    KindAuthorization,
		Code:    "OTP_ATTEMPTS_EXCEEDED",
		Message: "too many incorrect attempts, request a new code",
	}
)

package validation

import (
	"regexp"

	apperrors "oruswallet/internal/errors"

	"github.com/shopspring/decimal"
)

var (
	pinRegex    = regexp.MustCompile(`^[0-9]{4,6}$`)
	ifscRegex   = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	mobileRegex = regexp.MustCompile(`^[0-9]{10}$`)
)

// Amount checks that a is positive and has at most two decimal places.
func Amount(a decimal.Decimal) error {
	if !a.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	if !a.Equal(a.Truncate(AmountScale)) {
		return apperrors.ErrInvalidAmount.WithMessage("amount can have at most two decimal places")
	}
	return nil
}

// PIN checks the payment PIN format.
func PIN(pin string) bool {
	return pinRegex.MatchString(pin)
}

// IFSC checks an Indian bank branch code.
func IFSC(code string) bool {
	return ifscRegex.MatchString(code)
}

// MobileNumber checks a ten digit subscriber number.
func MobileNumber(n string) bool {
	return mobileRegex.MatchString(n)
}

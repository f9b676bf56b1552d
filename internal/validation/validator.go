package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "oruswallet/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Decimals validate as their string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && Amount(d) == nil
	})
	_ = v.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return PIN(fl.Field().String())
	})
	_ = v.RegisterValidation("ifsc", func(fl validator.FieldLevel) bool {
		return IFSC(fl.Field().String())
	})
	return v
}

// Struct validates a request DTO and returns a validation DomainError.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	msgs := FormatValidationError(err)
	if len(msgs) == 0 {
		return apperrors.Validation(err.Error())
	}
	return apperrors.Validation(strings.Join(msgs, "; "))
}

func FormatValidationError(err error) []string {
	var errs []string

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			field := e.Field()

			switch e.Tag() {
			case "required":
				errs = append(errs, fmt.Sprintf("%s is required", field))
			case "email":
				errs = append(errs, fmt.Sprintf("%s must be a valid email", field))
			case "min":
				errs = append(errs, fmt.Sprintf("%s must have minimum length %s", field, e.Param()))
			case "max":
				errs = append(errs, fmt.Sprintf("%s must have maximum length %s", field, e.Param()))
			case "oneof":
				errs = append(errs, fmt.Sprintf("%s must be one of [%s]", field, e.Param()))
			case "money":
				errs = append(errs, fmt.Sprintf("%s must be a positive amount with at most two decimals", field))
			case "pin":
				errs = append(errs, fmt.Sprintf("%s must be %d-%d digits", field, MinPINLength, MaxPINLength))
			case "ifsc":
				errs = append(errs, fmt.Sprintf("%s must be a valid IFSC code", field))
			default:
				errs = append(errs, fmt.Sprintf("%s is invalid (%s)", field, e.Tag()))
			}
		}
	}
	return errs
}

package forecast

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidatePattern checks that a pattern has an id and exactly twelve
// multipliers inside SeasonalMultiplierBounds.
func ValidatePattern(p SeasonalPattern) error {
	return toValidationError(validate.Struct(p))
}

// ValidateRequest checks caller supplied input before a forecast run.
func ValidateRequest(req Request) error {
	if err := CheckHorizon("horizon_days", req.HorizonDays); err != nil {
		return err
	}
	return toValidationError(validate.Struct(req))
}

// CheckHorizon bounds a day count to 1..MaxHorizonDays.
func CheckHorizon(field string, days int) error {
	if days <= 0 {
		return &ValidationError{Field: field, Reason: "must be greater than 0"}
	}
	if days > MaxHorizonDays {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %d", MaxHorizonDays)}
	}
	return nil
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Reason: err.Error()}
	}

	fe := fieldErrs[0]
	return &ValidationError{Field: fieldPath(fe), Reason: reasonFor(fe)}
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		return fmt.Sprintf("must contain exactly %s entries", fe.Param())
	case "gte", "lte":
		if strings.Contains(fe.Namespace(), "multipliers") {
			return fmt.Sprintf("must be within [%.1f, %.1f]", SeasonalMultiplierBounds.Min, SeasonalMultiplierBounds.Max)
		}
		if fe.Tag() == "gte" {
			return "must be at least " + fe.Param()
		}
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

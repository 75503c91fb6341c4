// Package validation wraps go-playground/validator for inbound request
// payloads, converting tag failures into the API's field-error shape.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "tabcast/internal/errors"
)

// Validator validates request structs against their validate tags.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator instance. Safe for concurrent use.
func New() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Struct validates s and returns an *errors.APIError describing every
// failed field, or nil when s is valid.
func (v *Validator) Struct(s any) *apierrors.APIError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.ErrInvalidRequest
	}

	fields := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierrors.ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: describe(fe),
		})
	}
	return apierrors.NewWithDetails(400, "VALIDATION_FAILED", "Request validation failed", fields)
}

// describe renders one rule failure as a human-readable message.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

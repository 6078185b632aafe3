package validator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Password-composition rules. Registered here so request structs can tag
	// fields with `upperchar` and `numericchar` directly.
	must(v.RegisterValidation("upperchar", func(fl validator.FieldLevel) bool {
		return strings.ContainsFunc(fl.Field().String(), unicode.IsUpper)
	}))
	must(v.RegisterValidation("numericchar", func(fl validator.FieldLevel) bool {
		return strings.ContainsFunc(fl.Field().String(), unicode.IsDigit)
	}))

	return v
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("validator: register rule: %v", err))
	}
}

// Violation describes a single failed rule on a single field. Field carries
// the struct field name; Tag the rule that failed.
type Violation struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

// Validate validates a struct using go-playground/validator tags. All failing
// fields are collected, not just the first.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return &ValidationError{errs: validationErrors}
		}
		return err
	}
	return nil
}

// ValidationError aggregates every failed rule from one validation pass.
type ValidationError struct {
	errs validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, v := range e.Violations() {
		msgs = append(msgs, fmt.Sprintf("field '%s' %s", v.Field, v.Message))
	}
	return strings.Join(msgs, "; ")
}

// Violations returns the failures in declaration order, one per failing field.
func (e *ValidationError) Violations() []Violation {
	out := make([]Violation, 0, len(e.errs))
	for _, fe := range e.errs {
		out = append(out, Violation{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: msgForTag(fe),
		})
	}
	return out
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "eqfield":
		return fmt.Sprintf("must match %s", fe.Param())
	case "upperchar":
		return "must contain at least one uppercase letter"
	case "numericchar":
		return "must contain at least one numeric character"
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/go-playground/validator/v10"
)

// maxEchoedValue bounds how much of a rejected value is echoed back.
const maxEchoedValue = 64

// FieldError is one rejected request field. Rule is the validate tag that
// failed, or "custom" for checks made outside struct tags.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Errors lists every rejected field of a request in struct order. It
// matches domain.ErrInvalidInput under errors.Is.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Is reports whether target is domain.ErrInvalidInput.
func (e Errors) Is(target error) bool {
	return target == domain.ErrInvalidInput
}

// FieldInvalid wraps the result of a plain Validate* function as Errors.
func FieldInvalid(field, value string, err error) Errors {
	return Errors{{Field: field, Rule: "custom", Value: echo(value), Message: err.Error()}}
}

// echo shortens a rejected value for error output.
func echo(value string) string {
	if utf8.RuneCountInString(value) <= maxEchoedValue {
		return value
	}
	return string([]rune(value)[:maxEchoedValue]) + "..."
}

// Validator checks request structs against their `validate` tags.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the instanceid, auditlevel and psname tags
// registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("instanceid", func(fl validator.FieldLevel) bool {
		return ValidateInstanceID(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("auditlevel", func(fl validator.FieldLevel) bool {
		return ValidateLevel(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("psname", func(fl validator.FieldLevel) bool {
		return ValidateRuleName(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("servicename", func(fl validator.FieldLevel) bool {
		return ValidateServiceName(fl.Field().String()) == nil
	})
	return &Validator{v: v}
}

// Struct validates s and returns Errors describing every failed field.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Value:   echo(fmt.Sprint(fe.Value())),
			Message: describe(fe),
		})
	}
	return errs
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "instanceid":
		return "must be a non-empty device instance ID without control characters"
	case "auditlevel":
		return "must be a single word such as INFO, WARN, BLOCK or ERROR"
	case "psname":
		return "must be a non-empty name without control characters"
	case "servicename":
		return "can only contain letters, numbers, '_', '-', '.' or '$'"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

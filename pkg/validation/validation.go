// Package validation checks storefront form input before it reaches the
// backend. Rules are declared with go-playground/validator struct tags and
// each field carries the user-facing message in a `msg` tag.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid matches every Errors value via errors.Is.
var ErrInvalid = errors.New("validation failed")

var phonePattern = regexp.MustCompile(`^01[0-9]{9}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name, which is what forms and the backend use.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// egphone: Egyptian mobile number, 01 followed by nine digits.
	if err := v.RegisterValidation("egphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register egphone rule: %v", err))
	}

	return v
}

// FieldError is a single rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors lists every rejected field in declaration order.
type Errors []FieldError

// Error implements the error interface.
func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

// Is reports whether target is ErrInvalid.
func (e Errors) Is(target error) bool {
	return target == ErrInvalid
}

// Message returns the first message recorded for field.
func (e Errors) Message(field string) (string, bool) {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message, true
		}
	}
	return "", false
}

// New builds a single-field validation error.
func New(field, message string) Errors {
	return Errors{{Field: field, Message: message}}
}

// Struct validates v (a struct or pointer to struct) and returns Errors
// when any rule fails. Only the first failing rule per field is reported.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	out := make(Errors, 0, len(verrs))
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		out = append(out, FieldError{Field: fe.Field(), Message: messageFor(t, fe)})
	}
	return out
}

func messageFor(t reflect.Type, fe validator.FieldError) string {
	if sf, ok := t.FieldByName(fe.StructField()); ok {
		if msg := sf.Tag.Get("msg"); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("failed %q rule", fe.Tag())
}

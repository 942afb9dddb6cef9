package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// EmailTag is the struct tag registered for the contact email rule
const EmailTag = "contactemail"

// FieldError is one failed rule, keyed by the struct field that failed
type FieldError struct {
	// Key is "<Struct>.<Field>.<tag>" with any slice index stripped
	Key     string
	Field   string
	Message string
}

// New returns a validator with the contact rules registered
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation(EmailTag, EmailValidator)
	return v
}

// EmailValidator adapts IsValidEmail to the validator.Func signature
func EmailValidator(fl validator.FieldLevel) bool {
	return IsValidEmail(fl.Field().String())
}

// FieldErrors converts validator errors into FieldErrors, looking up each
// message in messages by key. Unknown keys get a generic message.
func FieldErrors(err error, messages map[string]string) []FieldError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	out := make([]FieldError, 0, len(validationErrs))
	for _, e := range validationErrs {
		namespace := stripIndex(e.StructNamespace())
		key := namespace + "." + e.Tag()

		msg, ok := messages[key]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", e.Field())
		}
		out = append(out, FieldError{Key: key, Field: stripIndex(e.StructField()), Message: msg})
	}
	return out
}

// stripIndex turns "Draft.Emails[2]" into "Draft.Emails"
func stripIndex(s string) string {
	if i := strings.IndexByte(s, '['); i >= 0 {
		return s[:i]
	}
	return s
}

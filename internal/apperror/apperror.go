// Package apperror defines the error taxonomy shared by the address book
// client: local validation failures, authentication failures and everything
// else that went wrong talking to the backend.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how the application recovers from it
type Kind string

const (
	// Validation errors are local and never reach the network
	Validation Kind = "validation"
	// Auth errors are 401 responses; the session is dropped and the user is
	// asked to log in again
	Auth Kind = "auth"
	// Network errors cover transport failures and any other non-2xx response
	Network Kind = "network"
)

// Error is the typed error returned across package boundaries
type Error struct {
	Kind    Kind
	Message string
	// Field names the offending form field for validation errors ("name", "email")
	Field string
	// Status is the HTTP status code, zero for transport or local errors
	Status int
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewValidation creates a validation error for a form field
func NewValidation(field, message string) *Error {
	return &Error{Kind: Validation, Field: field, Message: message}
}

// NewAuth creates an authentication error
func NewAuth(status int, message string) *Error {
	return &Error{Kind: Auth, Status: status, Message: message}
}

// NewNetwork creates a network error
func NewNetwork(status int, message string, cause error) *Error {
	return &Error{Kind: Network, Status: status, Message: message, Cause: cause}
}

// KindOf reports the kind of err, or "" if err is not an *Error
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsAuth reports whether err is an authentication error
func IsAuth(err error) bool { return KindOf(err) == Auth }

// IsNetwork reports whether err is a network error
func IsNetwork(err error) bool { return KindOf(err) == Network }

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool { return KindOf(err) == Validation }

// Message returns the user-facing message of err. Errors outside the
// taxonomy fall back to err.Error().
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

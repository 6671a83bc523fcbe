package service

import (
	"errors"
	"fmt"

	"github.com/mmynk/kanakk/internal/auth"
	"github.com/mmynk/kanakk/internal/models"
)

var (
	// ErrValidation marks malformed input. The concrete error is a
	// *ValidationError carrying the message to show next to the form.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated is returned when the context carries no identity.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrAccessDenied covers cross-company access and missing privileges.
	// It is also returned for ids that do not exist, so other tenants'
	// ids cannot be guessed at.
	ErrAccessDenied = errors.New("access denied")
	// ErrConflict is returned when an email or phone is already taken.
	ErrConflict = errors.New("email or phone already in use")
	// ErrNotFound is returned when the caller's own company is missing.
	ErrNotFound = errors.New("not found")
)

// ValidationError describes a rejected form field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Is makes errors.Is(err, ErrValidation) true for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// invalidDate reports a date field that models.ParseDate rejected.
func invalidDate(field, label string, err error) error {
	if errors.Is(err, models.ErrDateOutOfRange) {
		return invalid(field, fmt.Sprintf("%s must not be before %d-01-01.", label, models.MinYear))
	}
	return invalid(field, label+" must be YYYY-MM-DD.")
}

// UserMessage maps err to text that is safe to show to the user. Raw
// backend errors never leak; they get a generic message.
func UserMessage(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Msg
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, ErrConflict):
		return "A user with that email or phone already exists. Try logging in."
	case errors.Is(err, ErrAccessDenied):
		return "Access denied!"
	case errors.Is(err, ErrUnauthenticated):
		return "Please log in to continue."
	case errors.Is(err, ErrNotFound):
		return "Not found."
	default:
		return "Something went wrong. Please try again."
	}
}

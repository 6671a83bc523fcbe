// Package auth verifies credentials and issues signed session tokens.
package auth

import (
	"context"

	"github.com/mmynk/kanakk/internal/models"
)

// Authenticator defines the interface for credential checks.
// This abstraction keeps the services independent of the hashing scheme.
type Authenticator interface {
	// Authenticate verifies the credential of the user identified by email
	// or phone and returns the user if it matches. Every failure, whether
	// unknown identifier or wrong password, is ErrInvalidCredentials.
	Authenticate(ctx context.Context, identifier, credential string) (*models.User, error)

	// HashCredential returns the value to store as the user's PasswordHash.
	HashCredential(credential string) (string, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}

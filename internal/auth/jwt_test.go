package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/mmynk/kanakk/internal/models"
)

func TestSessionManager(t *testing.T) {
	m := NewSessionManager("0123456789abcdef0123456789abcdef", time.Hour)
	user := &models.User{ID: "u1", CompanyID: "c1", Email: "alice@example.test"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "u1" || claims.CompanyID != "c1" {
		t.Errorf("claims = %+v, want u1/c1", claims)
	}

	t.Run("expired", func(t *testing.T) {
		m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { m.now = time.Now }()
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate(expired) = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewSessionManager("another-secret-another-secret!!!", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate(foreign) = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("tampered", func(t *testing.T) {
		if _, err := m.Validate(token + "x"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate(tampered) = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := m.Validate(""); !errors.Is(err, ErrMissingToken) {
			t.Errorf("Validate(\"\") = %v, want ErrMissingToken", err)
		}
	})
}

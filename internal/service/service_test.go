package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/kanakk/internal/auth"
	"github.com/mmynk/kanakk/internal/middleware"
	"github.com/mmynk/kanakk/internal/models"
	"github.com/mmynk/kanakk/internal/storage/sqlstore"
)

type testEnv struct {
	store    *sqlstore.Store
	accounts *AccountService
	ledgers  *LedgerService
	entries  *EntryService
}

// setupTestEnv wires the services to a temp-file SQLite database.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlstore.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authenticator := auth.NewPasswordAuthenticator(store, bcrypt.MinCost)
	return &testEnv{
		store:    store,
		accounts: NewAccountService(store, authenticator, nil, logger),
		ledgers:  NewLedgerService(store, logger),
		entries:  NewEntryService(store, logger),
	}
}

// register creates a company and returns a context authenticated as its admin.
func (e *testEnv) register(t *testing.T, company, email string) (context.Context, *models.Company, *models.User) {
	t.Helper()
	c, u, err := e.accounts.Register(context.Background(), RegisterInput{
		CompanyName: company,
		Email:       email,
		Password:    "password123",
	})
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", company, err)
	}
	return asUser(u), c, u
}

func asUser(u *models.User) context.Context {
	return middleware.WithIdentity(context.Background(), middleware.Identity{
		UserID:    u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Role:      u.Role,
	})
}

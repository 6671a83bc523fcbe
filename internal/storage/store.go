// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/kanakk/internal/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write violates a unique constraint
	// (user email or phone).
	ErrDuplicate = errors.New("duplicate value")
)

// EntryFilter narrows ListEntries. Zero dates mean "unbounded"; both bounds
// are inclusive. Limit <= 0 means no limit.
type EntryFilter struct {
	Start models.Date
	End   models.Date
	Limit int
}

// Store defines the persistence operations used by the services.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	// CreateCompanyWithAdmin inserts a company and its first user in a
	// single transaction. If either insert fails neither row persists.
	// IDs and CreatedAt are populated by the store.
	CreateCompanyWithAdmin(ctx context.Context, company *models.Company, admin *models.User) error

	// GetCompany returns ErrNotFound if the company does not exist.
	GetCompany(ctx context.Context, id string) (*models.Company, error)

	// UpdateCompany overwrites name, country, currency and opening balance.
	UpdateCompany(ctx context.Context, company *models.Company) error

	// CountCompanies returns the number of registered companies.
	CountCompanies(ctx context.Context) (int, error)

	// CreateUser adds a user to an existing company.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)

	// UserExists reports whether any user other than excludeID has the given
	// email or (non-empty) phone.
	UserExists(ctx context.Context, email, phone, excludeID string) (bool, error)

	// ListUsers returns the users of a company ordered by email.
	ListUsers(ctx context.Context, companyID string) ([]*models.User, error)

	// UpdateUser overwrites email, phone, role and password hash.
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error

	// CreateEntry inserts an income or expense depending on entry.Kind.
	CreateEntry(ctx context.Context, entry *models.Entry) error

	// ListEntries returns a company's incomes or expenses matching the
	// filter, newest date first.
	ListEntries(ctx context.Context, kind models.EntryKind, companyID string, filter EntryFilter) ([]*models.Entry, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

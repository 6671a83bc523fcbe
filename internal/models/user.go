package models

import (
	"errors"
	"strings"
)

// ErrUnknownRole is returned by ParseRole for anything other than "admin" or "staff".
var ErrUnknownRole = errors.New("unknown role")

// Role is the permission level of a user inside its company.
type Role int

const (
	// RoleStaff can record entries and view reports.
	RoleStaff Role = iota + 1
	// RoleAdmin can additionally edit company settings and manage users.
	RoleAdmin
)

// ParseRole converts the stored/form representation of a role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "staff":
		return RoleStaff, nil
	}
	return 0, ErrUnknownRole
}

// String returns the stored representation ("admin" or "staff").
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleStaff:
		return "staff"
	}
	return "unknown"
}

// CanManage reports whether the role may change company settings and users.
// The zero Role and any out-of-range value are denied.
func (r Role) CanManage() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleStaff:
		return false
	default:
		return false
	}
}

// User represents a login belonging to exactly one company.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is unique across all companies and stored lower-cased.
	Email string

	// Phone is optional; when set it is unique across all companies and
	// can be used instead of the email to log in.
	Phone string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// CompanyID is the company this user belongs to.
	CompanyID string

	Role Role

	// CreatedAt is the Unix timestamp when the user was created.
	CreatedAt int64
}

// NormalizeEmail trims and lower-cases an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

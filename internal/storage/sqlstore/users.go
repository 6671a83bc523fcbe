package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/kanakk/internal/models"
	"github.com/mmynk/kanakk/internal/storage"
)

const userColumns = `id, email, phone, password_hash, company_id, role, created_at`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CreateUser inserts a new user into the database.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.insertUser(ctx, s.db, user)
}

func (s *Store) insertUser(ctx context.Context, db execer, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	user.Email = models.NormalizeEmail(user.Email)

	_, err := db.ExecContext(ctx, s.q(
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		user.ID, user.Email, nullable(user.Phone), user.PasswordHash,
		user.CompanyID, user.Role.String(), user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to create user: %w", storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByEmail retrieves a user by their (normalized) email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", models.NormalizeEmail(email))
}

// GetUserByPhone retrieves a user by phone number.
func (s *Store) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	if phone == "" {
		return nil, fmt.Errorf("user with empty phone: %w", storage.ErrNotFound)
	}
	return s.getUser(ctx, "phone", phone)
}

// getUser looks up a single user by one of the unique columns. column is
// never user input.
func (s *Store) getUser(ctx context.Context, column, value string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, s.q(
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`), value)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user by %s: %w", column, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	return user, nil
}

// UserExists reports whether another user already uses the email or phone.
func (s *Store) UserExists(ctx context.Context, email, phone, excludeID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.q(
		`SELECT COUNT(*) FROM users
		 WHERE (email = ? OR (phone IS NOT NULL AND phone = ?)) AND id <> ?`),
		models.NormalizeEmail(email), phone, excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check existing users: %w", err)
	}
	return n > 0, nil
}

// ListUsers retrieves all users of a company.
func (s *Store) ListUsers(ctx context.Context, companyID string) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT `+userColumns+` FROM users WHERE company_id = ? ORDER BY email`), companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// UpdateUser overwrites a user's email, phone, role and password hash.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE users SET email = ?, phone = ?, role = ?, password_hash = ? WHERE id = ?`),
		user.Email, nullable(user.Phone), user.Role.String(), user.PasswordHash, user.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to update user: %w", storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectOneRow(res, "user", user.ID)
}

// DeleteUser removes a user by ID.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectOneRow(res, "user", id)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var phone sql.NullString
	var role string
	if err := row.Scan(&user.ID, &user.Email, &phone, &user.PasswordHash,
		&user.CompanyID, &role, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.Phone = phone.String

	r, err := models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("user %s has role %q: %w", user.ID, role, err)
	}
	user.Role = r
	return user, nil
}

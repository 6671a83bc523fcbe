package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/kanakk/internal/models"
	"github.com/mmynk/kanakk/internal/storage"
)

// CreateCompanyWithAdmin inserts the company and its first admin user in one
// transaction.
func (s *Store) CreateCompanyWithAdmin(ctx context.Context, company *models.Company, admin *models.User) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	if company.CreatedAt == 0 {
		company.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.q(
		`INSERT INTO companies (id, name, country, currency, opening_balance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		company.ID, company.Name, nullable(company.Country), nullable(company.Currency),
		company.OpeningBalance.String(), company.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert company: %w", err)
	}

	admin.CompanyID = company.ID
	if err := s.insertUser(ctx, tx, admin); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetCompany retrieves a company by ID.
func (s *Store) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	company := &models.Company{}
	var country, currency sql.NullString
	var opening string

	err := s.db.QueryRowContext(ctx, s.q(
		`SELECT id, name, country, currency, opening_balance, created_at
		 FROM companies WHERE id = ?`), id,
	).Scan(&company.ID, &company.Name, &country, &currency, &opening, &company.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("company %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	company.Country = country.String
	company.Currency = currency.String
	if company.OpeningBalance, err = decimal.NewFromString(opening); err != nil {
		return nil, fmt.Errorf("failed to parse opening balance of company %s: %w", id, err)
	}
	return company, nil
}

// UpdateCompany updates the editable settings of a company.
func (s *Store) UpdateCompany(ctx context.Context, company *models.Company) error {
	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE companies SET name = ?, country = ?, currency = ?, opening_balance = ?
		 WHERE id = ?`),
		company.Name, nullable(company.Country), nullable(company.Currency),
		company.OpeningBalance.String(), company.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	return expectOneRow(res, "company", company.ID)
}

// CountCompanies returns the number of companies.
func (s *Store) CountCompanies(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM companies").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return n, nil
}

func expectOneRow(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
	}
	return nil
}

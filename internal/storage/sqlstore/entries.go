package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/kanakk/internal/models"
	"github.com/mmynk/kanakk/internal/storage"
)

func entryTable(kind models.EntryKind) (string, error) {
	switch kind {
	case models.KindIncome:
		return "incomes", nil
	case models.KindExpense:
		return "expenses", nil
	}
	return "", fmt.Errorf("unknown entry kind %d", kind)
}

// CreateEntry persists a new income or expense.
func (s *Store) CreateEntry(ctx context.Context, entry *models.Entry) error {
	table, err := entryTable(entry.Kind)
	if err != nil {
		return err
	}
	if entry.Date.IsZero() {
		return fmt.Errorf("failed to insert %s: missing date", entry.Kind)
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}

	_, err = s.db.ExecContext(ctx, s.q(
		`INSERT INTO `+table+` (id, title, amount, date, notes, company_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		entry.ID, entry.Title, entry.Amount.String(), entry.Date.String(),
		nullable(entry.Notes), entry.CompanyID, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", entry.Kind, err)
	}
	return nil
}

// ListEntries retrieves a company's entries of one kind, newest first.
func (s *Store) ListEntries(ctx context.Context, kind models.EntryKind, companyID string, filter storage.EntryFilter) ([]*models.Entry, error) {
	table, err := entryTable(kind)
	if err != nil {
		return nil, err
	}

	var query strings.Builder
	query.WriteString(`SELECT id, title, amount, date, notes, company_id, created_at FROM `)
	query.WriteString(table)
	query.WriteString(` WHERE company_id = ?`)
	args := []interface{}{companyID}
	if !filter.Start.IsZero() {
		query.WriteString(` AND date >= ?`)
		args = append(args, filter.Start.String())
	}
	if !filter.End.IsZero() {
		query.WriteString(` AND date <= ?`)
		args = append(args, filter.End.String())
	}
	query.WriteString(` ORDER BY date DESC, created_at DESC`)
	if filter.Limit > 0 {
		query.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var entries []*models.Entry
	for rows.Next() {
		entry := &models.Entry{Kind: kind}
		var amount, date string
		var notes sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Title, &amount, &date, &notes,
			&entry.CompanyID, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		if entry.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse amount of %s %s: %w", kind, entry.ID, err)
		}
		if entry.Date, err = models.ParseDate(date); err != nil {
			return nil, fmt.Errorf("failed to parse date of %s %s: %w", kind, entry.ID, err)
		}
		entry.Notes = notes.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	return entries, nil
}

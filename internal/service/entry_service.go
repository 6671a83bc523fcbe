package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/kanakk/internal/models"
	"github.com/mmynk/kanakk/internal/storage"
)

// EntryInput is the income/expense form.
type EntryInput struct {
	Title  string
	Amount string
	Date   string // optional, YYYY-MM-DD
	Notes  string
}

// EntryService records incomes and expenses. Entries are append-only.
type EntryService struct {
	store  storage.Store
	logger *slog.Logger
	today  func() models.Date
}

// NewEntryService creates a new entry service.
func NewEntryService(store storage.Store, logger *slog.Logger) *EntryService {
	return &EntryService{store: store, logger: logger, today: models.Today}
}

// Create records an income or expense for the caller's company. A missing
// date defaults to today (UTC).
func (s *EntryService) Create(ctx context.Context, kind models.EntryKind, in EntryInput) (*models.Entry, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title", "Title is required.")
	}

	raw := strings.TrimSpace(in.Amount)
	if raw == "" {
		return nil, invalid("amount", "Amount is required.")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, invalid("amount", "Amount must be a number.")
	}
	if amount.IsNegative() {
		return nil, invalid("amount", "Amount must not be negative.")
	}

	date := s.today()
	if v := strings.TrimSpace(in.Date); v != "" {
		if date, err = models.ParseDate(v); err != nil {
			return nil, invalidDate("date", "Date", err)
		}
	}

	entry := &models.Entry{
		Kind:      kind,
		Title:     title,
		Amount:    amount,
		Date:      date,
		Notes:     strings.TrimSpace(in.Notes),
		CompanyID: id.CompanyID,
	}
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		s.logger.Error("CreateEntry failed", "kind", kind.String(), "company_id", id.CompanyID, "error", err)
		return nil, err
	}
	s.logger.Info("Entry recorded",
		"kind", kind.String(),
		"entry_id", entry.ID,
		"company_id", id.CompanyID,
		"amount", amount.String(),
	)
	return entry, nil
}

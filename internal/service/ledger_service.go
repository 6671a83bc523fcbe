package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/kanakk/internal/ledger"
	"github.com/mmynk/kanakk/internal/models"
	"github.com/mmynk/kanakk/internal/storage"
)

// RecentLimit is the number of recent incomes and expenses on the dashboard.
const RecentLimit = 5

// Dashboard is the unfiltered summary shown on the home page.
type Dashboard struct {
	Ledger         *ledger.Ledger
	RecentIncomes  []*models.Entry
	RecentExpenses []*models.Entry
}

// LedgerService loads company entries and computes ledgers.
type LedgerService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(store storage.Store, logger *slog.Logger) *LedgerService {
	return &LedgerService{store: store, logger: logger}
}

// ParseRange parses the optional start/end query values (YYYY-MM-DD).
func ParseRange(start, end string) (ledger.Range, error) {
	var rng ledger.Range
	var err error
	if s := strings.TrimSpace(start); s != "" {
		if rng.Start, err = models.ParseDate(s); err != nil {
			return ledger.Range{}, invalidDate("start", "Start date", err)
		}
	}
	if s := strings.TrimSpace(end); s != "" {
		if rng.End, err = models.ParseDate(s); err != nil {
			return ledger.Range{}, invalidDate("end", "End date", err)
		}
	}
	if err := rng.Validate(); err != nil {
		return ledger.Range{}, invalid("start", "Start date must not be after end date.")
	}
	return rng, nil
}

// Compute returns the ledger of companyID restricted to rng. It is a pure
// read. ErrNotFound is returned if the company does not exist.
func (s *LedgerService) Compute(ctx context.Context, companyID string, rng ledger.Range) (*ledger.Ledger, error) {
	if err := rng.Validate(); err != nil {
		return nil, invalid("start", "Start date must not be after end date.")
	}

	company, err := s.store.GetCompany(ctx, companyID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	filter := storage.EntryFilter{Start: rng.Start, End: rng.End}
	incomes, err := s.store.ListEntries(ctx, models.KindIncome, companyID, filter)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListEntries(ctx, models.KindExpense, companyID, filter)
	if err != nil {
		return nil, err
	}

	l, err := ledger.Compute(company, incomes, expenses, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to compute ledger: %w", err)
	}
	s.logger.Debug("Ledger computed",
		"company_id", companyID,
		"start", rng.Start.String(),
		"end", rng.End.String(),
		"incomes", len(l.Incomes),
		"expenses", len(l.Expenses),
	)
	return l, nil
}

// CompanyLedger computes the ledger of the caller's company.
func (s *LedgerService) CompanyLedger(ctx context.Context, rng ledger.Range) (*ledger.Ledger, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.Compute(ctx, id.CompanyID, rng)
}

// Dashboard returns the caller's unfiltered totals and the most recent
// entries of each kind.
func (s *LedgerService) Dashboard(ctx context.Context) (*Dashboard, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	l, err := s.Compute(ctx, id.CompanyID, ledger.Range{})
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Ledger:         l,
		RecentIncomes:  head(l.Incomes, RecentLimit),
		RecentExpenses: head(l.Expenses, RecentLimit),
	}, nil
}

func head(entries []*models.Entry, n int) []*models.Entry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}

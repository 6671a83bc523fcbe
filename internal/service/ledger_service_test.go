package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/kanakk/internal/ledger"
	"github.com/mmynk/kanakk/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLedgerService(t *testing.T) {
	env := setupTestEnv(t)
	ctx, company, _ := env.register(t, "Acme", "owner@acme.test")
	otherCtx, _, _ := env.register(t, "Other", "owner@other.test")

	if _, err := env.accounts.UpdateSettings(ctx, SettingsInput{Name: "Acme", OpeningBalance: "100.00"}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	record := func(ctx context.Context, kind models.EntryKind, title, amount, date string) {
		t.Helper()
		if _, err := env.entries.Create(ctx, kind, EntryInput{Title: title, Amount: amount, Date: date}); err != nil {
			t.Fatalf("Create(%s) failed: %v", title, err)
		}
	}
	record(ctx, models.KindIncome, "Invoice 1", "50.00", "2024-01-05")
	record(ctx, models.KindIncome, "Invoice 2", "20.00", "2024-02-01")
	record(ctx, models.KindExpense, "Rent", "30.00", "2024-01-10")
	record(otherCtx, models.KindIncome, "Elsewhere", "500.00", "2024-01-06")

	t.Run("unfiltered", func(t *testing.T) {
		l, err := env.ledgers.Compute(context.Background(), company.ID, ledger.Range{})
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		if !l.TotalIncome.Equal(dec("70")) || !l.TotalExpense.Equal(dec("30")) || !l.Balance.Equal(dec("140")) {
			t.Errorf("totals = %s/%s/%s, want 70/30/140", l.TotalIncome, l.TotalExpense, l.Balance)
		}
		if len(l.Incomes) != 2 || l.Incomes[0].Title != "Invoice 2" {
			t.Errorf("unexpected incomes %+v", l.Incomes)
		}
	})

	t.Run("filtered from start", func(t *testing.T) {
		rng, err := ParseRange("2024-02-01", "")
		if err != nil {
			t.Fatalf("ParseRange failed: %v", err)
		}
		l, err := env.ledgers.CompanyLedger(ctx, rng)
		if err != nil {
			t.Fatalf("CompanyLedger failed: %v", err)
		}
		if !l.TotalIncome.Equal(dec("20")) || !l.TotalExpense.IsZero() || !l.Balance.Equal(dec("120")) {
			t.Errorf("totals = %s/%s/%s, want 20/0/120", l.TotalIncome, l.TotalExpense, l.Balance)
		}

		dash, err := env.ledgers.Dashboard(ctx)
		if err != nil {
			t.Fatalf("Dashboard failed: %v", err)
		}
		if !dash.Ledger.Balance.Equal(dec("140")) {
			t.Errorf("dashboard balance = %s, want 140", dash.Ledger.Balance)
		}
	})

	t.Run("unknown company", func(t *testing.T) {
		_, err := env.ledgers.Compute(context.Background(), "missing", ledger.Range{})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Compute() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		if _, err := env.ledgers.CompanyLedger(context.Background(), ledger.Range{}); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("CompanyLedger() error = %v, want ErrUnauthenticated", err)
		}
	})
}

func TestDashboardRecentLimit(t *testing.T) {
	env := setupTestEnv(t)
	ctx, _, _ := env.register(t, "Busy", "owner@busy.test")
	for day := 1; day <= 8; day++ {
		date := models.NewDate(2024, 3, day).String()
		if _, err := env.entries.Create(ctx, models.KindExpense, EntryInput{Title: date, Amount: "1", Date: date}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	dash, err := env.ledgers.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if len(dash.RecentExpenses) != RecentLimit {
		t.Fatalf("len(RecentExpenses) = %d, want %d", len(dash.RecentExpenses), RecentLimit)
	}
	if dash.RecentExpenses[0].Title != "2024-03-08" {
		t.Errorf("most recent = %s, want 2024-03-08", dash.RecentExpenses[0].Title)
	}
	if !dash.Ledger.TotalExpense.Equal(dec("8")) {
		t.Errorf("TotalExpense = %s, want 8 (all rows)", dash.Ledger.TotalExpense)
	}
	if len(dash.RecentIncomes) != 0 {
		t.Errorf("len(RecentIncomes) = %d, want 0", len(dash.RecentIncomes))
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		start, end string
		wantErr    bool
	}{
		{"", "", false},
		{"2024-01-01", "", false},
		{"", "2024-01-01", false},
		{"2024-01-01", "2024-01-01", false},
		{"2024-02-01", "2024-01-01", true},
		{"01/02/2024", "", true},
		{"", "yesterday", true},
		{"0001-01-01", "", true},
		{"", "1899-12-31", true},
		{"1900-01-01", "", false},
	}
	for _, tt := range tests {
		_, err := ParseRange(tt.start, tt.end)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRange(%q, %q) error = %v, wantErr %v", tt.start, tt.end, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrValidation) {
			t.Errorf("ParseRange(%q, %q) error = %v, want ErrValidation", tt.start, tt.end, err)
		}
	}
}

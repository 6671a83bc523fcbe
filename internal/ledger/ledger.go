// Package ledger computes income/expense totals and balances for a company.
package ledger

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/kanakk/internal/models"
)

// ErrInvalidRange is returned when Start is after End.
var ErrInvalidRange = errors.New("start date is after end date")

// Range is an optional, inclusive date interval. A zero bound is open.
type Range struct {
	Start models.Date
	End   models.Date
}

// Validate fails if both bounds are set and Start is after End.
func (r Range) Validate() error {
	if !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return ErrInvalidRange
	}
	return nil
}

// Contains reports whether d lies within the range, bounds included.
func (r Range) Contains(d models.Date) bool {
	if !r.Start.IsZero() && d.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && d.After(r.End) {
		return false
	}
	return true
}

// IsOpen reports whether neither bound is set.
func (r Range) IsOpen() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Ledger is the filtered view of a company's entries with its totals.
type Ledger struct {
	Company *models.Company
	Range   Range

	// Incomes and Expenses are sorted by date, newest first.
	Incomes  []*models.Entry
	Expenses []*models.Entry

	OpeningBalance decimal.Decimal
	TotalIncome    decimal.Decimal
	TotalExpense   decimal.Decimal

	// Balance = OpeningBalance + TotalIncome - TotalExpense
	Balance decimal.Decimal
}

// Compute builds the ledger of company from the given rows.
//
// Rows belonging to another company or dated outside rng are dropped, so
// callers may pass a superset. The input slices are not modified.
func Compute(company *models.Company, incomes, expenses []*models.Entry, rng Range) (*Ledger, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	l := &Ledger{
		Company:        company,
		Range:          rng,
		Incomes:        filter(incomes, company.ID, rng),
		Expenses:       filter(expenses, company.ID, rng),
		OpeningBalance: company.OpeningBalance,
	}
	l.TotalIncome = Sum(l.Incomes)
	l.TotalExpense = Sum(l.Expenses)
	l.Balance = l.OpeningBalance.Add(l.TotalIncome).Sub(l.TotalExpense)
	return l, nil
}

// Sum adds up the amounts of entries exactly.
func Sum(entries []*models.Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

func filter(entries []*models.Entry, companyID string, rng Range) []*models.Entry {
	out := make([]*models.Entry, 0, len(entries))
	for _, e := range entries {
		if e.CompanyID == companyID && rng.Contains(e.Date) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

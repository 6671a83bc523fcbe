// Package report renders a computed ledger for the screen and as
// downloadable PDF and XLSX documents. All renderers read the same
// *ledger.Ledger, so their totals and rows always agree.
package report

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/kanakk/internal/ledger"
	"github.com/mmynk/kanakk/internal/models"
)

// Empty-state messages shown instead of an empty table.
const (
	NoIncomeMessage  = "No income records found."
	NoExpenseMessage = "No expense records found."
)

// Row is one formatted table line.
type Row struct {
	Date   string
	Title  string
	Amount string
	Notes  string
}

// View is the ledger formatted for display. Every currency figure has
// exactly two decimals.
type View struct {
	CompanyName string
	Currency    string

	// Start and End repopulate the filter form; empty when unbounded.
	Start string
	End   string

	OpeningBalance string
	TotalIncome    string
	TotalExpense   string
	Balance        string

	Incomes  []Row
	Expenses []Row

	// Shown in place of an empty Incomes or Expenses table.
	EmptyIncome  string
	EmptyExpense string
}

// NewView formats l for display.
func NewView(l *ledger.Ledger) *View {
	return &View{
		CompanyName:    l.Company.Name,
		Currency:       l.Company.Currency,
		Start:          l.Range.Start.String(),
		End:            l.Range.End.String(),
		OpeningBalance: Amount(l.OpeningBalance),
		TotalIncome:    Amount(l.TotalIncome),
		TotalExpense:   Amount(l.TotalExpense),
		Balance:        Amount(l.Balance),
		Incomes:        rows(l.Incomes),
		Expenses:       rows(l.Expenses),
		EmptyIncome:    NoIncomeMessage,
		EmptyExpense:   NoExpenseMessage,
	}
}

// Period describes the date range, using "All" for an open bound.
func (v *View) Period() string {
	return orAll(v.Start) + " to " + orAll(v.End)
}

// Amount formats a currency figure with two decimals.
func Amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Filename is the suggested download name, e.g. "report_Acme_Trading.pdf".
func Filename(companyName, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20, r == '"', r == '\\', r == '/', r == 0x7f:
			return -1
		}
		return r
	}, strings.TrimSpace(companyName))
	return "report_" + name + "." + ext
}

func rows(entries []*models.Entry) []Row {
	out := make([]Row, len(entries))
	for i, e := range entries {
		out[i] = Row{
			Date:   e.Date.String(),
			Title:  e.Title,
			Amount: Amount(e.Amount),
			Notes:  e.Notes,
		}
	}
	return out
}

func orAll(s string) string {
	if s == "" {
		return "All"
	}
	return s
}

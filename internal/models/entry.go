package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used in forms, URLs and storage.
const DateLayout = "2006-01-02"

// EntryKind distinguishes incomes from expenses.
type EntryKind int

const (
	KindIncome EntryKind = iota + 1
	KindExpense
)

func (k EntryKind) String() string {
	switch k {
	case KindIncome:
		return "income"
	case KindExpense:
		return "expense"
	}
	return "unknown"
}

// Date is a calendar day with no time-of-day or location.
type Date struct {
	t time.Time
}

// NewDate returns the date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today returns the current UTC date.
func Today() Date {
	return DateOf(time.Now().UTC())
}

// MinYear is the earliest year ParseDate accepts. It keeps parsed dates
// well away from the zero Date, which stands for "no date".
const MinYear = 1900

// ErrDateOutOfRange is returned by ParseDate for years before MinYear.
var ErrDateOutOfRange = errors.New("date out of range")

// ParseDate parses a YYYY-MM-DD string. The result is never the zero Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	if t.Year() < MinYear {
		return Date{}, fmt.Errorf("%w: %s is before %d-01-01", ErrDateOutOfRange, s, MinYear)
	}
	return Date{t: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) IsZero() bool       { return d.t.IsZero() }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }
func (d Date) Time() time.Time    { return d.t }
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Entry is a single income or expense row.
type Entry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	Kind EntryKind

	Title string

	// Amount is never negative; Kind decides whether it adds to or
	// subtracts from the balance.
	Amount decimal.Decimal

	Date Date

	// Notes is optional free text.
	Notes string

	CompanyID string

	// CreatedAt is the Unix timestamp when the entry was recorded.
	CreatedAt int64
}

// Package models defines the core domain models for Kanakk.
//
// # Tenancy
//
// A Company is the tenant. Every User, Income and Expense row carries the
// CompanyID of the company that owns it, and nothing is shared between
// companies.
//
// # Money and dates
//
// Amounts are decimal.Decimal values so totals over many small entries stay
// exact. Entry dates are calendar days with no time-of-day component; use
// NewDate and Date.String to convert to and from the YYYY-MM-DD form used in
// forms, URLs and storage.
package models

package models

import "github.com/shopspring/decimal"

// Company is the tenant that owns users and ledger entries.
type Company struct {
	// ID is the unique identifier for the company (UUID format).
	ID string

	// Name is the display name, used as the report title.
	Name string

	// Country is optional free text chosen at registration.
	Country string

	// Currency is an optional ISO 4217 code (e.g., "OMR", "USD").
	Currency string

	// OpeningBalance is the carried-forward balance before any recorded entry.
	OpeningBalance decimal.Decimal

	// CreatedAt is the Unix timestamp when the company was registered.
	CreatedAt int64
}

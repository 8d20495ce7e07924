package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single ledger row, owned by exactly one principal.
// Amount carries full decimal precision in memory; the storage layer
// persists it at cent precision.
type Expense struct {
	ID             string
	OwnerID        string
	Amount         decimal.Decimal
	Currency       string
	Category       string
	Subcategory    string
	Merchant       string
	Description    string
	PaymentMethod  string
	Date           time.Time
	IsRecurring    bool
	RecurrenceRule string
	Tags           []string
	ReceiptURL     string
	CreatedAt      time.Time
}

// ExpensePatch describes a partial update. Nil fields are left untouched.
type ExpensePatch struct {
	Amount         *decimal.Decimal
	Currency       *string
	Category       *string
	Subcategory    *string
	Merchant       *string
	Description    *string
	PaymentMethod  *string
	Date           *time.Time
	IsRecurring    *bool
	RecurrenceRule *string
	Tags           *[]string
	ReceiptURL     *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ExpensePatch) IsEmpty() bool {
	return p.Amount == nil && p.Currency == nil && p.Category == nil &&
		p.Subcategory == nil && p.Merchant == nil && p.Description == nil &&
		p.PaymentMethod == nil && p.Date == nil && p.IsRecurring == nil &&
		p.RecurrenceRule == nil && p.Tags == nil && p.ReceiptURL == nil
}

var (
	ErrNotFound      = errors.New("expense not found")
	ErrEmptyOwner    = errors.New("empty owner id")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyCurrency = errors.New("empty currency")
	ErrZeroDate      = errors.New("date cannot be zero")
	ErrInvertedRange = errors.New("range lower bound after upper bound")
)

func (e Expense) Validate() error {
	if strings.TrimSpace(e.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(e.Currency) == "" {
		return ErrEmptyCurrency
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	if len(e.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	return nil
}

// Cents converts an amount to integer cents with half-up rounding.
// Storage accumulates in cents so sums stay exact.
func Cents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// AmountFromCents is the inverse of Cents.
func AmountFromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// Round2 rounds to two fractional digits. Called only at result
// boundaries, never on intermediate sums.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

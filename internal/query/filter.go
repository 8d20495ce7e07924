// Package query compiles optional ledger filters into a single SQL
// predicate for the sqlite store. Every compiled query is scoped to one
// owner before any other condition is applied.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendtrack/internal/core"
)

// TimeLayout is the column format for persisted instants. Lexicographic
// order on this layout matches chronological order, which the compiled
// comparisons rely on.
const TimeLayout = "2006-01-02 15:04:05"

// Predicate is one optional filter. Predicates combine with AND semantics.
type Predicate interface {
	apply(c *Compiled) error
}

type (
	// DateRange bounds the economic date. A zero From or To leaves that
	// end open. By default both bounds are inclusive; ExclusiveTo turns
	// the upper bound into date < To (used by month-bucketed aggregates
	// so a boundary instant is never counted twice).
	DateRange struct {
		From        time.Time
		To          time.Time
		ExclusiveTo bool
	}

	// CategoryIs matches the category label exactly.
	CategoryIs struct {
		Category string
	}

	// AmountRange bounds the amount, both ends inclusive, either end nil
	// to leave it open.
	AmountRange struct {
		Min *decimal.Decimal
		Max *decimal.Decimal
	}

	// TextSearch matches a fragment case-insensitively against
	// description, merchant, or subcategory.
	TextSearch struct {
		Fragment string
	}

	// RecurringOnly keeps rows flagged as recurring.
	RecurringOnly struct{}
)

// Order selects the listing order.
type Order int

const (
	// ByDateDesc is the universal default for listing: newest first.
	ByDateDesc Order = iota
	// ByAmountDesc ranks rows by amount, used for top-transaction views.
	ByAmountDesc
)

// Page is 1-based offset/limit pagination. A zero Limit disables
// pagination and materializes every match.
type Page struct {
	Number int
	Limit  int
}

// Offset translates the 1-based page number to a row offset.
func (p Page) Offset() int {
	n := p.Number
	if n < 1 {
		n = 1
	}
	return (n - 1) * p.Limit
}

// Pages returns the page count for a total, ceil(total/limit).
func Pages(total, limit int) int {
	if limit <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

// Compiled is a ready-to-run predicate set for the expenses table.
type Compiled struct {
	Where   string // conjunction including the owner clause
	Args    []any
	OrderBy string
	Limit   int
	Offset  int

	clauses []string
}

// Compile folds the predicates into one query. The owner clause always
// comes first and cannot be omitted.
func Compile(ownerID string, preds []Predicate, order Order, page Page) (Compiled, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Compiled{}, core.ErrEmptyOwner
	}

	c := Compiled{
		clauses: []string{"owner_id = ?"},
		Args:    []any{ownerID},
	}
	for _, p := range preds {
		if err := p.apply(&c); err != nil {
			return Compiled{}, err
		}
	}
	c.Where = strings.Join(c.clauses, " AND ")

	switch order {
	case ByAmountDesc:
		c.OrderBy = "amount_cents DESC"
	default:
		c.OrderBy = "date DESC"
	}

	if page.Limit > 0 {
		c.Limit = page.Limit
		c.Offset = page.Offset()
	}
	return c, nil
}

func (p DateRange) apply(c *Compiled) error {
	if !p.From.IsZero() && !p.To.IsZero() && p.From.After(p.To) {
		return fmt.Errorf("date filter: %w", core.ErrInvertedRange)
	}
	if !p.From.IsZero() {
		c.clauses = append(c.clauses, "date >= ?")
		c.Args = append(c.Args, p.From.UTC().Format(TimeLayout))
	}
	if !p.To.IsZero() {
		op := "date <= ?"
		if p.ExclusiveTo {
			op = "date < ?"
		}
		c.clauses = append(c.clauses, op)
		c.Args = append(c.Args, p.To.UTC().Format(TimeLayout))
	}
	return nil
}

func (p CategoryIs) apply(c *Compiled) error {
	c.clauses = append(c.clauses, "category = ?")
	c.Args = append(c.Args, p.Category)
	return nil
}

func (p AmountRange) apply(c *Compiled) error {
	if p.Min != nil && p.Max != nil && p.Min.GreaterThan(*p.Max) {
		return fmt.Errorf("amount filter: %w", core.ErrInvertedRange)
	}
	if p.Min != nil {
		c.clauses = append(c.clauses, "amount_cents >= ?")
		c.Args = append(c.Args, core.Cents(*p.Min))
	}
	if p.Max != nil {
		c.clauses = append(c.clauses, "amount_cents <= ?")
		c.Args = append(c.Args, core.Cents(*p.Max))
	}
	return nil
}

func (p TextSearch) apply(c *Compiled) error {
	// lower() on both sides instead of relying on LIKE's ASCII-only folding.
	c.clauses = append(c.clauses,
		"(lower(description) LIKE ? OR lower(merchant) LIKE ? OR lower(subcategory) LIKE ?)")
	pattern := "%" + strings.ToLower(p.Fragment) + "%"
	c.Args = append(c.Args, pattern, pattern, pattern)
	return nil
}

func (p RecurringOnly) apply(c *Compiled) error {
	c.clauses = append(c.clauses, "is_recurring = 1")
	return nil
}

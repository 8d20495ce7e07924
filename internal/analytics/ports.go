// Package analytics turns raw ledger rows into dashboard-ready
// aggregates: category breakdowns, monthly matrices, period sums, and
// calendar-bucketed spend series. It holds no state of its own; every
// call is a fresh read against the ledger store.
package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"spendtrack/internal/core"
	"spendtrack/internal/query"
)

// Ledger is the slice of the store adapter this engine reads. The sqlite
// repository implements it; tests may substitute their own.
type Ledger interface {
	Scan(ctx context.Context, ownerID string, preds []query.Predicate, order query.Order, page query.Page) ([]core.Expense, int, error)
	CategoryTotals(ctx context.Context, ownerID string, preds []query.Predicate) ([]core.CategoryTotal, error)
	MonthlyCategoryTotals(ctx context.Context, ownerID string, start, end time.Time) ([]core.MonthlyCategoryTotal, error)
	SumInPeriod(ctx context.Context, ownerID string, start, end time.Time) (decimal.Decimal, error)
	Recurring(ctx context.Context, ownerID string) ([]core.Expense, error)
	ListSince(ctx context.Context, ownerID string, start time.Time) ([]core.Expense, error)
	TopByAmount(ctx context.Context, ownerID string, start time.Time, limit int) ([]core.Expense, error)
}

package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"spendtrack/internal/core"
	"spendtrack/internal/query"
)

var hundred = decimal.NewFromInt(100)

// Engine computes aggregates for one ledger store. It is safe for
// concurrent use: all state lives in the store.
type Engine struct {
	ledger Ledger
}

func NewEngine(ledger Ledger) *Engine {
	return &Engine{ledger: ledger}
}

// CategoryBreakdown groups the owner's rows by category over an optional
// [start, end] period (zero bounds leave the period open), annotates each
// total with its percentage of the grand total, and sorts by amount
// descending. Ties keep the store's grouping order. Percentages are all
// zero when the grand total is zero.
func (e *Engine) CategoryBreakdown(ctx context.Context, ownerID string, start, end time.Time) ([]core.CategoryTotal, error) {
	var preds []query.Predicate
	if !start.IsZero() || !end.IsZero() {
		preds = append(preds, query.DateRange{From: start, To: end})
	}

	totals, err := e.ledger.CategoryTotals(ctx, ownerID, preds)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}

	grand := decimal.Zero
	for _, ct := range totals {
		grand = grand.Add(ct.Total)
	}
	for i := range totals {
		totals[i].Percentage = percentage(totals[i].Total, grand)
		totals[i].Total = core.Round2(totals[i].Total)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total.GreaterThan(totals[j].Total)
	})
	return totals, nil
}

// PeriodSum is the amount sum over [start, end], inclusive, rounded at
// this boundary. An empty period is exactly zero.
func (e *Engine) PeriodSum(ctx context.Context, ownerID string, start, end time.Time) (decimal.Decimal, error) {
	sum, err := e.ledger.SumInPeriod(ctx, ownerID, start, end)
	if err != nil {
		return decimal.Zero, fmt.Errorf("period sum: %w", err)
	}
	return core.Round2(sum), nil
}

// CategoryTrend builds the (month, category) matrix for the trailing
// months window ending at the start of now's month, each point annotated
// with its share of that month's total across all categories. Points are
// ordered month ascending, amount descending within a month.
func (e *Engine) CategoryTrend(ctx context.Context, ownerID string, months int, now time.Time) ([]core.CategoryTrendPoint, error) {
	end := core.StartOfMonth(now)
	start := core.MonthsBack(now, months)

	matrix, err := e.ledger.MonthlyCategoryTotals(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("monthly category totals: %w", err)
	}

	monthTotals := map[string]decimal.Decimal{}
	for _, mt := range matrix {
		key := monthKey(mt.Year, mt.Month)
		monthTotals[key] = monthTotals[key].Add(mt.Total)
	}

	points := make([]core.CategoryTrendPoint, 0, len(matrix))
	for _, mt := range matrix {
		key := monthKey(mt.Year, mt.Month)
		points = append(points, core.CategoryTrendPoint{
			Month:      key,
			Category:   mt.Category,
			Amount:     core.Round2(mt.Total),
			Percentage: percentage(mt.Total, monthTotals[key]),
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		if points[i].Month != points[j].Month {
			return points[i].Month < points[j].Month
		}
		return points[i].Amount.GreaterThan(points[j].Amount)
	})
	return points, nil
}

// Recurring returns the owner's recurring rows, newest date first.
func (e *Engine) Recurring(ctx context.Context, ownerID string) ([]core.Expense, error) {
	rows, err := e.ledger.Recurring(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("recurring expenses: %w", err)
	}
	return rows, nil
}

// TopTransactions ranks the owner's rows dated on or after start by
// amount descending, limited to limit results. Equal amounts resolve in
// the store's natural row order.
func (e *Engine) TopTransactions(ctx context.Context, ownerID string, start time.Time, limit int) ([]core.RankedTransaction, error) {
	rows, err := e.ledger.TopByAmount(ctx, ownerID, start, limit)
	if err != nil {
		return nil, fmt.Errorf("top transactions: %w", err)
	}

	ranked := make([]core.RankedTransaction, len(rows))
	for i, row := range rows {
		ranked[i] = core.RankedTransaction{
			ID:          row.ID,
			Amount:      core.Round2(row.Amount),
			Category:    row.Category,
			Merchant:    row.Merchant,
			Description: row.Description,
			Date:        row.Date,
		}
	}
	return ranked, nil
}

// percentage returns part/whole*100 rounded to 2 digits, or zero when
// the whole is zero.
func percentage(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return core.Round2(part.Div(whole).Mul(hundred))
}

func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

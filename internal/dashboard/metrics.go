// Package dashboard composes the analytics engine into the five
// read-only dashboard views. Every view returns an explicit
// success/data/message outcome; failure is reserved for store faults,
// never for an empty ledger.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"spendtrack/internal/analytics"
	"spendtrack/internal/core"
)

// Breakdown period selectors.
const (
	PeriodCurrentMonth = "current_month"
	PeriodLast30Days   = "last_30_days"
	PeriodCurrentYear  = "current_year"
)

// Top-transaction trailing windows.
const (
	WindowWeekly  = "weekly"
	WindowMonthly = "monthly"
	WindowYearly  = "yearly"
)

const (
	defaultTrendMonths = 6
	defaultTrendDays   = 30
	defaultTopLimit    = 5
)

// Result is the envelope every view returns. Err is set only for store
// faults and carries the cause for the transport layer; Message is
// always human-readable.
type Result[T any] struct {
	Success bool
	Data    T
	Message string
	Err     error
}

func ok[T any](data T, message string) Result[T] {
	return Result[T]{Success: true, Data: data, Message: message}
}

func fail[T any](err error, message string) Result[T] {
	return Result[T]{Success: false, Message: message, Err: err}
}

// Service exposes the dashboard views for one analytics engine. It is
// stateless and safe for concurrent use.
type Service struct {
	engine *analytics.Engine
	now    func() time.Time
}

func NewService(engine *analytics.Engine) *Service {
	return &Service{engine: engine, now: time.Now}
}

// TotalSpend compares the running calendar month against the full
// previous one. With no previous-month spend the change is pinned to
// 100 when the current month has spend, 0 otherwise.
func (s *Service) TotalSpend(ctx context.Context, ownerID string) Result[core.PeriodComparison] {
	now := s.now()

	current, err := s.engine.PeriodSum(ctx, ownerID, core.StartOfMonth(now), core.EndOfMonth(now))
	if err != nil {
		return fail[core.PeriodComparison](err, "Failed to compute current month spend")
	}
	prevStart := core.PreviousMonthStart(now)
	previous, err := s.engine.PeriodSum(ctx, ownerID, prevStart, core.EndOfMonth(prevStart))
	if err != nil {
		return fail[core.PeriodComparison](err, "Failed to compute previous month spend")
	}

	var change decimal.Decimal
	switch {
	case previous.IsPositive():
		change = core.Round2(current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)))
	case current.IsPositive():
		change = decimal.NewFromInt(100)
	default:
		change = decimal.Zero
	}

	return ok(core.PeriodComparison{
		CurrentMonth:  current,
		PreviousMonth: previous,
		PercentChange: change,
		Direction:     core.DirectionOf(change),
	}, "Total spend data retrieved successfully")
}

// CategoryBreakdown returns the per-category totals for a selectable
// period, each annotated with its share of the period's grand total,
// sorted by amount descending.
func (s *Service) CategoryBreakdown(ctx context.Context, ownerID, period string) Result[[]core.CategoryTotal] {
	now := s.now()

	var start, end time.Time
	switch period {
	case PeriodLast30Days:
		start, end = now.AddDate(0, 0, -30), now
	case PeriodCurrentYear:
		start, end = core.StartOfYear(now), now
	default:
		period = PeriodCurrentMonth
		start, end = core.StartOfMonth(now), core.EndOfMonth(now)
	}

	breakdown, err := s.engine.CategoryBreakdown(ctx, ownerID, start, end)
	if err != nil {
		return fail[[]core.CategoryTotal](err, "Failed to compute category breakdown")
	}
	if len(breakdown) == 0 {
		return ok(breakdown, "No expenses found for the selected period")
	}
	return ok(breakdown, fmt.Sprintf("Category breakdown for %s retrieved successfully", period))
}

// CategoryTrend returns the monthly category matrix over a trailing
// window of months (default 6), month ascending, amount descending
// within each month.
func (s *Service) CategoryTrend(ctx context.Context, ownerID string, months int) Result[[]core.CategoryTrendPoint] {
	if months <= 0 {
		months = defaultTrendMonths
	}

	points, err := s.engine.CategoryTrend(ctx, ownerID, months, s.now())
	if err != nil {
		return fail[[]core.CategoryTrendPoint](err, "Failed to compute category trend")
	}
	return ok(points, fmt.Sprintf("Category trend data for last %d months retrieved successfully", months))
}

// SpendTrend buckets the owner's spend into a calendar series for the
// requested granularity and lookback window.
func (s *Service) SpendTrend(ctx context.Context, ownerID string, granularity analytics.Granularity, lookbackDays int) Result[[]core.TimeBucket] {
	if lookbackDays <= 0 {
		lookbackDays = defaultTrendDays
	}

	series, err := s.engine.SpendTrend(ctx, ownerID, granularity, lookbackDays, s.now())
	if err != nil {
		return fail[[]core.TimeBucket](err, "Failed to compute spend trend")
	}
	return ok(series, fmt.Sprintf("Spend trend data (%s) retrieved successfully", granularity))
}

// TopTransactions returns the highest-amount rows within a trailing
// window (default one month), limited to limit results (default 5).
func (s *Service) TopTransactions(ctx context.Context, ownerID, window string, limit int) Result[[]core.RankedTransaction] {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	now := s.now()

	var start time.Time
	switch window {
	case WindowWeekly:
		start = now.AddDate(0, 0, -7)
	case WindowYearly:
		start = now.AddDate(-1, 0, 0)
	default:
		window = WindowMonthly
		start = now.AddDate(0, -1, 0)
	}

	ranked, err := s.engine.TopTransactions(ctx, ownerID, start, limit)
	if err != nil {
		return fail[[]core.RankedTransaction](err, "Failed to compute top transactions")
	}
	return ok(ranked, fmt.Sprintf("Top %d transactions (%s) retrieved successfully", limit, window))
}

// Recurring lists the owner's recurring expenses, newest first.
func (s *Service) Recurring(ctx context.Context, ownerID string) Result[[]core.Expense] {
	rows, err := s.engine.Recurring(ctx, ownerID)
	if err != nil {
		return fail[[]core.Expense](err, "Failed to list recurring expenses")
	}
	if len(rows) == 0 {
		return ok(rows, "No recurring expenses found")
	}
	return ok(rows, "Recurring expenses retrieved successfully")
}

// Overview is all five views in one shot, the shape a dashboard render
// actually needs.
type Overview struct {
	TotalSpend      core.PeriodComparison     `json:"total_spend"`
	Breakdown       []core.CategoryTotal      `json:"category_breakdown"`
	CategoryTrend   []core.CategoryTrendPoint `json:"category_trend"`
	SpendTrend      []core.TimeBucket         `json:"spend_trend"`
	TopTransactions []core.RankedTransaction  `json:"top_transactions"`
}

// OverviewData fans the five views out concurrently with their default
// parameters. The first store fault cancels the rest.
func (s *Service) OverviewData(ctx context.Context, ownerID string) Result[Overview] {
	var overview Overview
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res := s.TotalSpend(ctx, ownerID)
		overview.TotalSpend = res.Data
		return res.Err
	})
	g.Go(func() error {
		res := s.CategoryBreakdown(ctx, ownerID, PeriodCurrentMonth)
		overview.Breakdown = res.Data
		return res.Err
	})
	g.Go(func() error {
		res := s.CategoryTrend(ctx, ownerID, defaultTrendMonths)
		overview.CategoryTrend = res.Data
		return res.Err
	})
	g.Go(func() error {
		res := s.SpendTrend(ctx, ownerID, analytics.Daily, defaultTrendDays)
		overview.SpendTrend = res.Data
		return res.Err
	})
	g.Go(func() error {
		res := s.TopTransactions(ctx, ownerID, WindowMonthly, defaultTopLimit)
		overview.TopTransactions = res.Data
		return res.Err
	})

	if err := g.Wait(); err != nil {
		return fail[Overview](err, "Failed to assemble dashboard overview")
	}
	return ok(overview, "Dashboard overview retrieved successfully")
}

package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"spendtrack/internal/core"
)

// Granularity selects the calendar bucket for a spend series.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Floors keep a very small requested window from collapsing to a one or
// two point series.
const (
	minWeeks  = 4
	minMonths = 3
)

// ParseGranularity maps a caller-supplied string to a Granularity,
// defaulting to daily for anything unrecognized (matching the listing
// default rather than failing a dashboard render).
func ParseGranularity(s string) Granularity {
	switch Granularity(s) {
	case Weekly:
		return Weekly
	case Monthly:
		return Monthly
	default:
		return Daily
	}
}

// WindowStart computes the series start for a lookback expressed in
// days. Weekly windows are normalized to whole weeks (floor 4), monthly
// to whole 30-day months (floor 3).
func WindowStart(now time.Time, g Granularity, lookbackDays int) time.Time {
	switch g {
	case Weekly:
		weeks := lookbackDays / 7
		if weeks < minWeeks {
			weeks = minWeeks
		}
		return now.AddDate(0, 0, -weeks*7)
	case Monthly:
		months := lookbackDays / 30
		if months < minMonths {
			months = minMonths
		}
		return now.AddDate(0, 0, -months*30)
	default:
		return now.AddDate(0, 0, -lookbackDays)
	}
}

// BucketSeries groups rows into calendar buckets from start onward.
// Rows dated strictly before start are dropped even if the store
// over-fetched them. Buckets with no rows are omitted; the series is
// ordered by bucket key ascending, which keeps ISO week-year boundaries
// correct where label order would not.
func BucketSeries(rows []core.Expense, g Granularity, start time.Time) []core.TimeBucket {
	buckets := map[time.Time]*core.TimeBucket{}

	for _, row := range rows {
		if row.Date.Before(start) {
			continue
		}
		key, label := bucketOf(row.Date, g)
		b, ok := buckets[key]
		if !ok {
			b = &core.TimeBucket{Start: key, Label: label}
			buckets[key] = b
		}
		b.Total = b.Total.Add(row.Amount)
		b.Count++
	}

	series := make([]core.TimeBucket, 0, len(buckets))
	for _, b := range buckets {
		b.Total = core.Round2(b.Total)
		series = append(series, *b)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Start.Before(series[j].Start)
	})
	return series
}

// SpendTrend fetches the owner's rows inside the window and buckets them.
func (e *Engine) SpendTrend(ctx context.Context, ownerID string, g Granularity, lookbackDays int, now time.Time) ([]core.TimeBucket, error) {
	start := WindowStart(now, g, lookbackDays)
	rows, err := e.ledger.ListSince(ctx, ownerID, start)
	if err != nil {
		return nil, fmt.Errorf("list since %s: %w", start.Format("2006-01-02"), err)
	}
	return BucketSeries(rows, g, start), nil
}

func bucketOf(t time.Time, g Granularity) (key time.Time, label string) {
	switch g {
	case Weekly:
		monday := core.ISOWeekStart(t)
		return monday, core.ISOWeekLabel(t)
	case Monthly:
		return core.StartOfMonth(core.DayOf(t)), core.MonthLabel(t)
	default:
		day := core.DayOf(t)
		return day, core.DayLabel(day)
	}
}

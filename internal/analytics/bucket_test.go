package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendtrack/internal/core"
)

func row(y int, m time.Month, d int, amount string) core.Expense {
	return core.Expense{
		Date:   time.Date(y, m, d, 10, 0, 0, 0, time.UTC),
		Amount: decimal.RequireFromString(amount),
	}
}

func TestWindowStartFloors(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		g    Granularity
		days int
		want time.Time
	}{
		{Daily, 30, now.AddDate(0, 0, -30)},
		{Weekly, 70, now.AddDate(0, 0, -70)},   // 10 whole weeks
		{Weekly, 7, now.AddDate(0, 0, -28)},    // floored to 4 weeks
		{Weekly, 10, now.AddDate(0, 0, -28)},   // partial week dropped, then floored
		{Monthly, 365, now.AddDate(0, 0, -360)}, // 12 thirty-day months
		{Monthly, 30, now.AddDate(0, 0, -90)},  // floored to 3 months
	}
	for i, tc := range cases {
		if got := WindowStart(now, tc.g, tc.days); !got.Equal(tc.want) {
			t.Fatalf("case %d: got %v want %v", i, got, tc.want)
		}
	}
}

func TestBucketSeriesDaily(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []core.Expense{
		row(2025, 3, 2, "10.10"),
		row(2025, 3, 2, "5.15"),
		row(2025, 3, 5, "7"),
		row(2025, 2, 20, "99"), // before the window: dropped defensively
	}

	series := BucketSeries(rows, Daily, start)
	if len(series) != 2 {
		t.Fatalf("got %d buckets", len(series))
	}
	if series[0].Label != "2025-03-02" || series[1].Label != "2025-03-05" {
		t.Fatalf("labels %q %q", series[0].Label, series[1].Label)
	}
	if !series[0].Total.Equal(decimal.RequireFromString("15.25")) {
		t.Fatalf("total %s", series[0].Total)
	}
	if series[0].Count != 2 || series[1].Count != 1 {
		t.Fatalf("counts %d %d", series[0].Count, series[1].Count)
	}
}

func TestBucketSeriesWeeklyYearBoundary(t *testing.T) {
	start := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	rows := []core.Expense{
		row(2024, 12, 30, "10"), // Monday of ISO week 1, 2025
		row(2025, 1, 2, "20"),   // same ISO week
		row(2024, 12, 27, "5"),  // ISO week 52 of 2024
	}

	series := BucketSeries(rows, Weekly, start)
	if len(series) != 2 {
		t.Fatalf("got %d buckets", len(series))
	}
	// Ascending by bucket key: week 52 of 2024 first.
	if series[0].Label != "2024-W52" {
		t.Fatalf("first label %q", series[0].Label)
	}
	if series[1].Label != "2025-W01" {
		t.Fatalf("boundary week must use the ISO week-numbering year, got %q", series[1].Label)
	}
	if !series[1].Total.Equal(decimal.NewFromInt(30)) || series[1].Count != 2 {
		t.Fatalf("boundary bucket: total %s count %d", series[1].Total, series[1].Count)
	}
	wantKey := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)
	if !series[1].Start.Equal(wantKey) {
		t.Fatalf("bucket key must be the ISO week's Monday, got %v", series[1].Start)
	}
}

func TestBucketSeriesMonthly(t *testing.T) {
	start := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	rows := []core.Expense{
		row(2024, 12, 31, "10"),
		row(2025, 1, 1, "20"),
		row(2025, 1, 28, "2.50"),
	}

	series := BucketSeries(rows, Monthly, start)
	if len(series) != 2 {
		t.Fatalf("got %d buckets", len(series))
	}
	if series[0].Label != "2024-12" || series[1].Label != "2025-01" {
		t.Fatalf("labels %q %q", series[0].Label, series[1].Label)
	}
	if !series[1].Total.Equal(decimal.RequireFromString("22.5")) {
		t.Fatalf("total %s", series[1].Total)
	}
}

func TestBucketSeriesSparse(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	series := BucketSeries([]core.Expense{row(2025, 1, 1, "1"), row(2025, 1, 31, "1")}, Daily, start)
	// Empty days are omitted, not zero-filled.
	if len(series) != 2 {
		t.Fatalf("got %d buckets", len(series))
	}
}

func TestParseGranularity(t *testing.T) {
	if ParseGranularity("weekly") != Weekly || ParseGranularity("monthly") != Monthly {
		t.Fatal("known granularities must parse")
	}
	if ParseGranularity("") != Daily || ParseGranularity("hourly") != Daily {
		t.Fatal("unknown granularities default to daily")
	}
}

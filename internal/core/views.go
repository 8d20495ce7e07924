package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tags for period-over-period comparisons.
const (
	DirectionIncrease ChangeDirection = "increase"
	DirectionDecrease ChangeDirection = "decrease"
	DirectionSame     ChangeDirection = "same"
)

type (
	ChangeDirection string

	// CategoryTotal is one row of a category breakdown. Percentage is the
	// share of the breakdown's grand total, zero when the grand total is zero.
	CategoryTotal struct {
		Category   string          `json:"category"`
		Total      decimal.Decimal `json:"total"`
		Count      int             `json:"count"`
		Percentage decimal.Decimal `json:"percentage"`
	}

	// MonthlyCategoryTotal is one cell of the (year, month, category) matrix.
	MonthlyCategoryTotal struct {
		Year     int             `json:"year"`
		Month    time.Month      `json:"month"`
		Category string          `json:"category"`
		Total    decimal.Decimal `json:"total"`
	}

	// TimeBucket is one point of a calendar-bucketed spend series.
	// Start is the bucket key (day, ISO-week Monday, or first of month);
	// series are ordered by Start, never by Label.
	TimeBucket struct {
		Start time.Time       `json:"start"`
		Label string          `json:"label"`
		Total decimal.Decimal `json:"total"`
		Count int             `json:"count"`
	}

	// PeriodComparison compares the running calendar month against the
	// full previous one.
	PeriodComparison struct {
		CurrentMonth  decimal.Decimal `json:"current_month"`
		PreviousMonth decimal.Decimal `json:"previous_month"`
		PercentChange decimal.Decimal `json:"percent_change"`
		Direction     ChangeDirection `json:"direction"`
	}

	// CategoryTrendPoint is one (month, category) point of the trend view,
	// annotated with the category's share of that month's total.
	CategoryTrendPoint struct {
		Month      string          `json:"month"` // YYYY-MM
		Category   string          `json:"category"`
		Amount     decimal.Decimal `json:"amount"`
		Percentage decimal.Decimal `json:"percentage"`
	}

	// RankedTransaction is an expense projected to its ranking fields.
	RankedTransaction struct {
		ID          string          `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Merchant    string          `json:"merchant,omitempty"`
		Description string          `json:"description,omitempty"`
		Date        time.Time       `json:"date"`
	}
)

// DirectionOf derives the direction tag from a signed percentage change.
func DirectionOf(change decimal.Decimal) ChangeDirection {
	switch change.Sign() {
	case 1:
		return DirectionIncrease
	case -1:
		return DirectionDecrease
	default:
		return DirectionSame
	}
}

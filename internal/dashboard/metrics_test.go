package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"spendtrack/internal/analytics"
	"spendtrack/internal/core"
	"spendtrack/internal/storage"
)

type DashboardTestSuite struct {
	suite.Suite
	repo    *storage.SQLiteRepository
	service *Service
	ctx     context.Context
	now     time.Time
}

func (s *DashboardTestSuite) SetupTest() {
	repo, err := storage.NewSQLiteRepository(":memory:")
	require.NoError(s.T(), err)
	s.repo = repo
	s.service = NewService(analytics.NewEngine(repo))
	s.now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	s.service.now = func() time.Time { return s.now }
	s.ctx = context.Background()
}

func (s *DashboardTestSuite) TearDownTest() {
	if s.repo != nil {
		s.repo.Close()
	}
}

func (s *DashboardTestSuite) insert(amount string, date time.Time, category string) {
	_, err := s.repo.Insert(s.ctx, core.Expense{
		OwnerID:  "o",
		Amount:   decimal.RequireFromString(amount),
		Currency: "EUR",
		Category: category,
		Date:     date,
	})
	require.NoError(s.T(), err)
}

func (s *DashboardTestSuite) TestTotalSpendPreviousZero() {
	// previous = 0, current = 50 → change 100, increase.
	s.insert("50", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "food")

	res := s.service.TotalSpend(s.ctx, "o")
	require.True(s.T(), res.Success, res.Message)
	assert.True(s.T(), res.Data.PercentChange.Equal(decimal.NewFromInt(100)))
	assert.Equal(s.T(), core.DirectionIncrease, res.Data.Direction)
}

func (s *DashboardTestSuite) TestTotalSpendSame() {
	s.insert("100", time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), "food")
	s.insert("100", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "food")

	res := s.service.TotalSpend(s.ctx, "o")
	require.True(s.T(), res.Success)
	assert.True(s.T(), res.Data.PercentChange.IsZero(), "change %s", res.Data.PercentChange)
	assert.Equal(s.T(), core.DirectionSame, res.Data.Direction)
}

func (s *DashboardTestSuite) TestTotalSpendDecrease() {
	s.insert("200", time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), "food")
	s.insert("150", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "food")

	res := s.service.TotalSpend(s.ctx, "o")
	require.True(s.T(), res.Success)
	assert.True(s.T(), res.Data.PercentChange.Equal(decimal.NewFromInt(-25)),
		"change %s", res.Data.PercentChange)
	assert.Equal(s.T(), core.DirectionDecrease, res.Data.Direction)
}

func (s *DashboardTestSuite) TestTotalSpendEmptyLedgerIsZeroSame() {
	res := s.service.TotalSpend(s.ctx, "o")
	require.True(s.T(), res.Success, "no data is a valid empty success")
	assert.True(s.T(), res.Data.PercentChange.IsZero())
	assert.Equal(s.T(), core.DirectionSame, res.Data.Direction)
}

func (s *DashboardTestSuite) TestTotalSpendPreviousMonthIsFullMonth() {
	// Late February spend, after the current day-of-month, still counts:
	// the previous window is the whole month, not month-to-date.
	s.insert("80", time.Date(2025, 2, 25, 0, 0, 0, 0, time.UTC), "food")

	res := s.service.TotalSpend(s.ctx, "o")
	require.True(s.T(), res.Success)
	assert.True(s.T(), res.Data.PreviousMonth.Equal(decimal.NewFromInt(80)),
		"previous %s", res.Data.PreviousMonth)
}

func (s *DashboardTestSuite) TestCategoryBreakdownPeriods() {
	s.insert("10", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), "food")      // current month
	s.insert("20", time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), "food")     // last 30 days, not current month
	s.insert("40", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), "transport") // year to date only

	current := s.service.CategoryBreakdown(s.ctx, "o", PeriodCurrentMonth)
	require.True(s.T(), current.Success)
	require.Len(s.T(), current.Data, 1)
	assert.True(s.T(), current.Data[0].Total.Equal(decimal.NewFromInt(10)))
	assert.True(s.T(), current.Data[0].Percentage.Equal(decimal.NewFromInt(100)))

	last30 := s.service.CategoryBreakdown(s.ctx, "o", PeriodLast30Days)
	require.True(s.T(), last30.Success)
	require.Len(s.T(), last30.Data, 1)
	assert.True(s.T(), last30.Data[0].Total.Equal(decimal.NewFromInt(30)))

	ytd := s.service.CategoryBreakdown(s.ctx, "o", PeriodCurrentYear)
	require.True(s.T(), ytd.Success)
	assert.Len(s.T(), ytd.Data, 2)
	assert.Equal(s.T(), "transport", ytd.Data[0].Category, "sorted by amount descending")
}

func (s *DashboardTestSuite) TestCategoryBreakdownNoData() {
	res := s.service.CategoryBreakdown(s.ctx, "o", PeriodCurrentMonth)
	require.True(s.T(), res.Success)
	assert.Empty(s.T(), res.Data)
	assert.Equal(s.T(), "No expenses found for the selected period", res.Message)
}

func (s *DashboardTestSuite) TestCategoryTrendDefaultWindow() {
	s.insert("10", time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC), "food") // before the 6-month window
	s.insert("20", time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC), "food")

	res := s.service.CategoryTrend(s.ctx, "o", 0)
	require.True(s.T(), res.Success)
	require.Len(s.T(), res.Data, 1)
	assert.Equal(s.T(), "2024-10", res.Data[0].Month)
}

func (s *DashboardTestSuite) TestSpendTrendGranularities() {
	s.insert("10", s.now.AddDate(0, 0, -2), "food")
	s.insert("20", s.now.AddDate(0, 0, -2), "food")

	daily := s.service.SpendTrend(s.ctx, "o", analytics.Daily, 7)
	require.True(s.T(), daily.Success)
	require.Len(s.T(), daily.Data, 1)
	assert.True(s.T(), daily.Data[0].Total.Equal(decimal.NewFromInt(30)))

	weekly := s.service.SpendTrend(s.ctx, "o", analytics.Weekly, 7)
	require.True(s.T(), weekly.Success)
	require.Len(s.T(), weekly.Data, 1)
	assert.Contains(s.T(), weekly.Data[0].Label, "-W")
}

func (s *DashboardTestSuite) TestTopTransactionsDefaults() {
	day := s.now.AddDate(0, 0, -3)
	for _, amt := range []string{"10", "50", "30", "80", "20", "80"} {
		s.insert(amt, day, "misc")
	}

	res := s.service.TopTransactions(s.ctx, "o", "", 0)
	require.True(s.T(), res.Success)
	require.Len(s.T(), res.Data, 5, "default limit")
	assert.True(s.T(), res.Data[0].Amount.Equal(decimal.NewFromInt(80)))

	limited := s.service.TopTransactions(s.ctx, "o", WindowWeekly, 3)
	require.True(s.T(), limited.Success)
	sum := decimal.Zero
	for _, r := range limited.Data {
		sum = sum.Add(r.Amount)
	}
	assert.True(s.T(), sum.Equal(decimal.NewFromInt(210)), "got %s", sum)
}

func (s *DashboardTestSuite) TestOverviewFanOut() {
	s.insert("10", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), "food")

	res := s.service.OverviewData(s.ctx, "o")
	require.True(s.T(), res.Success, res.Message)
	assert.Len(s.T(), res.Data.Breakdown, 1)
	assert.Len(s.T(), res.Data.TopTransactions, 1)
	assert.True(s.T(), res.Data.TotalSpend.CurrentMonth.Equal(decimal.NewFromInt(10)))
}

func TestDashboardTestSuite(t *testing.T) {
	suite.Run(t, new(DashboardTestSuite))
}

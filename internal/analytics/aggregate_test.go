package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"spendtrack/internal/core"
	"spendtrack/internal/storage"
)

type EngineTestSuite struct {
	suite.Suite
	repo   *storage.SQLiteRepository
	engine *Engine
	ctx    context.Context
}

func (s *EngineTestSuite) SetupTest() {
	repo, err := storage.NewSQLiteRepository(":memory:")
	require.NoError(s.T(), err)
	s.repo = repo
	s.engine = NewEngine(repo)
	s.ctx = context.Background()
}

func (s *EngineTestSuite) TearDownTest() {
	if s.repo != nil {
		s.repo.Close()
	}
}

func (s *EngineTestSuite) insert(owner, category, amount string, date time.Time) {
	_, err := s.repo.Insert(s.ctx, core.Expense{
		OwnerID:  owner,
		Amount:   decimal.RequireFromString(amount),
		Currency: "EUR",
		Category: category,
		Date:     date,
	})
	require.NoError(s.T(), err)
}

func (s *EngineTestSuite) TestCategoryBreakdownPercentagesSumTo100() {
	day := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	s.insert("o", "food", "33.33", day)
	s.insert("o", "transport", "33.33", day)
	s.insert("o", "fun", "33.34", day)

	breakdown, err := s.engine.CategoryBreakdown(s.ctx, "o", time.Time{}, time.Time{})
	require.NoError(s.T(), err)
	require.Len(s.T(), breakdown, 3)

	sum := decimal.Zero
	for _, ct := range breakdown {
		sum = sum.Add(ct.Percentage)
	}
	diff := sum.Sub(decimal.NewFromInt(100)).Abs()
	assert.True(s.T(), diff.LessThanOrEqual(decimal.RequireFromString("0.1")),
		"percentages sum to %s", sum)

	// Sorted by amount descending.
	assert.Equal(s.T(), "fun", breakdown[0].Category)
}

func (s *EngineTestSuite) TestCategoryBreakdownEmptyLedger() {
	breakdown, err := s.engine.CategoryBreakdown(s.ctx, "nobody", time.Time{}, time.Time{})
	require.NoError(s.T(), err)
	assert.Empty(s.T(), breakdown)
}

func (s *EngineTestSuite) TestPeriodSumMatchesBreakdownGrandTotal() {
	day := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	s.insert("o", "food", "10.01", day)
	s.insert("o", "food", "20.02", day)
	s.insert("o", "transport", "5.55", day)

	start := day.AddDate(0, 0, -1)
	end := day.AddDate(0, 0, 1)
	sum, err := s.engine.PeriodSum(s.ctx, "o", start, end)
	require.NoError(s.T(), err)

	breakdown, err := s.engine.CategoryBreakdown(s.ctx, "o", start, end)
	require.NoError(s.T(), err)
	grand := decimal.Zero
	for _, ct := range breakdown {
		grand = grand.Add(ct.Total)
	}
	diff := grand.Sub(sum).Abs()
	assert.True(s.T(), diff.LessThanOrEqual(decimal.RequireFromString("0.01")),
		"breakdown %s vs period sum %s", grand, sum)
}

func (s *EngineTestSuite) TestCategoryTrendSharesAndOrder() {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	s.insert("o", "food", "75", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	s.insert("o", "transport", "25", time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC))
	s.insert("o", "food", "40", time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC))
	// In now's own month: excluded, the window ends at the month start.
	s.insert("o", "food", "999", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	points, err := s.engine.CategoryTrend(s.ctx, "o", 6, now)
	require.NoError(s.T(), err)
	require.Len(s.T(), points, 3)

	assert.Equal(s.T(), "2025-01", points[0].Month)
	assert.Equal(s.T(), "food", points[0].Category, "amount descending within month")
	assert.True(s.T(), points[0].Percentage.Equal(decimal.NewFromInt(75)))
	assert.True(s.T(), points[1].Percentage.Equal(decimal.NewFromInt(25)))

	assert.Equal(s.T(), "2025-02", points[2].Month)
	assert.True(s.T(), points[2].Percentage.Equal(decimal.NewFromInt(100)))
}

func (s *EngineTestSuite) TestTopTransactions() {
	day := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	for _, amt := range []string{"10", "50", "30", "80", "20", "80"} {
		s.insert("o", "misc", amt, day)
	}

	ranked, err := s.engine.TopTransactions(s.ctx, "o", day.AddDate(0, 0, -7), 3)
	require.NoError(s.T(), err)
	require.Len(s.T(), ranked, 3)

	sum := decimal.Zero
	for _, r := range ranked {
		sum = sum.Add(r.Amount)
	}
	assert.True(s.T(), sum.Equal(decimal.NewFromInt(210)), "got %s", sum)
}

func (s *EngineTestSuite) TestSpendTrendEndToEnd() {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	s.insert("o", "food", "10", now.AddDate(0, 0, -1))
	s.insert("o", "food", "20", now.AddDate(0, 0, -1))
	s.insert("o", "food", "5", now.AddDate(0, 0, -10))

	series, err := s.engine.SpendTrend(s.ctx, "o", Daily, 7, now)
	require.NoError(s.T(), err)
	require.Len(s.T(), series, 1, "row outside the 7-day window is excluded")
	assert.True(s.T(), series[0].Total.Equal(decimal.NewFromInt(30)))
	assert.Equal(s.T(), 2, series[0].Count)
}

func (s *EngineTestSuite) TestOwnerIsolationThroughEngine() {
	day := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	s.insert("a", "food", "10", day)
	s.insert("b", "food", "999", day)

	breakdown, err := s.engine.CategoryBreakdown(s.ctx, "a", time.Time{}, time.Time{})
	require.NoError(s.T(), err)
	require.Len(s.T(), breakdown, 1)
	assert.True(s.T(), breakdown[0].Total.Equal(decimal.NewFromInt(10)))
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

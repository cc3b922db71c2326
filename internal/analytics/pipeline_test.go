package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maplebudget/internal/core"
)

func TestTotalsMixedSet(t *testing.T) {
	got := ComputeTotals(scenarioA())

	assert.Equal(t, 500.0, got.Income)
	assert.Equal(t, 150.0, got.Expense)
	assert.Equal(t, 350.0, got.Net)
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, 2, got.ActiveDays)
	assert.InDelta(t, 650.0/3, got.AvgTx, 1e-9)
}

func TestSeriesByDay(t *testing.T) {
	got := BuildSeries(scenarioA(), GroupDay, time.UTC)

	require.Len(t, got, 2)
	assert.Equal(t, SeriesPoint{Key: "2024-01-01", Label: "01 janv.", Income: 500, Expense: 100, Net: 400}, got[0])
	assert.Equal(t, SeriesPoint{Key: "2024-01-02", Label: "02 janv.", Income: 0, Expense: 50, Net: -50}, got[1])
}

func TestSeriesSortedByKey(t *testing.T) {
	txs := []core.NormalizedTransaction{
		ntx(1, "2024-03-04", 10, 1, "A", core.Expense),
		ntx(2, "2024-01-15", 10, 1, "A", core.Expense),
		ntx(3, "2024-02-20", 10, 1, "A", core.Expense),
	}
	got := BuildSeries(txs, GroupMonth, time.UTC)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, []string{got[0].Key, got[1].Key, got[2].Key})
	assert.Equal(t, "janv. 2024", got[0].Label)
}

func TestEmptySet(t *testing.T) {
	r := Run(nil, Params{Location: time.UTC})

	assert.Equal(t, Totals{}, r.Totals)
	assert.Empty(t, r.Categories)
	assert.Empty(t, r.Series)
	assert.Nil(t, r.Area)
	assert.Nil(t, r.Donut)
	assert.Nil(t, r.Insights.Biggest)
	assert.Nil(t, r.Insights.TopExpense)
	assert.Nil(t, r.Insights.Projection)
}

func TestCategoryTotalsConserveTypeTotals(t *testing.T) {
	filters := []Filter{
		{},
		{From: "2024-01-03"},
		{To: "2024-01-31"},
		{From: "2024-01-05", To: "2024-02-03"},
		{Type: TypeExpense},
		{Type: TypeIncome, From: "2024-01-10"},
	}
	for _, f := range filters {
		filtered := Apply(mixedSet(), f)
		totals := ComputeTotals(filtered)
		cats := AggregateCategories(filtered, CategoryOptions{Sort: SortNameAsc})

		var income, expense float64
		for _, c := range cats {
			if c.Type == core.Income {
				income += c.Total
			} else {
				expense += c.Total
			}
		}
		assert.InDelta(t, totals.Income, income, 1e-9, "filter %+v", f)
		assert.InDelta(t, totals.Expense, expense, 1e-9, "filter %+v", f)
	}
}

func TestRunIsRepeatable(t *testing.T) {
	p := Params{
		Period:     Period{From: "2024-01-01", To: "2024-02-29"},
		Type:       TypeAll,
		Categories: CategoryOptions{HideZero: true, Sort: SortTotalDesc},
		GroupBy:    GroupWeek,
		Focus:      FocusNet,
		Location:   time.UTC,
	}
	txs := mixedSet()

	first := Run(txs, p)
	second := Run(txs, p)

	assert.Equal(t, first, second)
	assert.Equal(t, mixedSet(), txs, "input must not be modified")
}

func TestRunReport(t *testing.T) {
	r := Run(mixedSet(), Params{
		Period:     Period{From: "2024-01-01", To: "2024-01-31"},
		Categories: CategoryOptions{Sort: SortTotalDesc},
		GroupBy:    GroupDay,
		Focus:      FocusExpense,
		Location:   time.UTC,
	})

	assert.Equal(t, "2024-01-01 → 2024-01-31", r.PeriodLabel)
	assert.Equal(t, 6, r.Totals.Count)
	require.NotNil(t, r.Insights.TopExpense)
	assert.Equal(t, "Loyer", r.Insights.TopExpense.Name)
	require.NotNil(t, r.Insights.TopIncome)
	assert.Equal(t, "Salaire", r.Insights.TopIncome.Name)
	require.NotNil(t, r.Insights.Biggest)
	assert.Equal(t, int64(1), r.Insights.Biggest.ID)
	require.NotNil(t, r.Area)
	assert.Len(t, r.Area.Points, len(r.Series))
	require.NotNil(t, r.Donut)
	assert.Len(t, r.Donut.Segments, 3)
	assert.Len(t, r.Recent, 6)
	assert.Contains(t, r.Summary, "Top dépense: Loyer")
}

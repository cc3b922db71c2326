package analytics

import (
	"time"

	"maplebudget/internal/core"
)

// Dashboard list sizes.
const (
	DashboardTopCategories = 10
	DashboardRecent        = 8
)

// Params is the dashboard filter state.
type Params struct {
	Period     Period
	Type       TypeFilter
	Categories CategoryOptions
	GroupBy    GroupBy
	Focus      Focus
	Location   *time.Location
}

// Report is everything the dashboard renders for one set of Params.
type Report struct {
	Params       Params
	PeriodLabel  string
	Transactions []core.NormalizedTransaction
	Totals       Totals
	Categories   []CategoryAggregate
	Series       []SeriesPoint
	Insights     Insights
	Area         *AreaChart
	Donut        *Donut
	Top          []CategoryAggregate
	Recent       []core.NormalizedTransaction
	Summary      string
}

// Run derives a Report from txs. It holds no state between calls.
func Run(txs []core.NormalizedTransaction, p Params) Report {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}

	filtered := Apply(txs, Filter{From: p.Period.From, To: p.Period.To, Type: p.Type})
	totals := ComputeTotals(filtered)
	cats := AggregateCategories(filtered, p.Categories)
	series := BuildSeries(filtered, p.GroupBy, loc)
	ins := ComputeInsights(cats, filtered, totals, p.Period, loc)

	return Report{
		Params:       p,
		PeriodLabel:  PeriodLabel(p.Period),
		Transactions: filtered,
		Totals:       totals,
		Categories:   cats,
		Series:       series,
		Insights:     ins,
		Area:         BuildAreaChart(FocusValues(series, p.Focus)),
		Donut:        BuildDonut(DonutCandidates(cats, p.Focus)),
		Top:          TopCategories(cats, DashboardTopCategories),
		Recent:       RecentTransactions(filtered, DashboardRecent),
		Summary:      ExecutiveSummary(p.Period, totals, ins),
	}
}

package analytics

import (
	"math"
	"time"

	"maplebudget/internal/core"
)

// Projection extrapolates the average daily net over an inclusive day span.
type Projection struct {
	Days         int
	AvgDailyNet  float64
	ProjectedNet float64
}

// Insights are derived from the sorted category list and the filtered set.
type Insights struct {
	TopExpense *CategoryAggregate
	TopIncome  *CategoryAggregate
	Biggest    *core.NormalizedTransaction
	Projection *Projection
}

// ProjectNet spreads net over the inclusive span from..to and projects it back
// over the same number of days. It returns nil unless both bounds are set.
// Bounds that do not parse count as a single day.
func ProjectNet(net float64, from, to string, loc *time.Location) *Projection {
	if from == "" || to == "" {
		return nil
	}
	days := 1
	a, errA := core.ParseDate(from, loc)
	b, errB := core.ParseDate(to, loc)
	if errA == nil && errB == nil {
		diff := b.Sub(a).Hours() / 24
		days = max(1, int(math.Round(diff))+1)
	}
	avgDailyNet := net / float64(days)
	return &Projection{
		Days:         days,
		AvgDailyNet:  avgDailyNet,
		ProjectedNet: avgDailyNet * float64(days),
	}
}

// Biggest returns the transaction with the largest amount. On ties the first
// one seen wins.
func Biggest(txs []core.NormalizedTransaction) *core.NormalizedTransaction {
	var best *core.NormalizedTransaction
	for i := range txs {
		if best == nil || txs[i].AmountNum > best.AmountNum {
			best = &txs[i]
		}
	}
	if best == nil {
		return nil
	}
	b := *best
	return &b
}

// ComputeInsights expects cats in display order; the top categories are the
// first of each type in that order.
func ComputeInsights(cats []CategoryAggregate, txs []core.NormalizedTransaction, totals Totals, p Period, loc *time.Location) Insights {
	return Insights{
		TopExpense: FirstOfType(cats, core.Expense),
		TopIncome:  FirstOfType(cats, core.Income),
		Biggest:    Biggest(txs),
		Projection: ProjectNet(totals.Net, p.From, p.To, loc),
	}
}

package analytics

import (
	"sort"
	"time"

	"maplebudget/internal/core"
)

// SeriesPoint is one time bucket of the trend chart.
type SeriesPoint struct {
	Key     string
	Label   string
	Income  float64
	Expense float64
	Net     float64
}

// BuildSeries accumulates txs per bucket and returns the buckets sorted by key.
func BuildSeries(txs []core.NormalizedTransaction, mode GroupBy, loc *time.Location) []SeriesPoint {
	index := make(map[string]int)
	var out []SeriesPoint
	for _, t := range txs {
		b := BucketOfDate(t.Date, mode, loc)
		i, ok := index[b.Key]
		if !ok {
			i = len(out)
			index[b.Key] = i
			out = append(out, SeriesPoint{Key: b.Key, Label: b.Label})
		}
		p := &out[i]
		if t.CatType == core.Income {
			p.Income += t.AmountNum
		} else {
			p.Expense += t.AmountNum
		}
		p.Net = p.Income - p.Expense
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// DailyNet returns the net of each of the last days days ending today, oldest
// first. Transactions outside the window are ignored.
func DailyNet(txs []core.NormalizedTransaction, today time.Time, days int) []float64 {
	if days <= 0 {
		return nil
	}
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		d := today.AddDate(0, 0, -(days - 1 - i))
		index[core.FormatDate(d)] = i
	}
	out := make([]float64, days)
	for _, t := range txs {
		i, ok := index[t.Date]
		if !ok {
			continue
		}
		if t.CatType == core.Income {
			out[i] += t.AmountNum
		} else {
			out[i] -= t.AmountNum
		}
	}
	return out
}

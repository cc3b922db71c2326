package analytics

import "maplebudget/internal/core"

// Totals are the KPI figures of a filtered set.
type Totals struct {
	Income     float64
	Expense    float64
	Net        float64
	Count      int
	ActiveDays int
	AvgTx      float64
}

// ComputeTotals folds txs into income, expense and net. Anything that is not
// income counts as expense.
func ComputeTotals(txs []core.NormalizedTransaction) Totals {
	var t Totals
	days := make(map[string]struct{})
	for _, tx := range txs {
		if tx.CatType == core.Income {
			t.Income += tx.AmountNum
		} else {
			t.Expense += tx.AmountNum
		}
		days[tx.Date] = struct{}{}
	}
	t.Net = t.Income - t.Expense
	t.Count = len(txs)
	t.ActiveDays = len(days)
	if t.Count > 0 {
		t.AvgTx = (t.Income + t.Expense) / float64(t.Count)
	}
	return t
}

package analytics

import (
	"sort"
	"strings"

	"maplebudget/internal/core"
)

// TransactionSort orders the transactions list.
type TransactionSort string

const (
	SortDateDesc   TransactionSort = "date_desc"
	SortDateAsc    TransactionSort = "date_asc"
	SortAmountDesc TransactionSort = "amount_desc"
	SortAmountAsc  TransactionSort = "amount_asc"
)

// ParseTransactionSort defaults to SortDateDesc.
func ParseTransactionSort(s string) TransactionSort {
	switch TransactionSort(s) {
	case SortDateAsc, SortAmountDesc, SortAmountAsc:
		return TransactionSort(s)
	}
	return SortDateDesc
}

// TransactionQuery is the transactions page filter state.
type TransactionQuery struct {
	Query string
	Type  TypeFilter
	From  string
	To    string
	Sort  TransactionSort
}

// SearchTransactions filters txs by date range, type and free text, then
// sorts them. The text matches case-insensitively against the category name,
// the note and the date.
func SearchTransactions(txs []core.NormalizedTransaction, q TransactionQuery) []core.NormalizedTransaction {
	out := Apply(txs, Filter{From: q.From, To: q.To, Type: q.Type})

	if s := strings.ToLower(strings.TrimSpace(q.Query)); s != "" {
		kept := out[:0]
		for _, t := range out {
			blob := strings.ToLower(t.CatName + " " + t.Note + " " + t.Date)
			if strings.Contains(blob, s) {
				kept = append(kept, t)
			}
		}
		out = kept
	}

	switch q.Sort {
	case SortDateAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	case SortAmountDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].AmountNum > out[j].AmountNum })
	case SortAmountAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].AmountNum < out[j].AmountNum })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	}
	return out
}

// TransactionStats summarizes a transactions page.
type TransactionStats struct {
	Income  float64
	Expense float64
	Net     float64
	Count   int
	Biggest *core.NormalizedTransaction
}

// ComputeTransactionStats folds txs the same way ComputeTotals does.
func ComputeTransactionStats(txs []core.NormalizedTransaction) TransactionStats {
	t := ComputeTotals(txs)
	return TransactionStats{
		Income:  t.Income,
		Expense: t.Expense,
		Net:     t.Net,
		Count:   t.Count,
		Biggest: Biggest(txs),
	}
}

// RecentTransactions returns at most n leading transactions.
func RecentTransactions(txs []core.NormalizedTransaction, n int) []core.NormalizedTransaction {
	if len(txs) <= n {
		return txs
	}
	return txs[:n]
}

// TopCategories returns at most n leading aggregates.
func TopCategories(cats []CategoryAggregate, n int) []CategoryAggregate {
	if len(cats) <= n {
		return cats
	}
	return cats[:n]
}

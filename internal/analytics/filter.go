package analytics

import "maplebudget/internal/core"

// TypeFilter narrows transactions by resolved category type.
type TypeFilter string

const (
	TypeAll     TypeFilter = "all"
	TypeIncome  TypeFilter = "income"
	TypeExpense TypeFilter = "expense"
)

// ParseTypeFilter defaults to TypeAll.
func ParseTypeFilter(s string) TypeFilter {
	switch TypeFilter(s) {
	case TypeIncome:
		return TypeIncome
	case TypeExpense:
		return TypeExpense
	}
	return TypeAll
}

// Filter holds inclusive YYYY-MM-DD bounds and a type filter. Empty bounds
// do not constrain.
type Filter struct {
	From string
	To   string
	Type TypeFilter
}

// Apply returns the matching transactions in their original order. The input
// slice is not modified. Dates are compared as strings, which is exact for the
// fixed-width ISO format.
func Apply(txs []core.NormalizedTransaction, f Filter) []core.NormalizedTransaction {
	out := make([]core.NormalizedTransaction, 0, len(txs))
	for _, t := range txs {
		if f.From != "" && t.Date < f.From {
			continue
		}
		if f.To != "" && t.Date > f.To {
			continue
		}
		if f.Type == TypeIncome && t.CatType != core.Income {
			continue
		}
		if f.Type == TypeExpense && t.CatType != core.Expense {
			continue
		}
		out = append(out, t)
	}
	return out
}

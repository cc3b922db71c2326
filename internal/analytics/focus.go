package analytics

import "maplebudget/internal/core"

// Focus selects which figure the charts follow.
type Focus string

const (
	FocusNet     Focus = "net"
	FocusIncome  Focus = "income"
	FocusExpense Focus = "expense"
)

// DonutSize is the maximum number of donut segments.
const DonutSize = 6

// ParseFocus defaults to FocusNet.
func ParseFocus(s string) Focus {
	switch Focus(s) {
	case FocusIncome:
		return FocusIncome
	case FocusExpense:
		return FocusExpense
	}
	return FocusNet
}

// FocusValues extracts the focused figure of each series point.
func FocusValues(series []SeriesPoint, f Focus) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		switch f {
		case FocusIncome:
			out[i] = p.Income
		case FocusExpense:
			out[i] = p.Expense
		default:
			out[i] = p.Net
		}
	}
	return out
}

// DonutCandidates keeps the categories the donut shows for f, at most
// DonutSize of them. The net focus shows the expense share.
func DonutCandidates(cats []CategoryAggregate, f Focus) []CategoryAggregate {
	want := core.Expense
	if f == FocusIncome {
		want = core.Income
	}
	var out []CategoryAggregate
	for _, c := range cats {
		if c.Type != want {
			continue
		}
		out = append(out, c)
		if len(out) == DonutSize {
			break
		}
	}
	return out
}

package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maplebudget/internal/core"
)

func ids(txs []core.NormalizedTransaction) []int64 {
	out := make([]int64, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func TestApply(t *testing.T) {
	cases := []struct {
		name string
		f    Filter
		want []int64
	}{
		{"no bounds", Filter{}, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"inclusive range", Filter{From: "2024-01-05", To: "2024-01-15"}, []int64{3, 4, 5}},
		{"from only", Filter{From: "2024-02-03"}, []int64{7, 8, 9}},
		{"to only", Filter{To: "2024-01-02"}, []int64{1, 2}},
		{"income", Filter{Type: TypeIncome}, []int64{1, 6, 9}},
		{"expense in range", Filter{From: "2024-02-01", Type: TypeExpense}, []int64{7, 8}},
		{"empty range", Filter{From: "2024-03-01", To: "2024-02-01"}, []int64{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ids(Apply(mixedSet(), c.f)))
		})
	}
}

func TestNarrowingNeverGrows(t *testing.T) {
	txs := mixedSet()
	bounds := []string{"", "2024-01-01", "2024-01-05", "2024-01-10", "2024-01-20", "2024-02-03", "2024-02-11", "2024-03-01"}

	for i, from := range bounds {
		for _, to := range bounds {
			wide := Apply(txs, Filter{From: from, To: to})
			for _, narrowerFrom := range bounds[i:] {
				if narrowerFrom == "" {
					continue
				}
				narrow := Apply(txs, Filter{From: narrowerFrom, To: to})
				require.LessOrEqual(t, len(narrow), len(wide), "from %q→%q to %q", from, narrowerFrom, to)
			}
		}
	}
}

func TestSearchTransactions(t *testing.T) {
	txs := mixedSet()
	txs[2].Note = "Supermarché du coin"

	got := SearchTransactions(txs, TransactionQuery{Query: "  SUPER ", Sort: SortDateDesc})
	assert.Equal(t, []int64{3}, ids(got))

	got = SearchTransactions(txs, TransactionQuery{Query: "2024-02", Sort: SortDateAsc})
	assert.Equal(t, []int64{7, 8, 9}, ids(got))

	got = SearchTransactions(txs, TransactionQuery{Type: TypeExpense, Sort: SortAmountDesc})
	assert.Equal(t, []int64{2, 7, 3, 4, 5, 8}, ids(got))

	got = SearchTransactions(txs, TransactionQuery{Query: "courses", Sort: SortAmountAsc})
	assert.Equal(t, []int64{5, 3}, ids(got))

	got = SearchTransactions(txs, TransactionQuery{To: "2024-01-05"})
	assert.Equal(t, []int64{3, 2, 1}, ids(got))

	assert.Equal(t, mixedSet()[0], txs[0], "input order must be kept")
}

func TestTransactionStats(t *testing.T) {
	s := ComputeTransactionStats(scenarioA())
	assert.Equal(t, 500.0, s.Income)
	assert.Equal(t, 150.0, s.Expense)
	assert.Equal(t, 350.0, s.Net)
	assert.Equal(t, 3, s.Count)
	require.NotNil(t, s.Biggest)
	assert.Equal(t, int64(2), s.Biggest.ID)
}

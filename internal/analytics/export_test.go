package analytics

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maplebudget/internal/core"
)

func TestEncodeCSVQuotesComma(t *testing.T) {
	tx := ntx(1, "2024-01-01", 100, 2, "Loyer", core.Expense)
	tx.Note = "rent,fee"

	got := EncodeCSV(ExportRows([]core.NormalizedTransaction{tx}))

	assert.Equal(t, "id,date,amount,category,type,note\n1,2024-01-01,100,Loyer,expense,\"rent,fee\"", got)
}

func TestEncodeCSVEscaping(t *testing.T) {
	rows := []ExportRow{
		{ID: 2, Date: "2024-01-02", Amount: 12.5, Category: `Sorties "resto"`, Type: core.Expense, Note: "ligne 1\nligne 2"},
		{ID: 3, Date: "2024-01-03", Amount: 0.1, Category: "Café; thé", Type: core.Expense, Note: " espace "},
	}
	got := EncodeCSV(rows)

	want := "id,date,amount,category,type,note\n" +
		"2,2024-01-02,12.5,\"Sorties \"\"resto\"\"\",expense,\"ligne 1\nligne 2\"\n" +
		"3,2024-01-03,0.1,Café; thé,expense, espace "
	assert.Equal(t, want, got)
}

func TestEncodeCSVEmpty(t *testing.T) {
	assert.Equal(t, "id,date,amount,category,type,note\n", EncodeCSV(nil))

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "id,date,amount,category,type,note\n", buf.String())
}

func TestCSVFilename(t *testing.T) {
	assert.Equal(t, "maplebudget-transactions-all-all.csv", CSVFilename(Period{}))
	assert.Equal(t, "maplebudget-transactions-2024-01-01-all.csv", CSVFilename(Period{From: "2024-01-01"}))
	assert.Equal(t, "maplebudget-transactions-2024-01-01-2024-01-31.csv", CSVFilename(Period{From: "2024-01-01", To: "2024-01-31"}))
}

func TestExecutiveSummary(t *testing.T) {
	txs := scenarioA()
	totals := ComputeTotals(txs)
	cats := AggregateCategories(txs, CategoryOptions{Sort: SortTotalDesc})
	ins := ComputeInsights(cats, txs, totals, Period{}, time.UTC)

	want := "MapleBudget — Executive Summary\n" +
		"Période: toutes dates\n" +
		"Revenus: 500,00\u00a0$\n" +
		"Dépenses: 150,00\u00a0$\n" +
		"Net: 350,00\u00a0$\n" +
		"Transactions: 3 • Jours actifs: 2\n" +
		"Top dépense: Loyer (100,00\u00a0$)\n" +
		"Top revenu: Salaire (500,00\u00a0$)"
	assert.Equal(t, want, ExecutiveSummary(Period{}, totals, ins))
}

func TestExecutiveSummaryWithoutCategories(t *testing.T) {
	got := ExecutiveSummary(Period{From: "2024-01-01"}, Totals{}, Insights{})
	assert.Contains(t, got, "Période: 2024-01-01 → …\n")
	assert.Contains(t, got, "Top dépense: —\n")
	assert.Contains(t, got, "Top revenu: —")
}

func TestPeriods(t *testing.T) {
	today := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, Period{From: "2024-02-24", To: "2024-03-01"}, PresetPeriod(today, 7))
	assert.Equal(t, Period{From: "2024-02-01", To: "2024-03-01"}, DefaultPeriod(today))
	assert.Equal(t, 90, MatchPreset(PresetPeriod(today, 90), today))
	assert.Equal(t, 0, MatchPreset(Period{From: "2024-01-01"}, today))

	assert.Equal(t, "Toutes dates", PeriodLabel(Period{}))
	assert.Equal(t, "Depuis 2024-01-01", PeriodLabel(Period{From: "2024-01-01"}))
	assert.Equal(t, "Jusqu’au 2024-01-31", PeriodLabel(Period{To: "2024-01-31"}))
	assert.Equal(t, "2024-01-01 → 2024-01-31", PeriodLabel(Period{From: "2024-01-01", To: "2024-01-31"}))
}

func TestDailyNet(t *testing.T) {
	today := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	got := DailyNet(scenarioA(), today, 4)
	assert.Equal(t, []float64{0, 400, -50, 0}, got)
	assert.Nil(t, DailyNet(scenarioA(), today, 0))
}

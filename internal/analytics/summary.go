package analytics

import (
	"fmt"
	"strings"

	"maplebudget/internal/core"
)

// ExecutiveSummary renders the plain-text KPI digest for p.
func ExecutiveSummary(p Period, t Totals, in Insights) string {
	period := "Période: toutes dates"
	if !p.IsZero() {
		period = fmt.Sprintf("Période: %s → %s", orEllipsis(p.From), orEllipsis(p.To))
	}

	topExpense := "Top dépense: —"
	if in.TopExpense != nil {
		topExpense = fmt.Sprintf("Top dépense: %s (%s)", in.TopExpense.Name, core.FormatMoney(in.TopExpense.Total))
	}
	topIncome := "Top revenu: —"
	if in.TopIncome != nil {
		topIncome = fmt.Sprintf("Top revenu: %s (%s)", in.TopIncome.Name, core.FormatMoney(in.TopIncome.Total))
	}

	return strings.Join([]string{
		"MapleBudget — Executive Summary",
		period,
		"Revenus: " + core.FormatMoney(t.Income),
		"Dépenses: " + core.FormatMoney(t.Expense),
		"Net: " + core.FormatMoney(t.Net),
		fmt.Sprintf("Transactions: %s • Jours actifs: %s", core.FormatNumber(t.Count), core.FormatNumber(t.ActiveDays)),
		topExpense,
		topIncome,
	}, "\n")
}

func orEllipsis(s string) string {
	if s == "" {
		return "…"
	}
	return s
}

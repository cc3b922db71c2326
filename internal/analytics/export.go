package analytics

import (
	"io"
	"strconv"
	"strings"

	"maplebudget/internal/core"
)

// CSVColumns are the export columns, in order.
var CSVColumns = []string{"id", "date", "amount", "category", "type", "note"}

// ExportRow is one exported transaction.
type ExportRow struct {
	ID       int64
	Date     string
	Amount   float64
	Category string
	Type     core.CategoryType
	Note     string
}

// Fields renders r in CSVColumns order, without escaping.
func (r ExportRow) Fields() []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Date,
		fnum(r.Amount),
		r.Category,
		string(r.Type),
		r.Note,
	}
}

// ExportRows projects txs onto the export columns.
func ExportRows(txs []core.NormalizedTransaction) []ExportRow {
	rows := make([]ExportRow, len(txs))
	for i, t := range txs {
		rows[i] = ExportRow{
			ID:       t.ID,
			Date:     t.Date,
			Amount:   t.AmountNum,
			Category: t.CatName,
			Type:     t.CatType,
			Note:     t.Note,
		}
	}
	return rows
}

// EncodeCSV renders rows as CSV text. Lines are joined with "\n" and there is
// no trailing newline; an empty set yields the header line followed by "\n".
func EncodeCSV(rows []ExportRow) string {
	header := strings.Join(CSVColumns, ",")
	if len(rows) == 0 {
		return header + "\n"
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, header)
	fields := make([]string, len(CSVColumns))
	for _, r := range rows {
		for i, f := range r.Fields() {
			fields[i] = escapeCSV(f)
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, "\n")
}

// WriteCSV writes EncodeCSV(rows) to w.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	_, err := io.WriteString(w, EncodeCSV(rows))
	return err
}

// escapeCSV quotes s only when it holds a comma, a double quote or a line feed.
func escapeCSV(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// CSVFilename names the dashboard export for p.
func CSVFilename(p Period) string {
	from, to := p.From, p.To
	if from == "" {
		from = "all"
	}
	if to == "" {
		to = "all"
	}
	return "maplebudget-transactions-" + from + "-" + to + ".csv"
}

// SummaryFilename names the executive summary download.
const SummaryFilename = "maplebudget-summary.txt"

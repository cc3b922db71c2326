// Package sheets copies an exported transaction set into a Google Sheets tab.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"maplebudget/internal/analytics"
	"maplebudget/internal/log"
)

// Config selects the spreadsheet, the tab and the service-account
// credentials. CredentialsJSON wins over CredentialsFile.
type Config struct {
	SpreadsheetID   string
	Tab             string
	CredentialsJSON string
	CredentialsFile string
	// RetryDelay is the first backoff after a 429; zero means 5s.
	RetryDelay time.Duration
}

// Result describes a completed export.
type Result struct {
	Range string
	Rows  int
}

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	tab           string
	retryDelay    time.Duration
	logger        *log.Logger
}

// New builds an Exporter authenticated with a service account. Extra options
// are appended after the credentials.
func New(ctx context.Context, cfg Config, logger *log.Logger, opts ...option.ClientOption) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	var base []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		base = append(base, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		base = append(base, option.WithCredentialsJSON(b))
	}
	base = append(base, option.WithScopes(gsheet.SpreadsheetsScope))

	svc, err := gsheet.NewService(ctx, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return newExporter(svc, cfg, logger), nil
}

func newExporter(svc *gsheet.Service, cfg Config, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	tab := cfg.Tab
	if tab == "" {
		tab = "Export"
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}
	return &Exporter{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		tab:           tab,
		retryDelay:    delay,
		logger:        logger.WithComponent(log.ComponentSheets),
	}
}

// Export replaces the contents of the tab with the header and rows, written
// as RAW values so dates and notes are not reinterpreted.
func (e *Exporter) Export(ctx context.Context, rows []analytics.ExportRow) (*Result, error) {
	clearRange := quoteTab(e.tab)
	err := e.withRetry(ctx, func() error {
		_, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("clear %s: %w", e.tab, err)
	}

	values := Values(rows)
	writeRange := fmt.Sprintf("%s!A1", quoteTab(e.tab))
	var updated string
	err = e.withRetry(ctx, func() error {
		resp, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, writeRange, &gsheet.ValueRange{Values: values}).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		updated = resp.UpdatedRange
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", e.tab, err)
	}

	e.logger.InfoContext(ctx, "Exported transactions to Google Sheets",
		log.FieldOperation, log.OpExport,
		log.FieldTxCount, len(rows),
		"range", updated)
	return &Result{Range: updated, Rows: len(rows)}, nil
}

func (e *Exporter) withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
				e.logger.WarnContext(ctx, "Rate limited by Sheets API, will retry", log.FieldError, err)
				return true
			}
			return false
		}),
		retry.Attempts(3),
		retry.Delay(e.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

// Values renders the header and rows in the CSV column order.
func Values(rows []analytics.ExportRow) [][]any {
	out := make([][]any, 0, len(rows)+1)
	header := make([]any, len(analytics.CSVColumns))
	for i, c := range analytics.CSVColumns {
		header[i] = c
	}
	out = append(out, header)
	for _, r := range rows {
		out = append(out, []any{r.ID, r.Date, r.Amount, r.Category, string(r.Type), r.Note})
	}
	return out
}

func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

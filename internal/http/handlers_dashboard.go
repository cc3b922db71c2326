package http

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"maplebudget/internal/analytics"
	"maplebudget/internal/api"
	"maplebudget/internal/log"
)

type dashboardView struct {
	Page
	Report         analytics.Report
	Preset         int
	Presets        []presetLink
	ResetDates     template.URL
	Refresh        template.URL
	MaxTotal       float64
	MoreCategories bool
	Query          template.URL
	SheetsEnabled  bool
}

// presetLink is a quick period button carrying the other filters along.
type presetLink struct {
	Days  int
	Query template.URL
}

// dashboardQuery encodes p with explicit bounds, so that exports and the
// Sheets action see the period the page showed.
func dashboardQuery(p analytics.Params) url.Values {
	q := url.Values{}
	q.Set(filtersMarker, "1")
	q.Set("from", p.Period.From)
	q.Set("to", p.Period.To)
	q.Set("type", string(p.Type))
	q.Set("group", string(p.GroupBy))
	q.Set("focus", string(p.Focus))
	q.Set("sort", string(p.Categories.Sort))
	if p.Categories.Search != "" {
		q.Set("q", p.Categories.Search)
	}
	if p.Categories.HideZero {
		q.Set("hide_zero", "1")
	}
	return q
}

// presetLinks swaps the bounds of q for each preset.
func presetLinks(q url.Values) []presetLink {
	links := make([]presetLink, 0, len(analytics.Presets))
	for _, days := range analytics.Presets {
		links = append(links, presetLink{Days: days, Query: withPreset(q, strconv.Itoa(days))})
	}
	return links
}

func withPreset(q url.Values, preset string) template.URL {
	out := cloneQuery(q)
	out.Del("from")
	out.Del("to")
	out.Set("preset", preset)
	return template.URL(out.Encode())
}

// refreshQuery asks for q again while bypassing the snapshot cache.
func refreshQuery(q url.Values) template.URL {
	out := cloneQuery(q)
	out.Set(refreshParam, "1")
	return template.URL(out.Encode())
}

func cloneQuery(q url.Values) url.Values {
	out := make(url.Values, len(q)+1)
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// report runs the analytics pipeline over the session snapshot.
func (s *Server) report(r *http.Request) (analytics.Report, error) {
	params := ParseDashboardParams(r.URL.Query(), s.now().In(s.loc), s.loc)
	snap, err := s.snapshot(r)
	if err != nil {
		return analytics.Run(nil, params), err
	}
	return analytics.Run(snap.Transactions, params), nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.showDashboard(w, r, http.StatusOK, "")
}

func (s *Server) showDashboard(w http.ResponseWriter, r *http.Request, status int, msg string) {
	ctx := r.Context()
	rep, err := s.report(r)
	if err != nil && msg == "" {
		log.FromContext(ctx).WarnContext(ctx, "Dashboard data unavailable",
			log.FieldOperation, log.OpLoad, log.FieldError, err)
		msg = api.Message(err)
	}

	q := dashboardQuery(rep.Params)
	v := dashboardView{
		Page:           s.page(r, "Dashboard", "dashboard"),
		Report:         rep,
		Preset:         analytics.MatchPreset(rep.Params.Period, s.now().In(s.loc)),
		Presets:        presetLinks(q),
		ResetDates:     withPreset(q, "all"),
		Refresh:        refreshQuery(q),
		MoreCategories: len(rep.Categories) > len(rep.Top),
		Query:          template.URL(q.Encode()),
		SheetsEnabled:  s.sheets != nil,
	}
	v.Error = msg
	for _, c := range rep.Top {
		if abs := max(c.Total, -c.Total); abs > v.MaxTotal {
			v.MaxTotal = abs
		}
	}

	s.render(w, r, status, "dashboard.html", v)
}

// handleDashboardCSV downloads the filtered transactions.
func (s *Server) handleDashboardCSV(w http.ResponseWriter, r *http.Request) {
	rep, err := s.report(r)
	if err != nil {
		s.failAPI(w, r, log.OpExport, err, s.showDashboard)
		return
	}
	writeCSV(w, r, analytics.CSVFilename(rep.Params.Period), analytics.ExportRows(rep.Transactions))
}

// handleDashboardSummary downloads the executive summary.
func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	rep, err := s.report(r)
	if err != nil {
		s.failAPI(w, r, log.OpExport, err, s.showDashboard)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(analytics.SummaryFilename))
	_, _ = w.Write([]byte(rep.Summary))
}

// handleDashboardSheets copies the filtered transactions to Google Sheets.
func (s *Server) handleDashboardSheets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.sheets == nil {
		s.fail(w, r, http.StatusServiceUnavailable, "Export Google Sheets non configuré.", s.showDashboard)
		return
	}
	rep, err := s.report(r)
	if err != nil {
		s.failAPI(w, r, log.OpExport, err, s.showDashboard)
		return
	}

	res, err := s.sheets.Export(ctx, analytics.ExportRows(rep.Transactions))
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Sheets export failed",
			log.FieldOperation, log.OpExport,
			log.FieldComponent, log.ComponentSheets,
			log.FieldError, err)
		s.fail(w, r, http.StatusBadGateway, "Export Google Sheets impossible: "+err.Error(), s.showDashboard)
		return
	}
	fields := log.NewFields().
		WithOperation(log.OpExport).
		WithPeriod(rep.Params.Period.From, rep.Params.Period.To)
	fields[log.FieldTxCount] = res.Rows
	fields["range"] = res.Range
	log.FromContext(ctx).InfoContext(ctx, "Sheets export completed", fields.ToSlice()...)

	q := dashboardQuery(rep.Params)
	q.Set("ok", "sheets")
	s.redirect(w, r, "/dashboard?"+q.Encode())
}

// writeCSV streams rows as a CSV attachment.
func writeCSV(w http.ResponseWriter, r *http.Request, filename string, rows []analytics.ExportRow) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(filename))
	if err := analytics.WriteCSV(w, rows); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "CSV write interrupted",
			log.FieldOperation, log.OpExport, log.FieldError, err)
	}
}

func attachment(filename string) string {
	return `attachment; filename="` + strings.ReplaceAll(filename, `"`, "") + `"`
}

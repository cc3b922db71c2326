package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"maplebudget/internal/analytics"
	"maplebudget/internal/api"
	"maplebudget/internal/core"
)

// maxFormBytes bounds a posted form.
const maxFormBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxFormBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a trimmed, sanitized string value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key was sent, even with an empty value.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	return p.formData != nil && p.formData.Has(key)
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseBody reads and parses the request body.
func parseBody(r *http.Request) (*RequestBodyParser, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	return p, nil
}

// sanitizeInput removes control characters other than tab and newlines, and
// trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s))
}

// queryDate returns the value of key when it is a valid YYYY-MM-DD date.
func queryDate(q url.Values, key string) string {
	v := strings.TrimSpace(q.Get(key))
	if core.ValidateDate(v) != nil {
		return ""
	}
	return v
}

// filtersMarker is sent by the dashboard filter form. Its presence means an
// absent hide_zero checkbox was unticked rather than never shown.
const filtersMarker = "filters"

// ParseDashboardParams reads the dashboard filter state. A preset wins over
// explicit bounds; "preset=all" clears both bounds. Without any date
// parameter the period defaults to the last 30 days. Zero categories are
// hidden until the filter form says otherwise.
func ParseDashboardParams(q url.Values, today time.Time, loc *time.Location) analytics.Params {
	p := analytics.Params{
		Type:    analytics.ParseTypeFilter(q.Get("type")),
		GroupBy: analytics.ParseGroupBy(q.Get("group")),
		Focus:   analytics.ParseFocus(q.Get("focus")),
		Categories: analytics.CategoryOptions{
			Search:   strings.TrimSpace(q.Get("q")),
			HideZero: parseHideZero(q),
			Sort:     analytics.ParseCategorySort(q.Get("sort")),
		},
		Location: loc,
	}

	switch preset := q.Get("preset"); {
	case preset == "all":
	case preset != "":
		days, err := strconv.Atoi(preset)
		if err != nil || days < 1 {
			days = analytics.DefaultPresetDays
		}
		p.Period = analytics.PresetPeriod(today, days)
	case q.Has("from") || q.Has("to"):
		p.Period = analytics.Period{From: queryDate(q, "from"), To: queryDate(q, "to")}
	default:
		p.Period = analytics.DefaultPeriod(today)
	}
	return p
}

func parseHideZero(q url.Values) bool {
	switch q.Get("hide_zero") {
	case "1", "on":
		return true
	case "0":
		return false
	}
	return !q.Has(filtersMarker)
}

// ParseTransactionQuery reads the transactions page filters.
func ParseTransactionQuery(q url.Values) analytics.TransactionQuery {
	return analytics.TransactionQuery{
		Query: strings.TrimSpace(q.Get("q")),
		Type:  analytics.ParseTypeFilter(q.Get("type")),
		From:  queryDate(q, "from"),
		To:    queryDate(q, "to"),
		Sort:  analytics.ParseTransactionSort(q.Get("sort")),
	}
}

// parseID reads a positive integer path or form value.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// parseCategoryForm validates the new category form.
func parseCategoryForm(p *RequestBodyParser) (api.CategoryInput, error) {
	var ve core.ValidationErrors
	in := api.CategoryInput{Name: p.Get("name")}
	if in.Name == "" {
		ve.Add("name", core.ErrEmptyName)
	}
	typ, err := core.ParseCategoryType(p.Get("type"))
	if err != nil {
		ve.Add("type", err)
	}
	in.Type = typ
	return in, ve.Err()
}

// parseTransactionForm validates the new transaction form. The note is
// optional and omitted when blank.
func parseTransactionForm(p *RequestBodyParser) (api.TransactionInput, error) {
	var ve core.ValidationErrors
	var in api.TransactionInput

	if d, err := core.ParseAmountInput(p.Get("amount")); err != nil {
		ve.Add("amount", err)
	} else {
		in.Amount = core.AmountFromDecimal(d)
	}
	in.Date = p.Get("date")
	if err := core.ValidateDate(in.Date); err != nil {
		ve.Add("date", err)
	}
	if id, err := parseID(p.Get("category_id")); err != nil {
		ve.Add("category_id", core.ErrMissingCategory)
	} else {
		in.CategoryID = id
	}
	if note := p.Get("note"); note != "" {
		in.Note = &note
	}
	return in, ve.Err()
}

// parseTransactionPatch reads the fields present in an edit form. A present
// but blank note clears it.
func parseTransactionPatch(p *RequestBodyParser) (api.TransactionPatch, error) {
	var ve core.ValidationErrors
	var patch api.TransactionPatch

	if p.Has("amount") {
		if d, err := core.ParseAmountInput(p.Get("amount")); err != nil {
			ve.Add("amount", err)
		} else {
			a := core.AmountFromDecimal(d)
			patch.Amount = &a
		}
	}
	if p.Has("date") {
		date := p.Get("date")
		if err := core.ValidateDate(date); err != nil {
			ve.Add("date", err)
		} else {
			patch.Date = &date
		}
	}
	if p.Has("category_id") {
		if id, err := parseID(p.Get("category_id")); err != nil {
			ve.Add("category_id", core.ErrMissingCategory)
		} else {
			patch.CategoryID = &id
		}
	}
	if p.Has("note") {
		note := p.Get("note")
		patch.Note = &note
	}
	return patch, ve.Err()
}

// parseSavedAmount accepts zero, unlike ParseAmountInput. Blank means zero.
func parseSavedAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, core.ErrInvalidAmount
	}
	return d.Round(2), nil
}

// parseGoalForm validates the new goal form.
func parseGoalForm(p *RequestBodyParser) (api.GoalInput, error) {
	title := p.Get("title")
	targetDate := p.Get("target_date")

	tf, cf := 0.0, -1.0
	target, err := core.ParseAmountInput(p.Get("target_amount"))
	if err == nil {
		tf, _ = target.Float64()
	}
	current, err := parseSavedAmount(p.Get("current_amount"))
	if err == nil {
		cf, _ = current.Float64()
	}
	if err := core.ValidateGoal(title, tf, cf, targetDate); err != nil {
		return api.GoalInput{}, err
	}
	return api.GoalInput{
		Title:         title,
		TargetAmount:  core.AmountFromDecimal(target),
		CurrentAmount: core.AmountFromDecimal(current),
		TargetDate:    targetDate,
	}, nil
}

// parseGoalPatch reads the fields present in a goal edit form.
func parseGoalPatch(p *RequestBodyParser) (api.GoalPatch, error) {
	var ve core.ValidationErrors
	var patch api.GoalPatch

	if p.Has("title") {
		title := p.Get("title")
		if title == "" {
			ve.Add("title", core.ErrEmptyTitle)
		} else {
			patch.Title = &title
		}
	}
	if p.Has("target_amount") {
		if d, err := core.ParseAmountInput(p.Get("target_amount")); err != nil {
			ve.Add("target_amount", err)
		} else {
			a := core.AmountFromDecimal(d)
			patch.TargetAmount = &a
		}
	}
	if p.Has("current_amount") {
		if d, err := parseSavedAmount(p.Get("current_amount")); err != nil {
			ve.Add("current_amount", err)
		} else {
			a := core.AmountFromDecimal(d)
			patch.CurrentAmount = &a
		}
	}
	if p.Has("target_date") {
		date := p.Get("target_date")
		if err := core.ValidateDate(date); err != nil {
			ve.Add("target_date", err)
		} else {
			patch.TargetDate = &date
		}
	}
	return patch, ve.Err()
}

// Field messages shown for validation failures.
var fieldMessages = map[string]string{
	"amount":         "Montant invalide (doit être > 0).",
	"date":           "Date invalide (AAAA-MM-JJ).",
	"category_id":    "Choisis une catégorie.",
	"name":           "Nom de catégorie requis.",
	"type":           "Type de catégorie invalide.",
	"title":          "Titre requis.",
	"target_amount":  "Montant cible invalide (doit être > 0).",
	"current_amount": "Montant déjà épargné invalide.",
	"target_date":    "Date cible invalide (AAAA-MM-JJ).",
}

// validationMessage turns field errors into one French sentence per field.
func validationMessage(err error) string {
	if !core.IsValidationError(err) {
		return "Données invalides."
	}
	errs := []error{err}
	var ve *core.ValidationErrors
	if errors.As(err, &ve) {
		errs = ve.Errors
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		var fe *core.FieldError
		if errors.As(e, &fe) {
			if m, ok := fieldMessages[fe.Field]; ok {
				msgs = append(msgs, m)
				continue
			}
		}
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, " ")
}

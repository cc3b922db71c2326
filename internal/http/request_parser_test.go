package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"maplebudget/internal/analytics"
	"maplebudget/internal/core"
)

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	p, err := parseBody(req)
	if err != nil {
		t.Fatalf("parseBody: %v", err)
	}
	return p
}

func TestRequestBodyParser_Form(t *testing.T) {
	p := newParser(t, "application/x-www-form-urlencoded", "amount=12%2C50&note=+caf%C3%A9+&empty=")

	if p.IsJSON() {
		t.Error("form body reported as JSON")
	}
	if got := p.Get("amount"); got != "12,50" {
		t.Errorf("amount = %q", got)
	}
	if got := p.Get("note"); got != "café" {
		t.Errorf("note = %q, want trimmed", got)
	}
	if !p.Has("empty") || p.Has("missing") {
		t.Error("Has does not distinguish blank from missing")
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	p := newParser(t, "application/json", `{"amount": 12.5, "category_id": 3, "note": "a\u0007b"}`)

	if !p.IsJSON() {
		t.Fatal("JSON body not detected")
	}
	if got := p.Get("amount"); got != "12.5" {
		t.Errorf("amount = %q", got)
	}
	if got := p.Get("category_id"); got != "3" {
		t.Errorf("category_id = %q", got)
	}
	if got := p.Get("note"); got != "ab" {
		t.Errorf("note = %q, want control characters removed", got)
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":`))
	if _, err := parseBody(req); err == nil {
		t.Fatal("expected an error for truncated JSON")
	}
}

func TestParseDashboardParams(t *testing.T) {
	today := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		query string
		want  analytics.Period
	}{
		{"default last 30 days", "", analytics.Period{From: "2024-02-15", To: "2024-03-15"}},
		{"preset 7", "preset=7", analytics.Period{From: "2024-03-09", To: "2024-03-15"}},
		{"preset wins over dates", "preset=7&from=2023-01-01", analytics.Period{From: "2024-03-09", To: "2024-03-15"}},
		{"invalid preset", "preset=abc", analytics.Period{From: "2024-02-15", To: "2024-03-15"}},
		{"all clears bounds", "preset=all", analytics.Period{}},
		{"explicit bounds", "from=2024-01-01&to=2024-01-31", analytics.Period{From: "2024-01-01", To: "2024-01-31"}},
		{"open end", "from=2024-01-01", analytics.Period{From: "2024-01-01"}},
		{"invalid date dropped", "from=2024-13-01&to=2024-01-31", analytics.Period{To: "2024-01-31"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got := ParseDashboardParams(q, today, time.UTC)
			if got.Period != tt.want {
				t.Errorf("Period = %+v, want %+v", got.Period, tt.want)
			}
		})
	}
}

func TestParseDashboardParams_Options(t *testing.T) {
	q := url.Values{
		"type": {"expense"}, "group": {"month"}, "focus": {"income"},
		"sort": {"name_asc"}, "hide_zero": {"on"}, "q": {"  loy "},
	}
	p := ParseDashboardParams(q, time.Now(), time.UTC)

	if p.Type != analytics.TypeExpense || p.GroupBy != analytics.GroupMonth || p.Focus != analytics.FocusIncome {
		t.Errorf("params = %+v", p)
	}
	if p.Categories.Sort != analytics.SortNameAsc || !p.Categories.HideZero || p.Categories.Search != "loy" {
		t.Errorf("category options = %+v", p.Categories)
	}

	p = ParseDashboardParams(url.Values{"type": {"bogus"}, "sort": {"bogus"}}, time.Now(), time.UTC)
	if p.Type != analytics.TypeAll || p.Categories.Sort != analytics.SortTotalDesc {
		t.Errorf("unknown values not defaulted: %+v", p)
	}
}

func TestParseDashboardParams_HideZero(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"type=expense", true},
		{"filters=1", false},
		{"filters=1&hide_zero=1", true},
		{"filters=1&hide_zero=on", true},
		{"hide_zero=0", false},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		if got := ParseDashboardParams(q, time.Now(), time.UTC).Categories.HideZero; got != tt.want {
			t.Errorf("ParseDashboardParams(%q).HideZero = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestParseTransactionQuery(t *testing.T) {
	q, _ := url.ParseQuery("q=+loyer+&type=income&from=2024-01-01&to=nope&sort=amount_asc")
	got := ParseTransactionQuery(q)
	want := analytics.TransactionQuery{
		Query: "loyer",
		Type:  analytics.TypeIncome,
		From:  "2024-01-01",
		Sort:  analytics.SortAmountAsc,
	}
	if got != want {
		t.Errorf("ParseTransactionQuery = %+v, want %+v", got, want)
	}
}

func TestParseTransactionForm(t *testing.T) {
	p := newParser(t, "application/x-www-form-urlencoded", "amount=12,5&date=2024-03-10&category_id=4&note=")
	in, err := parseTransactionForm(p)
	if err != nil {
		t.Fatalf("parseTransactionForm: %v", err)
	}
	if in.Amount.Float() != 12.5 || in.Date != "2024-03-10" || in.CategoryID != 4 {
		t.Errorf("input = %+v", in)
	}
	if in.Note != nil {
		t.Errorf("blank note sent as %q", *in.Note)
	}

	p = newParser(t, "application/x-www-form-urlencoded", "amount=0&date=10/03/2024")
	_, err = parseTransactionForm(p)
	if !core.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	msg := validationMessage(err)
	for _, want := range []string{"Montant invalide", "Date invalide", "Choisis une catégorie."} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestParseTransactionPatch(t *testing.T) {
	p := newParser(t, "application/x-www-form-urlencoded", "note=&date=2024-03-11")
	patch, err := parseTransactionPatch(p)
	if err != nil {
		t.Fatalf("parseTransactionPatch: %v", err)
	}
	if patch.Amount != nil || patch.CategoryID != nil {
		t.Errorf("absent fields set: %+v", patch)
	}
	if patch.Note == nil || *patch.Note != "" {
		t.Error("blank note should clear the note")
	}
	if patch.Date == nil || *patch.Date != "2024-03-11" {
		t.Errorf("date = %v", patch.Date)
	}
}

func TestParseCategoryForm(t *testing.T) {
	in, err := parseCategoryForm(newParser(t, "application/x-www-form-urlencoded", "name=Loyer&type=expense"))
	if err != nil || in.Name != "Loyer" || in.Type != core.Expense {
		t.Errorf("parseCategoryForm = %+v, %v", in, err)
	}

	_, err = parseCategoryForm(newParser(t, "application/x-www-form-urlencoded", "name=&type=other"))
	msg := validationMessage(err)
	if !strings.Contains(msg, "Nom de catégorie requis.") || !strings.Contains(msg, "Type de catégorie invalide.") {
		t.Errorf("message = %q", msg)
	}
}

func TestParseGoalForm(t *testing.T) {
	in, err := parseGoalForm(newParser(t, "application/x-www-form-urlencoded",
		"title=Voyage&target_amount=1000&current_amount=&target_date=2024-12-31"))
	if err != nil {
		t.Fatalf("parseGoalForm: %v", err)
	}
	if in.TargetAmount.Float() != 1000 || in.CurrentAmount.Float() != 0 {
		t.Errorf("amounts = %s / %s", in.TargetAmount, in.CurrentAmount)
	}

	_, err = parseGoalForm(newParser(t, "application/x-www-form-urlencoded",
		"title=&target_amount=-5&current_amount=-1&target_date="))
	msg := validationMessage(err)
	for _, want := range []string{"Titre requis.", "Montant cible invalide", "Montant déjà épargné invalide.", "Date cible invalide"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestParseSavedAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "0", false},
		{"0", "0", false},
		{"12,345", "12.35", false},
		{"-1", "", true},
		{"abc", "", true},
	}
	for _, tt := range tests {
		got, err := parseSavedAmount(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSavedAmount(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got.String() != tt.want {
			t.Errorf("parseSavedAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestValidationMessageFallback(t *testing.T) {
	if got := validationMessage(nil); got != "Données invalides." {
		t.Errorf("validationMessage(nil) = %q", got)
	}
}

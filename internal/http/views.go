package http

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"

	"maplebudget/internal/analytics"
	"maplebudget/internal/core"
	"maplebudget/internal/log"
	"maplebudget/internal/session"
	appweb "maplebudget/web"
)

// shadeCount is the number of category bar tones defined in app.css.
const shadeCount = 6

var templateFuncs = template.FuncMap{
	"money":  core.FormatMoney,
	"amount": func(a core.Amount) string { return core.FormatMoney(a.Float()) },
	"num":    core.FormatNumber,
	"abs":    math.Abs,
	"pct": func(frac float64) string {
		return strconv.FormatFloat(frac*100, 'f', 1, 64) + "%"
	},
	"progress": func(current, target core.Amount) float64 {
		return core.GoalProgress(current.Float(), target.Float())
	},
	"percent": func(p float64) string {
		return strconv.FormatFloat(math.Round(p), 'f', 0, 64) + "%"
	},
	"width": func(v, max float64) string {
		if max == 0 {
			return "0%"
		}
		w := math.Abs(v) / math.Abs(max) * 100
		return strconv.FormatFloat(math.Min(math.Max(w, 0), 100), 'f', 1, 64) + "%"
	},
	"shade": func(name string) string {
		return fmt.Sprintf("shade-%d", analytics.Shade(name, shadeCount))
	},
	"opacity": func(frac float64) string {
		return strconv.FormatFloat(0.15+frac*0.85, 'f', 3, 64)
	},
	"f": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	},
	"sub": func(a, b float64) float64 { return a - b },
	"isIncome": func(t core.CategoryType) bool { return t == core.Income },
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(appweb.Templates(), "*.html")
}

// Page is the part of every view model the layout reads.
type Page struct {
	Title    string
	Active   string
	LoggedIn bool
	Subject  string
	Error    string
	Notice   string
}

func (s *Server) page(r *http.Request, title, active string) Page {
	sess := session.FromContext(r.Context())
	p := Page{
		Title:    title,
		Active:   active,
		LoggedIn: session.LoggedIn(sess),
		Notice:   noticeText(r.URL.Query().Get("ok")),
	}
	if sess != nil {
		p.Subject = sess.Subject
	}
	return p
}

// render executes name into a buffer first so that a template error never
// leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender,
			"template", name,
			"error_type", log.ErrorTypeInternal)
		http.Error(w, "Erreur d'affichage", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderPartial renders a named template without the HTTP status dance; used
// for HTMX fragments built with the response builder.
func (s *Server) renderPartial(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Notices shown after a redirect, keyed by the ok query parameter.
var notices = map[string]string{
	"category":   "Catégorie créée.",
	"tx":         "Transaction ajoutée.",
	"tx-updated": "Transaction modifiée.",
	"tx-deleted": "Transaction supprimée.",
	"goal":       "Objectif créé.",
	"goal-saved": "Objectif mis à jour.",
	"deposit":    "Dépôt enregistré.",
	"goal-gone":  "Objectif supprimé.",
	"demo":       "Données de démo créées.",
	"registered": "Compte créé. Tu peux te connecter.",
	"logout":     "Déconnecté.",
	"sheets":     "Export Google Sheets terminé.",
}

func noticeText(key string) string {
	return notices[key]
}

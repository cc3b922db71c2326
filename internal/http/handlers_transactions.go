package http

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"maplebudget/internal/amqp"
	"maplebudget/internal/analytics"
	"maplebudget/internal/api"
	"maplebudget/internal/core"
	"maplebudget/internal/log"
	"maplebudget/internal/session"
)

// transactionsCSVFilename is the transactions page export name.
const transactionsCSVFilename = "transactions.csv"

type transactionsView struct {
	Page
	Categories []core.Category
	Filter     analytics.TransactionQuery
	Items      []core.NormalizedTransaction
	Stats      analytics.TransactionStats
	Total      int
	Editing    *core.NormalizedTransaction
	Today      string
	Query      template.URL
	Refresh    template.URL
}

// transactionQuery encodes the filters so the export matches the list.
func transactionQuery(f analytics.TransactionQuery) url.Values {
	q := url.Values{}
	for k, v := range map[string]string{
		"q": f.Query, "type": string(f.Type), "from": f.From, "to": f.To, "sort": string(f.Sort),
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	s.showTransactions(w, r, http.StatusOK, "")
}

func (s *Server) showTransactions(w http.ResponseWriter, r *http.Request, status int, msg string) {
	ctx := r.Context()
	q := r.URL.Query()
	v := transactionsView{
		Page:   s.page(r, "Transactions", "transactions"),
		Filter: ParseTransactionQuery(q),
		Today:  core.FormatDate(s.now().In(s.loc)),
	}
	v.Error = msg
	tq := transactionQuery(v.Filter)
	v.Query = template.URL(tq.Encode())
	v.Refresh = refreshQuery(tq)

	snap, err := s.snapshot(r)
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Transactions unavailable",
			log.FieldOperation, log.OpList, log.FieldError, err)
		if v.Error == "" {
			v.Error = api.Message(err)
		}
		s.render(w, r, status, "transactions.html", v)
		return
	}

	v.Categories = snap.Categories
	v.Total = len(snap.Transactions)
	v.Items = analytics.SearchTransactions(snap.Transactions, v.Filter)
	v.Stats = analytics.ComputeTransactionStats(v.Items)
	if id, err := parseID(q.Get("edit")); err == nil {
		v.Editing = findTransaction(snap.Transactions, id)
	}

	s.render(w, r, status, "transactions.html", v)
}

func findTransaction(txs []core.NormalizedTransaction, id int64) *core.NormalizedTransaction {
	for i := range txs {
		if txs[i].ID == id {
			t := txs[i]
			return &t
		}
	}
	return nil
}

// handleTransactionsCSV downloads the transactions matching the page filters.
func (s *Server) handleTransactionsCSV(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.failAPI(w, r, log.OpExport, err, s.showTransactions)
		return
	}
	items := analytics.SearchTransactions(snap.Transactions, ParseTransactionQuery(r.URL.Query()))
	writeCSV(w, r, transactionsCSVFilename, analytics.ExportRows(items))
}

// knownCategories returns the categories of the cached snapshot without
// fetching; used to name entities in event summaries.
func (s *Server) knownCategories(r *http.Request) []core.Category {
	sess := session.FromContext(r.Context())
	if sess == nil {
		return nil
	}
	if snap, ok := s.snapshots.Get(sess.ID); ok && snap != nil {
		return snap.Categories
	}
	return nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "Requête invalide.", s.showTransactions)
		return
	}
	in, err := parseTransactionForm(p)
	if err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, validationMessage(err), s.showTransactions)
		return
	}

	cats := s.knownCategories(r)
	tx, err := s.client(r).CreateTransaction(r.Context(), in)
	if err != nil {
		s.failAPI(w, r, log.OpCreate, err, s.showTransactions)
		return
	}
	s.mutated(r, amqp.TransactionCreated, tx.ID, transactionSummary(*tx, cats))
	s.redirect(w, r, "/transactions?ok=tx")
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, http.StatusNotFound, "Transaction introuvable.", s.showTransactions)
		return
	}
	p, err := parseBody(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "Requête invalide.", s.showTransactions)
		return
	}
	patch, err := parseTransactionPatch(p)
	if err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, validationMessage(err), s.showTransactions)
		return
	}

	cats := s.knownCategories(r)
	tx, err := s.client(r).UpdateTransaction(r.Context(), id, patch)
	if err != nil {
		s.failAPI(w, r, log.OpUpdate, err, s.showTransactions)
		return
	}
	s.mutated(r, amqp.TransactionUpdated, tx.ID, transactionSummary(*tx, cats))
	s.redirect(w, r, "/transactions?ok=tx-updated")
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, http.StatusNotFound, "Transaction introuvable.", s.showTransactions)
		return
	}
	if _, err := s.client(r).DeleteTransaction(r.Context(), id); err != nil {
		s.failAPI(w, r, log.OpDelete, err, s.showTransactions)
		return
	}
	s.mutated(r, amqp.TransactionDeleted, id, fmt.Sprintf("Transaction #%d supprimée", id))
	s.redirect(w, r, "/transactions?ok=tx-deleted")
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "Requête invalide.", s.showTransactions)
		return
	}
	in, err := parseCategoryForm(p)
	if err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, validationMessage(err), s.showTransactions)
		return
	}
	cat, err := s.client(r).CreateCategory(r.Context(), in)
	if err != nil {
		s.failAPI(w, r, log.OpCreate, err, s.showTransactions)
		return
	}
	s.mutated(r, amqp.CategoryCreated, cat.ID, categorySummary(*cat))
	s.redirect(w, r, returnPath(p.Get("return"), "/transactions")+"?ok=category")
}

// returnPath accepts only local absolute paths without a query.
func returnPath(p, fallback string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.ContainsAny(p, "?#\\") {
		return fallback
	}
	return p
}

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"maplebudget/internal/core"
	"maplebudget/internal/log"
	"maplebudget/internal/middleware/trace"
)

const testToken = "tok-123"

// fakeAPI is an in-memory budgeting API.
type fakeAPI struct {
	mu         sync.Mutex
	categories []core.Category
	txs        []core.Transaction
	goals      []core.Goal
	nextID     int64

	failPath   map[string]int // path -> status to return
	badPlanFor map[int64]bool
	lastAuth   string
	lastReqID  string
	lastQuery  string
	bodies     []map[string]any
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 100, failPath: map[string]int{}, badPlanFor: map[int64]bool{}}
}

func (f *fakeAPI) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("username") != "a@b.ca" || r.PostForm.Get("password") != "secret" {
			http.Error(w, `{"detail":"Incorrect"}`, http.StatusUnauthorized)
			return
		}
		f.writeJSON(w, core.TokenResponse{AccessToken: testToken, TokenType: "bearer"})
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var c Credentials
		_ = json.NewDecoder(r.Body).Decode(&c)
		if c.Email == "taken@b.ca" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"Email already registered"}`))
			return
		}
		f.writeJSON(w, core.User{ID: 1, Email: c.Email})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		f.writeJSON(w, core.User{ID: 1, Email: "a@b.ca"})
	})
	mux.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.writeJSON(w, f.categories)
	})
	mux.HandleFunc("POST /categories", func(w http.ResponseWriter, r *http.Request) {
		var in CategoryInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextID++
		c := core.Category{ID: f.nextID, Name: in.Name, Type: in.Type}
		f.categories = append(f.categories, c)
		f.writeJSON(w, c)
	})
	mux.HandleFunc("GET /transactions", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.writeJSON(w, f.txs)
	})
	mux.HandleFunc("POST /transactions", func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		_ = json.NewDecoder(r.Body).Decode(&raw)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.bodies = append(f.bodies, raw)
		f.nextID++
		catID := int64(raw["category_id"].(float64))
		note, _ := raw["note"].(string)
		tx := core.Transaction{
			ID:         f.nextID,
			Amount:     core.NewAmount(raw["amount"].(float64)),
			Date:       raw["date"].(string),
			Note:       &note,
			CategoryID: &catID,
		}
		f.txs = append(f.txs, tx)
		f.writeJSON(w, tx)
	})
	mux.HandleFunc("PUT /transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		_ = json.NewDecoder(r.Body).Decode(&raw)
		f.mu.Lock()
		f.bodies = append(f.bodies, raw)
		f.mu.Unlock()
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		f.writeJSON(w, core.Transaction{ID: id, Amount: core.NewAmount(1), Date: "2024-01-01"})
	})
	mux.HandleFunc("DELETE /transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		f.writeJSON(w, DeleteResult{Deleted: true, ID: id})
	})
	mux.HandleFunc("GET /dashboard", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastQuery = r.URL.RawQuery
		f.mu.Unlock()
		f.writeJSON(w, map[string]any{
			"income_total": 500, "expense_total": "150.00", "net": 350, "tx_count": 3,
			"by_category": []map[string]any{{"category_id": 1, "name": "Salaire", "type": "income", "total": 500, "count": 1}},
		})
	})
	mux.HandleFunc("GET /goals", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.writeJSON(w, f.goals)
	})
	mux.HandleFunc("GET /goals/{id}/plan", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if f.badPlanFor[id] {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		f.writeJSON(w, core.GoalPlan{GoalID: id, MonthsRemaining: 5, MonthlyRequired: core.NewAmount(200)})
	})
	mux.HandleFunc("GET /plain", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("pong"))
	})
	mux.HandleFunc("GET /empty-error", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastAuth = r.Header.Get("Authorization")
		f.lastReqID = r.Header.Get(trace.HeaderRequestID)
		status := f.failPath[r.Method+" "+r.URL.Path]
		f.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			_, _ = fmt.Fprintf(w, "fail %s", strings.ToLower(http.StatusText(status)))
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func newTestClient(t *testing.T, f *fakeAPI, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:    srv.URL + "/",
		HTTPClient: srv.Client(),
		Tokens:     NewMemoryTokenStore(token),
		Logger:     log.Discard(),
	})
}

func ptr[T any](v T) *T { return &v }

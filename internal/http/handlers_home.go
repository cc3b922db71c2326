package http

import (
	"fmt"
	"net/http"

	"maplebudget/internal/amqp"
	"maplebudget/internal/analytics"
	"maplebudget/internal/api"
	"maplebudget/internal/core"
	"maplebudget/internal/log"
	"maplebudget/internal/storage"
)

// Home page sizes and the guided demo thresholds.
const (
	sparkDays    = 14
	homeRecent   = 6
	homeActivity = 6
	demoMinCats  = 2
	demoMinTxs   = 3
)

type demoStep struct {
	Label string
	Done  bool
}

type homeView struct {
	Page
	Online        bool
	APIError      string
	APIBase       string
	Dashboard     *core.DashboardSummary
	CategoryCount int
	TxCount       int
	Spark         *analytics.AreaChart
	Recent        []core.NormalizedTransaction
	Activity      []storage.Activity
	Steps         []demoStep
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.showHome(w, r, http.StatusOK, "")
}

func (s *Server) showHome(w http.ResponseWriter, r *http.Request, status int, msg string) {
	ctx := r.Context()
	ov := s.client(r).Probe(ctx)

	v := homeView{
		Page:     s.page(r, "Accueil", "home"),
		Online:   ov.Online,
		APIBase:  s.api.BaseURL(),
		Activity: s.recentActivity(r, homeActivity),
	}
	v.Error = msg
	if !ov.Online {
		v.APIError = api.Message(ov.Err)
		log.FromContext(ctx).WarnContext(ctx, "Budgeting API offline", log.FieldError, ov.Err)
	}

	if ov.Online {
		txs := core.Normalize(ov.Transactions, ov.Categories)
		v.Dashboard = ov.Dashboard
		v.CategoryCount = len(ov.Categories)
		v.TxCount = len(txs)
		v.Spark = analytics.Sparkline(analytics.DailyNet(txs, s.now().In(s.loc), sparkDays))
		v.Recent = analytics.RecentTransactions(txs, homeRecent)
	}

	cats := v.CategoryCount >= demoMinCats
	tx := v.TxCount >= demoMinTxs
	v.Steps = []demoStep{
		{Label: "Créer des catégories (≥ 2)", Done: cats},
		{Label: "Ajouter des transactions (≥ 3)", Done: tx},
		{Label: "Montrer le Dashboard", Done: cats && tx},
	}

	s.render(w, r, status, "home.html", v)
}

// handleSeedDemo creates the demo dataset. What was created before a failure
// stays and is reported in the feed.
func (s *Server) handleSeedDemo(w http.ResponseWriter, r *http.Request) {
	res, err := s.client(r).SeedDemo(r.Context(), s.now().In(s.loc))
	if res != nil {
		for _, c := range res.CreatedCategories {
			s.mutated(r, amqp.CategoryCreated, c.ID, categorySummary(c))
		}
		for _, t := range res.CreatedTransactions {
			s.mutated(r, amqp.TransactionCreated, t.ID, transactionSummary(t, res.CreatedCategories))
		}
	}
	if err != nil {
		s.failAPI(w, r, "seed_demo", err, s.showHome)
		return
	}

	s.mutated(r, amqp.DemoSeeded, 0, fmt.Sprintf("Démo: %d catégorie(s), %d transaction(s)",
		len(res.CreatedCategories), len(res.CreatedTransactions)))
	s.redirect(w, r, "/?ok=demo")
}

func categorySummary(c core.Category) string {
	return fmt.Sprintf("Catégorie %s (%s)", c.Name, c.Type)
}

// transactionSummary names the transaction's category when cats knows it.
func transactionSummary(t core.Transaction, cats []core.Category) string {
	n := core.Normalize([]core.Transaction{t}, cats)[0]
	return fmt.Sprintf("%s • %s • %s", n.CatName, core.FormatMoney(n.AmountNum), n.Date)
}

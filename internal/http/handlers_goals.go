package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"maplebudget/internal/amqp"
	"maplebudget/internal/api"
	"maplebudget/internal/core"
	"maplebudget/internal/log"
)

type goalsView struct {
	Page
	Goals    []api.GoalWithPlan
	Targets  float64
	Current  float64
	Progress float64
	Editing  *core.Goal
	Today    string
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	s.showGoals(w, r, http.StatusOK, "")
}

func (s *Server) showGoals(w http.ResponseWriter, r *http.Request, status int, msg string) {
	ctx := r.Context()
	v := goalsView{
		Page:  s.page(r, "Objectifs", "goals"),
		Today: core.FormatDate(s.now().In(s.loc)),
	}
	v.Error = msg

	goals, err := s.client(r).LoadGoals(ctx)
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Goals unavailable",
			log.FieldOperation, log.OpList, log.FieldError, err)
		if v.Error == "" {
			v.Error = api.Message(err)
		}
		s.render(w, r, status, "goals.html", v)
		return
	}

	v.Goals = goals
	plain := make([]core.Goal, len(goals))
	for i, g := range goals {
		plain[i] = g.Goal
	}
	v.Targets, v.Current = core.GoalTotals(plain)
	v.Progress = core.GoalProgress(v.Current, v.Targets)
	if id, err := parseID(r.URL.Query().Get("edit")); err == nil {
		v.Editing = findGoal(plain, id)
	}

	s.render(w, r, status, "goals.html", v)
}

func findGoal(goals []core.Goal, id int64) *core.Goal {
	for i := range goals {
		if goals[i].ID == id {
			g := goals[i]
			return &g
		}
	}
	return nil
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "Requête invalide.", s.showGoals)
		return
	}
	in, err := parseGoalForm(p)
	if err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, validationMessage(err), s.showGoals)
		return
	}
	g, err := s.client(r).CreateGoal(r.Context(), in)
	if err != nil {
		s.failAPI(w, r, log.OpCreate, err, s.showGoals)
		return
	}
	s.mutated(r, amqp.GoalCreated, g.ID, goalSummary(*g))
	s.redirect(w, r, "/goals?ok=goal")
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, http.StatusNotFound, "Objectif introuvable.", s.showGoals)
		return
	}
	p, err := parseBody(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "Requête invalide.", s.showGoals)
		return
	}
	patch, err := parseGoalPatch(p)
	if err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, validationMessage(err), s.showGoals)
		return
	}
	g, err := s.client(r).UpdateGoal(r.Context(), id, patch)
	if err != nil {
		s.failAPI(w, r, log.OpUpdate, err, s.showGoals)
		return
	}
	s.mutated(r, amqp.GoalUpdated, g.ID, goalSummary(*g))
	s.redirect(w, r, "/goals?ok=goal-saved")
}

// handleDepositGoal adds a positive amount to a goal's saved amount.
func (s *Server) handleDepositGoal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, http.StatusNotFound, "Objectif introuvable.", s.showGoals)
		return
	}
	p, err := parseBody(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "Requête invalide.", s.showGoals)
		return
	}
	dep, err := core.ParseAmountInput(p.Get("amount"))
	if err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, "Montant du dépôt invalide (doit être > 0).", s.showGoals)
		return
	}

	c := s.client(r)
	goals, err := c.ListGoals(ctx)
	if err != nil {
		s.failAPI(w, r, log.OpRead, err, s.showGoals)
		return
	}
	g := findGoal(goals, id)
	if g == nil {
		s.fail(w, r, http.StatusNotFound, "Objectif introuvable.", s.showGoals)
		return
	}

	current, err := g.CurrentAmount.Decimal()
	if err != nil {
		current = decimal.Zero
	}
	next := core.AmountFromDecimal(current.Add(dep))
	updated, err := c.UpdateGoal(ctx, id, api.GoalPatch{CurrentAmount: &next})
	if err != nil {
		s.failAPI(w, r, log.OpUpdate, err, s.showGoals)
		return
	}

	depF, _ := dep.Float64()
	s.mutated(r, amqp.GoalUpdated, updated.ID,
		fmt.Sprintf("Dépôt %s sur %s", core.FormatMoney(depF), updated.Title))
	s.redirect(w, r, "/goals?ok=deposit")
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, http.StatusNotFound, "Objectif introuvable.", s.showGoals)
		return
	}
	if _, err := s.client(r).DeleteGoal(r.Context(), id); err != nil {
		s.failAPI(w, r, log.OpDelete, err, s.showGoals)
		return
	}
	s.mutated(r, amqp.GoalDeleted, id, fmt.Sprintf("Objectif #%d supprimé", id))
	s.redirect(w, r, "/goals?ok=goal-gone")
}

func goalSummary(g core.Goal) string {
	return fmt.Sprintf("Objectif %s • %s / %s", g.Title,
		core.FormatMoney(g.CurrentAmount.Float()), core.FormatMoney(g.TargetAmount.Float()))
}

package api

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"maplebudget/internal/core"
)

// GoalInput is the body of POST /goals.
type GoalInput struct {
	Title         string      `json:"title"`
	TargetAmount  core.Amount `json:"target_amount"`
	CurrentAmount core.Amount `json:"current_amount"`
	TargetDate    string      `json:"target_date"`
}

// GoalPatch is the body of PUT /goals/{id}. Nil fields are left unchanged.
type GoalPatch struct {
	Title         *string      `json:"title,omitempty"`
	TargetAmount  *core.Amount `json:"target_amount,omitempty"`
	CurrentAmount *core.Amount `json:"current_amount,omitempty"`
	TargetDate    *string      `json:"target_date,omitempty"`
}

func (c *Client) ListGoals(ctx context.Context) ([]core.Goal, error) {
	var out []core.Goal
	if err := c.do(ctx, http.MethodGet, "/goals", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateGoal(ctx context.Context, in GoalInput) (*core.Goal, error) {
	var out core.Goal
	if err := c.do(ctx, http.MethodPost, "/goals", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GoalPlan(ctx context.Context, id int64) (*core.GoalPlan, error) {
	var out core.GoalPlan
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/goals/%d/plan", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateGoal(ctx context.Context, id int64, patch GoalPatch) (*core.Goal, error) {
	var out core.Goal
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/goals/%d", id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteGoal(ctx context.Context, id int64) (*DeleteResult, error) {
	var out DeleteResult
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/goals/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GoalWithPlan pairs a goal with its plan. Plan is nil when it could not be
// fetched.
type GoalWithPlan struct {
	Goal core.Goal
	Plan *core.GoalPlan
}

// maxPlanFetches bounds concurrent plan requests.
const maxPlanFetches = 4

// LoadGoals lists goals and fetches each plan concurrently. A failed plan
// only leaves that goal without one; a failed listing fails the load.
func (c *Client) LoadGoals(ctx context.Context) ([]GoalWithPlan, error) {
	goals, err := c.ListGoals(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]GoalWithPlan, len(goals))
	var g errgroup.Group
	g.SetLimit(maxPlanFetches)
	for i, goal := range goals {
		out[i].Goal = goal
		g.Go(func() error {
			plan, err := c.GoalPlan(ctx, goal.ID)
			if err != nil {
				c.logger.DebugContext(ctx, "Goal plan unavailable", "goal_id", goal.ID, "error", err)
				return nil
			}
			out[i].Plan = plan
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

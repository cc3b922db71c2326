package api

import (
	"context"
	"net/http"
	"net/url"

	"maplebudget/internal/core"
)

// Dashboard returns the server-side summary, optionally bounded by dates.
func (c *Client) Dashboard(ctx context.Context, from, to string) (*core.DashboardSummary, error) {
	q := url.Values{}
	if from != "" {
		q.Set("from_date", from)
	}
	if to != "" {
		q.Set("to_date", to)
	}
	var out core.DashboardSummary
	if err := c.do(ctx, http.MethodGet, withQuery("/dashboard", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

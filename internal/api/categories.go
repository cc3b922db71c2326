package api

import (
	"context"
	"net/http"

	"maplebudget/internal/core"
)

// CategoryInput is the body of POST /categories.
type CategoryInput struct {
	Name string            `json:"name"`
	Type core.CategoryType `json:"type"`
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var out []core.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) (*core.Category, error) {
	var out core.Category
	if err := c.do(ctx, http.MethodPost, "/categories", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

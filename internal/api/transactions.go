package api

import (
	"context"
	"fmt"
	"net/http"

	"maplebudget/internal/core"
)

// TransactionInput is the body of POST /transactions.
type TransactionInput struct {
	Amount     core.Amount `json:"amount"`
	Date       string      `json:"date"`
	Note       *string     `json:"note,omitempty"`
	CategoryID int64       `json:"category_id"`
}

// TransactionPatch is the body of PUT /transactions/{id}. Nil fields are
// left unchanged.
type TransactionPatch struct {
	Amount     *core.Amount `json:"amount,omitempty"`
	Date       *string      `json:"date,omitempty"`
	Note       *string      `json:"note,omitempty"`
	CategoryID *int64       `json:"category_id,omitempty"`
}

// DeleteResult is returned by the DELETE endpoints.
type DeleteResult struct {
	Deleted bool  `json:"deleted"`
	ID      int64 `json:"id"`
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTransaction(ctx context.Context, in TransactionInput) (*core.Transaction, error) {
	var out core.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, id int64, patch TransactionPatch) (*core.Transaction, error) {
	var out core.Transaction
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/transactions/%d", id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) (*DeleteResult, error) {
	var out DeleteResult
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/transactions/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

package api

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"maplebudget/internal/core"
	"maplebudget/internal/log"
)

// Snapshot is everything the analytics pages work from, fetched together.
type Snapshot struct {
	Categories   []core.Category
	Transactions []core.NormalizedTransaction
	FetchedAt    time.Time
}

// LoadSnapshot fetches categories and transactions concurrently and
// normalizes the transactions. If either call fails the whole load fails.
func (c *Client) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	var (
		cats []core.Category
		txs  []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = c.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = c.ListTransactions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Categories:   cats,
		Transactions: core.Normalize(txs, cats),
		FetchedAt:    time.Now(),
	}
	c.logger.DebugContext(ctx, "Snapshot loaded",
		log.FieldCategoryCount, len(snap.Categories), log.FieldTxCount, len(snap.Transactions))
	return snap, nil
}

// Overview is the home page data. When any call fails Online is false and
// Err holds the failure.
type Overview struct {
	Online       bool
	Err          error
	Dashboard    *core.DashboardSummary
	Categories   []core.Category
	Transactions []core.Transaction
}

// Probe fetches the dashboard summary, categories and transactions together.
// It never returns an error; reachability is reported in the Overview.
func (c *Client) Probe(ctx context.Context) Overview {
	var ov Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ov.Dashboard, err = c.Dashboard(gctx, "", "")
		return err
	})
	g.Go(func() error {
		var err error
		ov.Categories, err = c.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		ov.Transactions, err = c.ListTransactions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{Err: err}
	}
	ov.Online = true
	return ov
}

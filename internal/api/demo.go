package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"maplebudget/internal/core"
)

type demoCategory struct {
	name string
	typ  core.CategoryType
}

type demoTransaction struct {
	dayOffset int
	amount    float64
	category  string
	note      string
}

var (
	demoCategories = []demoCategory{
		{"Salaire", core.Income},
		{"Loyer", core.Expense},
		{"Courses", core.Expense},
		{"Transport", core.Expense},
	}
	demoTransactions = []demoTransaction{
		{-9, 2300, "Salaire", "Paie"},
		{-8, 900, "Loyer", "Mensuel"},
		{-6, 75, "Courses", "Supermarché"},
		{-4, 55, "Transport", "Bus"},
		{-2, 48, "Courses", "Courses"},
	}
)

// DemoResult lists what SeedDemo created.
type DemoResult struct {
	CreatedCategories   []core.Category
	CreatedTransactions []core.Transaction
}

// SeedDemo creates a small dataset spread over the ten days before today.
// Existing categories with the same name (any case) and type are reused.
// Transactions are created one at a time; the first failure stops the seed
// and what was already created stays.
func (c *Client) SeedDemo(ctx context.Context, today time.Time) (*DemoResult, error) {
	existing, err := c.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	res := &DemoResult{}
	ids := make(map[string]int64, len(demoCategories))
	for _, dc := range demoCategories {
		if cat, ok := findCategory(existing, dc.name, dc.typ); ok {
			ids[dc.name] = cat.ID
			continue
		}
		cat, err := c.CreateCategory(ctx, CategoryInput{Name: dc.name, Type: dc.typ})
		if err != nil {
			return res, fmt.Errorf("create category %s: %w", dc.name, err)
		}
		res.CreatedCategories = append(res.CreatedCategories, *cat)
		ids[dc.name] = cat.ID
	}

	for _, dt := range demoTransactions {
		note := dt.note
		tx, err := c.CreateTransaction(ctx, TransactionInput{
			Amount:     core.NewAmount(dt.amount),
			Date:       core.FormatDate(today.AddDate(0, 0, dt.dayOffset)),
			Note:       &note,
			CategoryID: ids[dt.category],
		})
		if err != nil {
			return res, err
		}
		res.CreatedTransactions = append(res.CreatedTransactions, *tx)
	}
	return res, nil
}

func findCategory(cats []core.Category, name string, typ core.CategoryType) (core.Category, bool) {
	for _, c := range cats {
		if strings.EqualFold(c.Name, name) && c.Type == typ {
			return c, true
		}
	}
	return core.Category{}, false
}

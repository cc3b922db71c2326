package core

// UnknownCategoryName is shown for transactions whose category cannot be resolved.
const UnknownCategoryName = "?"

// NormalizedTransaction is a Transaction flattened for aggregation. It is
// derived once per fetch and never mutated.
type NormalizedTransaction struct {
	ID        int64
	Date      string
	Note      string
	AmountNum float64
	CatID     int64
	CatName   string
	CatType   CategoryType
}

// Normalize resolves each transaction's amount and category. The defaults are:
//
//   - amount: 0 when the raw value is empty, unparsable or not finite
//   - category: the embedded object, else the category_id looked up in cats
//   - name: "?" when unresolved
//   - type: expense when unresolved or unknown
//   - category id: the resolved id, else category_id, else 0
func Normalize(txs []Transaction, cats []Category) []NormalizedTransaction {
	byID := make(map[int64]Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	out := make([]NormalizedTransaction, 0, len(txs))
	for _, t := range txs {
		n := NormalizedTransaction{
			ID:        t.ID,
			Date:      t.Date,
			Note:      t.NoteText(),
			AmountNum: t.Amount.Float(),
			CatName:   UnknownCategoryName,
			CatType:   Expense,
		}

		var cat *Category
		switch {
		case t.Category != nil:
			cat = t.Category
		case t.CategoryID != nil:
			if c, ok := byID[*t.CategoryID]; ok {
				cat = &c
			}
		}

		if cat != nil {
			n.CatID = cat.ID
			if cat.Name != "" {
				n.CatName = cat.Name
			}
			n.CatType = ResolveCategoryType(cat.Type)
		} else if t.CategoryID != nil {
			n.CatID = *t.CategoryID
		}

		out = append(out, n)
	}
	return out
}

package core

import "testing"

func ptr[T any](v T) *T { return &v }

func TestNormalizeEmbeddedCategory(t *testing.T) {
	txs := []Transaction{{
		ID: 1, Amount: RawAmount("100"), Date: "2024-01-01", Note: ptr("rent"),
		Category: &Category{ID: 3, Name: "Loyer", Type: Expense},
	}}
	got := Normalize(txs, nil)
	if len(got) != 1 {
		t.Fatalf("len=%d", len(got))
	}
	n := got[0]
	if n.AmountNum != 100 || n.CatID != 3 || n.CatName != "Loyer" || n.CatType != Expense || n.Note != "rent" {
		t.Fatalf("unexpected normalized tx: %+v", n)
	}
}

func TestNormalizeCategoryIDLookup(t *testing.T) {
	cats := []Category{{ID: 7, Name: "Salaire", Type: Income}}
	got := Normalize([]Transaction{{ID: 2, Amount: RawAmount("2300"), Date: "2024-01-02", CategoryID: ptr(int64(7))}}, cats)
	if got[0].CatName != "Salaire" || got[0].CatType != Income || got[0].CatID != 7 {
		t.Fatalf("lookup failed: %+v", got[0])
	}
}

func TestNormalizeDefaults(t *testing.T) {
	txs := []Transaction{
		{ID: 1, Amount: RawAmount("not-a-number"), Date: "2024-01-01"},
		{ID: 2, Amount: RawAmount("5"), Date: "2024-01-02", CategoryID: ptr(int64(99))},
		{ID: 3, Amount: RawAmount("5"), Date: "2024-01-03", Category: &Category{ID: 4, Name: "X", Type: "weird"}},
	}
	got := Normalize(txs, nil)

	if got[0].AmountNum != 0 || got[0].CatName != "?" || got[0].CatType != Expense || got[0].CatID != 0 {
		t.Fatalf("defaults not applied: %+v", got[0])
	}
	if got[1].CatID != 99 || got[1].CatName != "?" {
		t.Fatalf("unresolved category_id should be kept: %+v", got[1])
	}
	if got[2].CatType != Expense {
		t.Fatalf("unknown type should resolve to expense: %+v", got[2])
	}
	for i, n := range got {
		if n.ID != int64(i+1) {
			t.Fatalf("order not preserved at %d: %+v", i, n)
		}
	}
}

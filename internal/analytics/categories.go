package analytics

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"maplebudget/internal/core"
)

// zeroEpsilon is the threshold under which a category total counts as zero.
const zeroEpsilon = 1e-6

// CategoryAggregate is the total and count of one category in a filtered set.
type CategoryAggregate struct {
	CategoryID int64
	Name       string
	Type       core.CategoryType
	Total      float64
	Count      int
}

// CategorySort orders category aggregates.
type CategorySort string

const (
	SortTotalDesc CategorySort = "total_desc"
	SortTotalAsc  CategorySort = "total_asc"
	SortCountDesc CategorySort = "count_desc"
	SortNameAsc   CategorySort = "name_asc"
)

// ParseCategorySort defaults to SortTotalDesc.
func ParseCategorySort(s string) CategorySort {
	switch CategorySort(s) {
	case SortTotalAsc, SortCountDesc, SortNameAsc:
		return CategorySort(s)
	}
	return SortTotalDesc
}

// CategoryOptions are applied after grouping, in field order.
type CategoryOptions struct {
	Search   string
	HideZero bool
	Sort     CategorySort
}

// GroupCategories groups txs by category id. Aggregates appear in the order
// their category was first seen; name and type come from that first record.
func GroupCategories(txs []core.NormalizedTransaction) []CategoryAggregate {
	index := make(map[int64]int)
	var out []CategoryAggregate
	for _, t := range txs {
		i, ok := index[t.CatID]
		if !ok {
			i = len(out)
			index[t.CatID] = i
			out = append(out, CategoryAggregate{CategoryID: t.CatID, Name: t.CatName, Type: t.CatType})
		}
		out[i].Total += t.AmountNum
		out[i].Count++
	}
	return out
}

// AggregateCategories groups txs and then filters by name, drops zero totals
// and sorts, as requested by opts. Sorting is stable.
func AggregateCategories(txs []core.NormalizedTransaction, opts CategoryOptions) []CategoryAggregate {
	list := GroupCategories(txs)

	if s := strings.ToLower(strings.TrimSpace(opts.Search)); s != "" {
		kept := list[:0]
		for _, c := range list {
			if strings.Contains(strings.ToLower(c.Name), s) {
				kept = append(kept, c)
			}
		}
		list = kept
	}

	if opts.HideZero {
		kept := list[:0]
		for _, c := range list {
			if math.Abs(c.Total) > zeroEpsilon {
				kept = append(kept, c)
			}
		}
		list = kept
	}

	SortCategories(list, opts.Sort)
	return list
}

// SortCategories sorts list in place. Names compare with French (Canada)
// collation rules.
func SortCategories(list []CategoryAggregate, by CategorySort) {
	switch by {
	case SortTotalAsc:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Total < list[j].Total })
	case SortCountDesc:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Count > list[j].Count })
	case SortNameAsc:
		col := collate.New(language.CanadianFrench)
		sort.SliceStable(list, func(i, j int) bool { return col.CompareString(list[i].Name, list[j].Name) < 0 })
	default:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Total > list[j].Total })
	}
}

// FirstOfType returns the first aggregate of type t, or nil.
func FirstOfType(list []CategoryAggregate, t core.CategoryType) *CategoryAggregate {
	for i := range list {
		if list[i].Type == t {
			c := list[i]
			return &c
		}
	}
	return nil
}

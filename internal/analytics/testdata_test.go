package analytics

import "maplebudget/internal/core"

func ntx(id int64, date string, amount float64, catID int64, name string, typ core.CategoryType) core.NormalizedTransaction {
	return core.NormalizedTransaction{
		ID:        id,
		Date:      date,
		AmountNum: amount,
		CatID:     catID,
		CatName:   name,
		CatType:   typ,
	}
}

// scenarioA is a small mixed set used across the pipeline tests.
func scenarioA() []core.NormalizedTransaction {
	return []core.NormalizedTransaction{
		ntx(1, "2024-01-01", 100, 2, "Loyer", core.Expense),
		ntx(2, "2024-01-01", 500, 1, "Salaire", core.Income),
		ntx(3, "2024-01-02", 50, 3, "Courses", core.Expense),
	}
}

func mixedSet() []core.NormalizedTransaction {
	return []core.NormalizedTransaction{
		ntx(1, "2024-01-01", 2300, 1, "Salaire", core.Income),
		ntx(2, "2024-01-02", 900, 2, "Loyer", core.Expense),
		ntx(3, "2024-01-05", 75.25, 3, "Courses", core.Expense),
		ntx(4, "2024-01-09", 55, 4, "Transport", core.Expense),
		ntx(5, "2024-01-15", 48.1, 3, "Courses", core.Expense),
		ntx(6, "2024-01-20", 120, 5, "Pige", core.Income),
		ntx(7, "2024-02-03", 900, 2, "Loyer", core.Expense),
		ntx(8, "2024-02-03", 0, 6, "Divers", core.Expense),
		ntx(9, "2024-02-11", 2300, 1, "Salaire", core.Income),
	}
}

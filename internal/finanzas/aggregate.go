package finanzas

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// DetailPageSize is the initial page size and the "show more" increment of
// the per-dimension monthly detail.
const DetailPageSize = 15

// Aggregator computes the dashboard roll-ups over a movement set, resolving
// categoria_id against the category dimension set it was built with.
type Aggregator struct {
	categories []Record
	equityCat  string
}

// NewAggregator builds an aggregator over the category dimension set.
// equityCat is the category identifier whose movements count as equity.
func NewAggregator(categories []Record, equityCat string) *Aggregator {
	return &Aggregator{categories: categories, equityCat: equityCat}
}

func (a *Aggregator) categoryByID(id string) (Record, bool) {
	if id == "" {
		return nil, false
	}
	for _, cat := range a.categories {
		if cat.Get("categoria_id") == id {
			return cat, true
		}
	}
	return nil, false
}

// flowOf resolves a movement's category flow type, or "" when the category
// reference does not resolve.
func (a *Aggregator) flowOf(mov Record) string {
	cat, ok := a.categoryByID(mov.Get("categoria_id"))
	if !ok {
		return ""
	}
	return cat.Get("tipo_flujo")
}

// MonthTotals is one point of the monthly series. Expense is carried as a
// negative magnitude so Income+Expense is the month's balance.
type MonthTotals struct {
	Month   string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// CategoryTotal is a category's signed contribution for the year: positive
// for income categories, negative for expense ones.
type CategoryTotal struct {
	Name  string
	Total decimal.Decimal
}

// YearSummary is the dashboard header for one year.
type YearSummary struct {
	Year    int
	Income  decimal.Decimal
	Expense decimal.Decimal // negative magnitude
	Equity  decimal.Decimal
	Balance decimal.Decimal // Income + Expense
	Months  []MonthTotals   // exactly 12, keyed YYYY-MM
	Top     []CategoryTotal // top 5 by |total|
}

// FilterYear returns the movements dated in the given year. Rows with
// malformed dates are dropped.
func FilterYear(movs []Record, year int) []Record {
	out := make([]Record, 0, len(movs))
	for _, mov := range movs {
		if d := mov.Date(); !d.IsZero() && d.Year() == year {
			out = append(out, mov)
		}
	}
	return out
}

// Summarize computes the full year roll-up: income/expense/equity totals,
// balance, the 12-month series and the top categories.
//
// Expenses (Gasto and Operación financiera) accumulate as negative absolute
// amounts, so Balance = Income + Expense by construction. Equity sums the
// absolute amounts of movements whose raw categoria_id equals the equity
// category code, without resolving it. Movements whose category does not
// resolve contribute to none of the three totals.
func (a *Aggregator) Summarize(movs []Record, year int) YearSummary {
	filtered := FilterYear(movs, year)

	sum := YearSummary{
		Year:    year,
		Income:  decimal.Zero,
		Expense: decimal.Zero,
		Equity:  decimal.Zero,
		Months:  make([]MonthTotals, 12),
	}
	monthIndex := make(map[string]int, 12)
	for m := 1; m <= 12; m++ {
		key := fmt.Sprintf("%04d-%02d", year, m)
		sum.Months[m-1] = MonthTotals{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
		monthIndex[key] = m - 1
	}

	for _, mov := range filtered {
		abs := mov.Amount().Abs()
		if mov.Get("categoria_id") == a.equityCat {
			sum.Equity = sum.Equity.Add(abs)
		}
		i, ok := monthIndex[mov.MonthKey()]
		if !ok {
			continue
		}
		switch a.flowOf(mov) {
		case FlowIncome:
			sum.Income = sum.Income.Add(abs)
			sum.Months[i].Income = sum.Months[i].Income.Add(abs)
		case FlowExpense, FlowFinancial:
			sum.Expense = sum.Expense.Sub(abs)
			sum.Months[i].Expense = sum.Months[i].Expense.Sub(abs)
		}
	}

	sum.Balance = sum.Income.Add(sum.Expense)
	sum.Top = a.TopCategories(filtered, 5)
	return sum
}

// TopCategories groups the given movements by resolved category name (raw
// categoria_id when unresolved), accumulates signed contributions, and
// returns the limit largest by absolute value. A category whose movements are
// all non-income, non-expense flows still appears, with a zero total.
func (a *Aggregator) TopCategories(movs []Record, limit int) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	var order []string

	for _, mov := range movs {
		catID := mov.Get("categoria_id")
		if catID == "" {
			continue
		}
		name := catID
		flow := ""
		if cat, ok := a.categoryByID(catID); ok {
			name = cat.Get("categoria_nombre")
			flow = cat.Get("tipo_flujo")
		}
		if _, seen := totals[name]; !seen {
			totals[name] = decimal.Zero
			order = append(order, name)
		}
		abs := mov.Amount().Abs()
		switch flow {
		case FlowIncome:
			totals[name] = totals[name].Add(abs)
		case FlowExpense, FlowFinancial:
			totals[name] = totals[name].Sub(abs)
		}
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, name := range order {
		out = append(out, CategoryTotal{Name: name, Total: totals[name]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.Abs().GreaterThan(out[j].Total.Abs())
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DimensionBalance is one row of the per-dimension balance summary.
type DimensionBalance struct {
	ID      string
	Name    string
	Total   decimal.Decimal // raw signed sum
	Percent float64         // share of the grand total, one decimal
}

// BalanceSummary groups every movement (no year filter) by one dimension.
type BalanceSummary struct {
	Dimension string
	Rows      []DimensionBalance
	Total     decimal.Decimal
}

// BalancesByDimension sums raw signed amounts per referenced dimension
// record. Movements whose reference is empty or does not resolve against dims
// are excluded from rows and grand total alike. Rows are sorted by signed
// total descending; percentages are 0 across the board when the grand total
// is zero.
func BalancesByDimension(movs []Record, dims []Record, dimTable string) (BalanceSummary, error) {
	schema, ok := Schemas[dimTable]
	if !ok || dimTable == TableMovements {
		return BalanceSummary{}, ErrUnknownTable
	}
	idField := schema.IDField

	byID := make(map[string]Record, len(dims))
	for _, d := range dims {
		byID[d.Get(idField)] = d
	}

	totals := make(map[string]decimal.Decimal)
	var order []string
	grand := decimal.Zero
	for _, mov := range movs {
		id := mov.Get(idField)
		if id == "" {
			continue
		}
		if _, exists := byID[id]; !exists {
			continue
		}
		if _, seen := totals[id]; !seen {
			totals[id] = decimal.Zero
			order = append(order, id)
		}
		amt := mov.Amount()
		totals[id] = totals[id].Add(amt)
		grand = grand.Add(amt)
	}

	rows := make([]DimensionBalance, 0, len(order))
	for _, id := range order {
		rows = append(rows, DimensionBalance{
			ID:    id,
			Name:  byID[id].Get(schema.NameField),
			Total: totals[id],
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total.GreaterThan(rows[j].Total)
	})
	if !grand.IsZero() {
		for i := range rows {
			pct, _ := rows[i].Total.Div(grand).Float64()
			rows[i].Percent = math.Round(pct*1000) / 10
		}
	}
	return BalanceSummary{Dimension: dimTable, Rows: rows, Total: grand}, nil
}

// FilterByDimension returns the movements referencing the given dimension
// record through the table's foreign-key field.
func FilterByDimension(movs []Record, dimTable, id string) []Record {
	schema, ok := Schemas[dimTable]
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(movs))
	for _, mov := range movs {
		if mov.Get(schema.IDField) == id {
			out = append(out, mov)
		}
	}
	return out
}

// MonthKeys returns the distinct YYYY-MM buckets of the movements, most
// recent first. Rows with malformed dates are skipped.
func MonthKeys(movs []Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, mov := range movs {
		key := mov.MonthKey()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// MonthDetail is one month of movements for a dimension, with incremental
// pagination and month-wide totals.
type MonthDetail struct {
	Month     string
	Rows      []Record // first `limit` rows, date descending
	Count     int      // all rows in the month
	Remaining int      // rows beyond Rows
	Income    decimal.Decimal
	Expense   decimal.Decimal // negative magnitude
	Balance   decimal.Decimal
}

// DetailForMonth filters movs to the given YYYY-MM bucket, orders by date
// descending and pages the first limit rows (DetailPageSize when limit < 1).
// Totals always cover the whole month, not just the visible page.
func (a *Aggregator) DetailForMonth(movs []Record, month string, limit int) MonthDetail {
	if limit < 1 {
		limit = DetailPageSize
	}
	detail := MonthDetail{
		Month:   month,
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}

	inMonth := make([]Record, 0, len(movs))
	for _, mov := range movs {
		if mov.MonthKey() == month {
			inMonth = append(inMonth, mov)
		}
	}
	sort.SliceStable(inMonth, func(i, j int) bool {
		return inMonth[i].Date().After(inMonth[j].Date())
	})

	for _, mov := range inMonth {
		abs := mov.Amount().Abs()
		switch a.flowOf(mov) {
		case FlowIncome:
			detail.Income = detail.Income.Add(abs)
		case FlowExpense, FlowFinancial:
			detail.Expense = detail.Expense.Sub(abs)
		}
	}
	detail.Balance = detail.Income.Add(detail.Expense)

	detail.Count = len(inMonth)
	if limit > len(inMonth) {
		limit = len(inMonth)
	}
	detail.Rows = inMonth[:limit]
	detail.Remaining = detail.Count - limit
	return detail
}

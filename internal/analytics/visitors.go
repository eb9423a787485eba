// Package analytics aggregates ledger traversals. Each visitor is
// single-use: create it, drive it through Accept or Run, then read it.
package analytics

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

// IncomeExpenseDifference totals operations dated within [start, end].
type IncomeExpenseDifference struct {
	core.NopVisitor
	start, end      core.Date
	income, expense decimal.Decimal
}

func NewIncomeExpenseDifference(start, end core.Date) *IncomeExpenseDifference {
	return &IncomeExpenseDifference{start: start, end: end}
}

func (v *IncomeExpenseDifference) VisitOperation(op core.Operation) {
	if !op.Date.Within(v.start, v.end) {
		return
	}
	switch op.Type {
	case core.Income:
		v.income = v.income.Add(op.Amount)
	case core.Expense:
		v.expense = v.expense.Add(op.Amount)
	}
}

func (v *IncomeExpenseDifference) Income() decimal.Decimal  { return v.income }
func (v *IncomeExpenseDifference) Expense() decimal.Decimal { return v.expense }

// Difference is income minus expense.
func (v *IncomeExpenseDifference) Difference() decimal.Decimal {
	return v.income.Sub(v.expense)
}

// CategoryGrouping sums operation amounts per category, separately for
// income and expense. A category only appears on a side it has activity on.
type CategoryGrouping struct {
	core.NopVisitor
	income  map[uuid.UUID]decimal.Decimal
	expense map[uuid.UUID]decimal.Decimal
}

func NewCategoryGrouping() *CategoryGrouping {
	return &CategoryGrouping{
		income:  make(map[uuid.UUID]decimal.Decimal),
		expense: make(map[uuid.UUID]decimal.Decimal),
	}
}

func (v *CategoryGrouping) VisitOperation(op core.Operation) {
	switch op.Type {
	case core.Income:
		v.income[op.CategoryID] = v.income[op.CategoryID].Add(op.Amount)
	case core.Expense:
		v.expense[op.CategoryID] = v.expense[op.CategoryID].Add(op.Amount)
	}
}

// IncomeByCategory returns a copy of the income sums.
func (v *CategoryGrouping) IncomeByCategory() map[uuid.UUID]decimal.Decimal {
	return copyMap(v.income)
}

// ExpenseByCategory returns a copy of the expense sums.
func (v *CategoryGrouping) ExpenseByCategory() map[uuid.UUID]decimal.Decimal {
	return copyMap(v.expense)
}

// AverageByType averages operation amounts per type. A type with no
// operations averages to exactly zero.
type AverageByType struct {
	core.NopVisitor
	incomeSum, expenseSum     decimal.Decimal
	incomeCount, expenseCount int64
}

func NewAverageByType() *AverageByType {
	return &AverageByType{}
}

func (v *AverageByType) VisitOperation(op core.Operation) {
	switch op.Type {
	case core.Income:
		v.incomeSum = v.incomeSum.Add(op.Amount)
		v.incomeCount++
	case core.Expense:
		v.expenseSum = v.expenseSum.Add(op.Amount)
		v.expenseCount++
	}
}

func (v *AverageByType) AverageIncome() decimal.Decimal {
	return average(v.incomeSum, v.incomeCount)
}

func (v *AverageByType) AverageExpense() decimal.Decimal {
	return average(v.expenseSum, v.expenseCount)
}

// Totals sums every operation by type with no date filter.
type Totals struct {
	core.NopVisitor
	income, expense decimal.Decimal
	count           int
}

func NewTotals() *Totals {
	return &Totals{}
}

func (v *Totals) VisitOperation(op core.Operation) {
	switch op.Type {
	case core.Income:
		v.income = v.income.Add(op.Amount)
	case core.Expense:
		v.expense = v.expense.Add(op.Amount)
	}
	v.count++
}

func (v *Totals) Income() decimal.Decimal  { return v.income }
func (v *Totals) Expense() decimal.Decimal { return v.expense }
func (v *Totals) Count() int               { return v.count }

func average(sum decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(count))
}

func copyMap(in map[uuid.UUID]decimal.Decimal) map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

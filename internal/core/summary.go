package core

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	CategoryID uuid.UUID
	Name       string
	Amount     decimal.Decimal
}

// PeriodOverview is a compact summary for an inclusive date window.
type PeriodOverview struct {
	Start      Date
	End        Date
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Difference decimal.Decimal
	IncomeBy   []CategoryAmount
	ExpenseBy  []CategoryAmount
}

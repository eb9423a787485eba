package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

// Source is anything that can walk ledger entities past a visitor;
// repositories and proxies both qualify.
type Source interface {
	Accept(ctx context.Context, v core.Visitor) error
}

// Run drives all visitors through a single traversal of source.
func Run(ctx context.Context, source Source, visitors ...core.Visitor) error {
	if len(visitors) == 0 {
		return nil
	}
	if len(visitors) == 1 {
		return source.Accept(ctx, visitors[0])
	}
	return source.Accept(ctx, multi(visitors))
}

type multi []core.Visitor

func (m multi) VisitBankAccount(a core.BankAccount) {
	for _, v := range m {
		v.VisitBankAccount(a)
	}
}

func (m multi) VisitCategory(c core.Category) {
	for _, v := range m {
		v.VisitCategory(c)
	}
}

func (m multi) VisitOperation(op core.Operation) {
	for _, v := range m {
		v.VisitOperation(op)
	}
}

type window struct {
	core.Visitor
	start, end core.Date
}

// Window forwards only operations dated within [start, end] to v.
// Accounts and categories pass through.
func Window(start, end core.Date, v core.Visitor) core.Visitor {
	return window{Visitor: v, start: start, end: end}
}

func (w window) VisitOperation(op core.Operation) {
	if op.Date.Within(w.start, w.end) {
		w.Visitor.VisitOperation(op)
	}
}

type categoryNames struct {
	core.NopVisitor
	names map[uuid.UUID]string
}

func (c *categoryNames) VisitCategory(cat core.Category) {
	c.names[cat.ID] = cat.Name
}

// Overview summarizes operations dated within [start, end]: totals,
// difference and per-category sums, largest first. Category names are
// read from categories; unknown ids keep an empty name.
func Overview(ctx context.Context, operations, categories Source, start, end core.Date) (core.PeriodOverview, error) {
	if end.Before(start.Time) {
		return core.PeriodOverview{}, fmt.Errorf("%w: period end %s before start %s",
			core.ErrValidation, end, start)
	}

	names := &categoryNames{names: make(map[uuid.UUID]string)}
	if err := Run(ctx, categories, names); err != nil {
		return core.PeriodOverview{}, fmt.Errorf("read categories: %w", err)
	}

	diff := NewIncomeExpenseDifference(start, end)
	grouping := NewCategoryGrouping()
	if err := Run(ctx, operations, diff, Window(start, end, grouping)); err != nil {
		return core.PeriodOverview{}, fmt.Errorf("read operations: %w", err)
	}

	return core.PeriodOverview{
		Start:      start,
		End:        end,
		Income:     diff.Income(),
		Expense:    diff.Expense(),
		Difference: diff.Difference(),
		IncomeBy:   ranked(grouping.income, names.names),
		ExpenseBy:  ranked(grouping.expense, names.names),
	}, nil
}

func ranked(sums map[uuid.UUID]decimal.Decimal, names map[uuid.UUID]string) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(sums))
	for id, amount := range sums {
		out = append(out, core.CategoryAmount{CategoryID: id, Name: names[id], Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CategoryID.String() < out[j].CategoryID.String()
	})
	return out
}

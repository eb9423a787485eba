package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"finledger/internal/analytics"
	"finledger/internal/core"
)

type reportCmd struct {
	env   *env
	start string
	end   string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "summarize income and expense for a period" }
func (*reportCmd) Usage() string {
	return `ledger report [-s YYYY-MM-DD] [-d YYYY-MM-DD]

  Prints income, expense and their difference for the inclusive period,
  per-category sums within it, and all-time totals and averages.
  The period defaults to the current month up to today.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "Period start date.")
	f.StringVar(&c.end, "d", "", "Period end date.")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	start, end, err := c.period(time.Now().UTC())
	if err != nil {
		return fail(err)
	}

	ops := c.env.ledger.Operations
	overview, err := analytics.Overview(ctx, ops, c.env.ledger.Categories, start, end)
	if err != nil {
		return fail(err)
	}

	totals := analytics.NewTotals()
	averages := analytics.NewAverageByType()
	if err := analytics.Run(ctx, ops, totals, averages); err != nil {
		return fail(err)
	}

	w := tabwriter.NewWriter(c.env.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Period\t%s .. %s\n", overview.Start, overview.End)
	fmt.Fprintf(w, "Income\t%s\n", core.FormatAmount(overview.Income))
	fmt.Fprintf(w, "Expense\t%s\n", core.FormatAmount(overview.Expense))
	fmt.Fprintf(w, "Difference\t%s\n", core.FormatAmount(overview.Difference))
	writeCategories(w, "Income by category", overview.IncomeBy)
	writeCategories(w, "Expense by category", overview.ExpenseBy)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Operations\t%d\n", totals.Count())
	fmt.Fprintf(w, "Total income\t%s\n", core.FormatAmount(totals.Income()))
	fmt.Fprintf(w, "Total expense\t%s\n", core.FormatAmount(totals.Expense()))
	fmt.Fprintf(w, "Average income\t%s\n", core.FormatAmount(averages.AverageIncome()))
	fmt.Fprintf(w, "Average expense\t%s\n", core.FormatAmount(averages.AverageExpense()))
	w.Flush()
	return subcommands.ExitSuccess
}

func (c *reportCmd) period(now time.Time) (core.Date, core.Date, error) {
	end := core.NewDate(now.Year(), int(now.Month()), now.Day())
	if c.end != "" {
		d, err := core.ParseDate(c.end)
		if err != nil {
			return core.Date{}, core.Date{}, err
		}
		end = d
	}

	start := core.NewDate(end.Year(), int(end.Month()), 1)
	if c.start != "" {
		d, err := core.ParseDate(c.start)
		if err != nil {
			return core.Date{}, core.Date{}, err
		}
		start = d
	}
	return start, end, nil
}

func writeCategories(w *tabwriter.Writer, title string, rows []core.CategoryAmount) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\t\n", title)
	for _, r := range rows {
		name := r.Name
		if name == "" {
			name = r.CategoryID.String()
		}
		fmt.Fprintf(w, "  %s\t%s\n", name, core.FormatAmount(r.Amount))
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/services"
)

type operationsCmd struct {
	env     *env
	account string
}

func (*operationsCmd) Name() string     { return "ops" }
func (*operationsCmd) Synopsis() string { return "list operations" }
func (*operationsCmd) Usage() string {
	return `ledger ops [-account <id>]

  Lists operations, optionally only those of one account.
`
}

func (c *operationsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Only list operations of this account.")
}

func (c *operationsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var only uuid.UUID
	if c.account != "" {
		id, err := parseID("account", c.account)
		if err != nil {
			return fail(err)
		}
		only = id
	}

	ops, err := c.env.ledger.Operations.GetAllOperations(ctx)
	if err != nil {
		return fail(err)
	}

	w := tabwriter.NewWriter(c.env.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTYPE\tAMOUNT\tACCOUNT\tCATEGORY\tDESCRIPTION")
	for _, op := range ops {
		if only != uuid.Nil && op.BankAccountID != only {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			op.ID, op.Date, op.Type, core.FormatAmount(op.Amount), op.BankAccountID, op.CategoryID, op.Description)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type opAddCmd struct {
	env         *env
	itemType    string
	account     string
	amount      string
	date        string
	category    string
	description string
}

func (*opAddCmd) Name() string     { return "op-add" }
func (*opAddCmd) Synopsis() string { return "book an income or expense against an account" }
func (*opAddCmd) Usage() string {
	return `ledger op-add -type income|expense -account <id> -amount <n> -category <id> [-date YYYY-MM-DD] [-desc <text>]

  Books an operation, updates the account balance and prints the operation id.
  The date defaults to today.
`
}

func (c *opAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.itemType, "type", "", "Operation type, income or expense.")
	f.StringVar(&c.account, "account", "", "Account id.")
	f.StringVar(&c.amount, "amount", "", "Non-negative amount, dot or comma decimal separator.")
	f.StringVar(&c.date, "date", "", "Operation date (YYYY-MM-DD).")
	f.StringVar(&c.category, "category", "", "Category id.")
	f.StringVar(&c.description, "desc", "", "Free-form description.")
}

func (c *opAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cmd, err := c.command()
	if err != nil {
		return fail(err)
	}

	timed := services.NewTimedCommand(cmd, func(d time.Duration) {
		log.FromContext(ctx).DebugContext(ctx, "Operation booked", log.FieldDuration, d.Milliseconds())
	})
	if err := timed.Execute(ctx); err != nil {
		return fail(err)
	}
	fmt.Fprintln(c.env.out, cmd.Result.ID)
	return subcommands.ExitSuccess
}

func (c *opAddCmd) command() (*services.CreateOperationCommand, error) {
	t, err := core.ParseItemType(c.itemType)
	if err != nil {
		return nil, err
	}
	accountID, err := parseID("account", c.account)
	if err != nil {
		return nil, err
	}
	categoryID, err := parseID("category", c.category)
	if err != nil {
		return nil, err
	}
	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		return nil, err
	}

	date := core.Date{Time: time.Now().UTC().Truncate(24 * time.Hour)}
	if c.date != "" {
		if date, err = core.ParseDate(c.date); err != nil {
			return nil, err
		}
	}

	return &services.CreateOperationCommand{
		Service:     c.env.service,
		Type:        t,
		AccountID:   accountID,
		Amount:      amount,
		Date:        date,
		CategoryID:  categoryID,
		Description: c.description,
	}, nil
}

type opRmCmd struct {
	env *env
	id  string
}

func (*opRmCmd) Name() string     { return "op-rm" }
func (*opRmCmd) Synopsis() string { return "delete an operation and reverse its balance effect" }
func (*opRmCmd) Usage() string {
	return `ledger op-rm -id <id>

  Deletes the operation. Fails if it does not exist.
`
}

func (c *opRmCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Operation id.")
}

func (c *opRmCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := parseID("id", c.id)
	if err != nil {
		return fail(err)
	}

	cmd := &services.DeleteOperationCommand{Service: c.env.service, ID: id}
	if err := cmd.Execute(ctx); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

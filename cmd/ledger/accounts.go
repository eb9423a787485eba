package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/subcommands"

	"finledger/internal/core"
)

type accountsCmd struct {
	env *env
}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list bank accounts and their balances" }
func (*accountsCmd) Usage() string {
	return `ledger accounts

  Lists every bank account with its current balance.
`
}

func (*accountsCmd) SetFlags(*flag.FlagSet) {}

func (c *accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	accounts, err := c.env.ledger.Accounts.GetAllBankAccounts(ctx)
	if err != nil {
		return fail(err)
	}

	w := tabwriter.NewWriter(c.env.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBALANCE")
	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.ID, a.Name, core.FormatAmount(a.Balance))
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type accountAddCmd struct {
	env  *env
	name string
}

func (*accountAddCmd) Name() string     { return "account-add" }
func (*accountAddCmd) Synopsis() string { return "open a bank account with a zero balance" }
func (*accountAddCmd) Usage() string {
	return `ledger account-add -name <name>

  Creates a bank account and prints its id.
`
}

func (c *accountAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Account name.")
}

func (c *accountAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	account, err := c.env.ledger.Accounts.CreateBankAccount(ctx, c.name)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(c.env.out, account.ID)
	return subcommands.ExitSuccess
}

type recalcCmd struct {
	env     *env
	account string
}

func (*recalcCmd) Name() string     { return "recalc" }
func (*recalcCmd) Synopsis() string { return "rebuild an account balance from its operations" }
func (*recalcCmd) Usage() string {
	return `ledger recalc -account <id>

  Sets the account balance to the signed sum of its operations and prints it.
`
}

func (c *recalcCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account id.")
}

func (c *recalcCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := parseID("account", c.account)
	if err != nil {
		return fail(err)
	}
	if err := c.env.ledger.Accounts.RecalculateBalance(ctx, id); err != nil {
		return fail(err)
	}

	account, err := c.env.ledger.Accounts.GetBankAccount(ctx, id)
	if err != nil {
		return fail(err)
	}
	if account == nil {
		return fail(fmt.Errorf("%w: bank account %s", core.ErrNotFound, id))
	}
	fmt.Fprintln(c.env.out, core.FormatAmount(account.Balance))
	return subcommands.ExitSuccess
}

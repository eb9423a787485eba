package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/subcommands"

	"finledger/internal/core"
)

type categoriesCmd struct {
	env      *env
	itemType string
}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "list categories" }
func (*categoriesCmd) Usage() string {
	return `ledger categories [-type income|expense]

  Lists categories, optionally only those of one type.
`
}

func (c *categoriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.itemType, "type", "", "Only list categories of this type.")
}

func (c *categoriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var only core.ItemType
	if c.itemType != "" {
		t, err := core.ParseItemType(c.itemType)
		if err != nil {
			return fail(err)
		}
		only = t
	}

	categories, err := c.env.ledger.Categories.GetAllCategories(ctx)
	if err != nil {
		return fail(err)
	}

	w := tabwriter.NewWriter(c.env.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tNAME")
	for _, cat := range categories {
		if only != "" && cat.Type != only {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", cat.ID, cat.Type, cat.Name)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type categoryAddCmd struct {
	env      *env
	itemType string
	name     string
}

func (*categoryAddCmd) Name() string     { return "category-add" }
func (*categoryAddCmd) Synopsis() string { return "create an income or expense category" }
func (*categoryAddCmd) Usage() string {
	return `ledger category-add -type income|expense -name <name>

  Creates a category and prints its id.
`
}

func (c *categoryAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.itemType, "type", "", "Category type, income or expense.")
	f.StringVar(&c.name, "name", "", "Category name.")
}

func (c *categoryAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	t, err := core.ParseItemType(c.itemType)
	if err != nil {
		return fail(err)
	}
	category, err := c.env.ledger.Categories.CreateCategory(ctx, t, c.name)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(c.env.out, category.ID)
	return subcommands.ExitSuccess
}

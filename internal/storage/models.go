package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

// Row types mirror the tables one to one. Conversion to core types parses
// ids, decimals and dates and fails loudly on corrupt rows.

type BankAccount struct {
	ID      string
	Name    string
	Balance string
}

type Category struct {
	ID   string
	Type string
	Name string
}

type Operation struct {
	ID            string
	Type          string
	BankAccountID string
	Amount        string
	Date          string
	CategoryID    string
	Description   string
}

// OperationAmount is the projection used to recompute balances.
type OperationAmount struct {
	Type   string
	Amount string
}

const dateLayout = core.TimestampLayout

func bankAccountRow(a core.BankAccount) BankAccount {
	return BankAccount{
		ID:      a.ID.String(),
		Name:    a.Name,
		Balance: a.Balance.String(),
	}
}

func (r BankAccount) toCore() (core.BankAccount, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return core.BankAccount{}, fmt.Errorf("parse bank account id %q: %w", r.ID, err)
	}
	balance, err := decimal.NewFromString(r.Balance)
	if err != nil {
		return core.BankAccount{}, fmt.Errorf("parse balance of account %s: %w", r.ID, err)
	}
	return core.BankAccount{ID: id, Name: r.Name, Balance: balance}, nil
}

func categoryRow(c core.Category) Category {
	return Category{
		ID:   c.ID.String(),
		Type: string(c.Type),
		Name: c.Name,
	}
}

func (r Category) toCore() (core.Category, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return core.Category{}, fmt.Errorf("parse category id %q: %w", r.ID, err)
	}
	return core.Category{ID: id, Type: core.ItemType(r.Type), Name: r.Name}, nil
}

func operationRow(o core.Operation) Operation {
	return Operation{
		ID:            o.ID.String(),
		Type:          string(o.Type),
		BankAccountID: o.BankAccountID.String(),
		Amount:        o.Amount.String(),
		Date:          o.Date.UTC().Format(dateLayout),
		CategoryID:    o.CategoryID.String(),
		Description:   o.Description,
	}
}

func (r Operation) toCore() (core.Operation, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return core.Operation{}, fmt.Errorf("parse operation id %q: %w", r.ID, err)
	}
	accountID, err := uuid.Parse(r.BankAccountID)
	if err != nil {
		return core.Operation{}, fmt.Errorf("parse account id of operation %s: %w", r.ID, err)
	}
	categoryID, err := uuid.Parse(r.CategoryID)
	if err != nil {
		return core.Operation{}, fmt.Errorf("parse category id of operation %s: %w", r.ID, err)
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return core.Operation{}, fmt.Errorf("parse amount of operation %s: %w", r.ID, err)
	}
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return core.Operation{}, fmt.Errorf("parse date of operation %s: %w", r.ID, err)
	}
	return core.Operation{
		ID:            id,
		Type:          core.ItemType(r.Type),
		BankAccountID: accountID,
		Amount:        amount,
		Date:          core.Date{Time: date},
		CategoryID:    categoryID,
		Description:   r.Description,
	}, nil
}

// signedSum adds Income amounts and subtracts Expense amounts.
func signedSum(rows []OperationAmount) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, r := range rows {
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse amount %q: %w", r.Amount, err)
		}
		switch core.ItemType(r.Type) {
		case core.Income:
			sum = sum.Add(amount)
		case core.Expense:
			sum = sum.Sub(amount)
		}
	}
	return sum, nil
}

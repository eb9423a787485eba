package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

// Command is one user action against the ledger.
type Command interface {
	Execute(ctx context.Context) error
}

// CreateOperationCommand books an operation. Result holds it after a
// successful Execute.
type CreateOperationCommand struct {
	Service     *OperationService
	Type        core.ItemType
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Date        core.Date
	CategoryID  uuid.UUID
	Description string

	Result core.Operation
}

func (c *CreateOperationCommand) Execute(ctx context.Context) error {
	op, err := c.Service.CreateOperation(ctx, c.Type, c.AccountID, c.Amount, c.Date, c.CategoryID, c.Description)
	if err != nil {
		return err
	}
	c.Result = op
	return nil
}

type DeleteOperationCommand struct {
	Service *OperationService
	ID      uuid.UUID
}

func (c *DeleteOperationCommand) Execute(ctx context.Context) error {
	return c.Service.DeleteOperation(ctx, c.ID)
}

// TimedCommand reports how long a successful Execute of the wrapped
// command took. Failures are returned without a report.
type TimedCommand struct {
	cmd        Command
	onExecuted func(time.Duration)
}

func NewTimedCommand(cmd Command, onExecuted func(time.Duration)) *TimedCommand {
	return &TimedCommand{cmd: cmd, onExecuted: onExecuted}
}

func (c *TimedCommand) Execute(ctx context.Context) error {
	start := time.Now()
	if err := c.cmd.Execute(ctx); err != nil {
		return err
	}
	if c.onExecuted != nil {
		c.onExecuted(time.Since(start))
	}
	return nil
}

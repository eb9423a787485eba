package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

// OperationStore persists operations and keeps the owning account's
// balance equal to the signed sum of its operations. Create and delete
// write the operation and the account in one transaction.
type OperationStore struct {
	db *DB
}

func NewOperationStore(db *DB) *OperationStore {
	return &OperationStore{db: db}
}

func (s *OperationStore) GetAllOperations(ctx context.Context) ([]core.Operation, error) {
	rows, err := s.db.queries.ListOperations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}

	ops := make([]core.Operation, 0, len(rows))
	for _, r := range rows {
		op, err := r.toCore()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (s *OperationStore) CreateOperation(ctx context.Context, t core.ItemType, accountID uuid.UUID, amount decimal.Decimal, date core.Date, categoryID uuid.UUID, description string) (core.Operation, error) {
	// Shape errors are reported before the store is touched.
	op, err := core.NewOperation(t, accountID, amount, date, categoryID, description)
	if err != nil {
		return core.Operation{}, err
	}

	var balance decimal.Decimal
	err = s.db.withTx(ctx, func(q *Queries) error {
		account, err := loadAccount(ctx, q, accountID)
		if err != nil {
			return err
		}
		if err := requireCategory(ctx, q, categoryID); err != nil {
			return err
		}

		row := operationRow(op)
		if err := q.InsertOperation(ctx, row); err != nil {
			return txErr("insert operation", err)
		}
		if op, err = row.toCore(); err != nil {
			return err
		}

		account.UpdateBalance(op.Amount, op.Type)
		if _, err := q.UpdateBankAccountBalance(ctx, account.ID.String(), account.Balance.String()); err != nil {
			return txErr("update balance", err)
		}
		balance = account.Balance
		return nil
	})
	if err != nil {
		return core.Operation{}, err
	}

	slog.InfoContext(ctx, "Operation created",
		"component", "storage",
		"id", op.ID,
		"type", op.Type,
		"account_id", op.BankAccountID,
		"amount", op.Amount.String(),
		"balance", balance.String())

	return op, nil
}

func (s *OperationStore) GetOperation(ctx context.Context, id uuid.UUID) (*core.Operation, error) {
	row, err := s.db.queries.GetOperation(ctx, id.String())
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get operation: %w", err)
	}

	op, err := row.toCore()
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// DeleteOperation removes the operation and reverses its effect on the
// owning account. A missing operation is reported as false; a missing
// owning account is an internal inconsistency and fails with core.ErrNotFound.
func (s *OperationStore) DeleteOperation(ctx context.Context, id uuid.UUID) (bool, error) {
	var (
		found bool
		op    core.Operation
	)
	err := s.db.withTx(ctx, func(q *Queries) error {
		row, err := q.GetOperation(ctx, id.String())
		if isNoRows(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get operation: %w", err)
		}
		if op, err = row.toCore(); err != nil {
			return err
		}

		account, err := loadAccount(ctx, q, op.BankAccountID)
		if err != nil {
			return fmt.Errorf("owning account of operation %s: %w", id, err)
		}

		if _, err := q.DeleteOperation(ctx, id.String()); err != nil {
			return txErr("delete operation", err)
		}

		account.UpdateBalance(op.Amount, op.Type.Opposite())
		if _, err := q.UpdateBankAccountBalance(ctx, account.ID.String(), account.Balance.String()); err != nil {
			return txErr("update balance", err)
		}
		found = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	slog.InfoContext(ctx, "Operation deleted",
		"component", "storage",
		"id", id,
		"account_id", op.BankAccountID,
		"amount", op.Amount.String())
	return true, nil
}

func (s *OperationStore) UpdateOperation(ctx context.Context, op core.Operation) error {
	if err := op.Validate(); err != nil {
		return err
	}

	err := s.db.withTx(ctx, func(q *Queries) error {
		row, err := q.GetOperation(ctx, op.ID.String())
		if isNoRows(err) {
			return notFound("operation", op.ID)
		}
		if err != nil {
			return fmt.Errorf("get operation: %w", err)
		}
		stored, err := row.toCore()
		if err != nil {
			return err
		}

		if !stored.SameBooking(op) {
			return fmt.Errorf("%w: operation %s: only category and description can change", core.ErrInvalidMutation, op.ID)
		}
		if err := requireCategory(ctx, q, op.CategoryID); err != nil {
			return err
		}

		if _, err := q.UpdateOperationDetails(ctx, op.ID.String(), op.CategoryID.String(), op.Description); err != nil {
			return txErr("update operation", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Operation updated",
		"component", "storage",
		"id", op.ID,
		"category_id", op.CategoryID)
	return nil
}

func (s *OperationStore) UploadOperation(ctx context.Context, op core.Operation) error {
	if err := op.Validate(); err != nil {
		return err
	}

	return s.db.withTx(ctx, func(q *Queries) error {
		_, err := q.GetOperation(ctx, op.ID.String())
		if err == nil {
			return alreadyExists("operation", op.ID)
		}
		if !isNoRows(err) {
			return fmt.Errorf("check operation: %w", err)
		}

		if _, err := loadAccount(ctx, q, op.BankAccountID); err != nil {
			return err
		}
		if err := requireCategory(ctx, q, op.CategoryID); err != nil {
			return err
		}

		if err := q.InsertOperation(ctx, operationRow(op)); err != nil {
			return txErr("insert operation", err)
		}
		return nil
	})
}

func (s *OperationStore) Accept(ctx context.Context, v core.Visitor) error {
	ops, err := s.GetAllOperations(ctx)
	if err != nil {
		return err
	}
	for _, op := range ops {
		op.Accept(v)
	}
	return nil
}

func loadAccount(ctx context.Context, q *Queries, id uuid.UUID) (core.BankAccount, error) {
	row, err := q.GetBankAccount(ctx, id.String())
	if isNoRows(err) {
		return core.BankAccount{}, notFound("bank account", id)
	}
	if err != nil {
		return core.BankAccount{}, fmt.Errorf("get bank account: %w", err)
	}
	return row.toCore()
}

func requireCategory(ctx context.Context, q *Queries, id uuid.UUID) error {
	_, err := q.GetCategory(ctx, id.String())
	if isNoRows(err) {
		return notFound("category", id)
	}
	if err != nil {
		return fmt.Errorf("get category: %w", err)
	}
	return nil
}

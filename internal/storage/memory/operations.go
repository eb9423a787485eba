package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

// OperationStore stages the operation and the adjusted account, then
// applies both only after commit succeeds.
type OperationStore struct {
	s *Store
}

func NewOperationStore(s *Store) *OperationStore {
	return &OperationStore{s: s}
}

func (o *OperationStore) GetAllOperations(_ context.Context) ([]core.Operation, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	return o.s.operations.Values(), nil
}

func (o *OperationStore) CreateOperation(_ context.Context, t core.ItemType, accountID uuid.UUID, amount decimal.Decimal, date core.Date, categoryID uuid.UUID, description string) (core.Operation, error) {
	op, err := core.NewOperation(t, accountID, amount, date, categoryID, description)
	if err != nil {
		return core.Operation{}, err
	}

	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	account, ok := o.s.accounts.Get(accountID)
	if !ok {
		return core.Operation{}, notFound("bank account", accountID)
	}
	if !o.s.categories.Has(categoryID) {
		return core.Operation{}, notFound("category", categoryID)
	}

	account.UpdateBalance(op.Amount, op.Type)
	if err := o.s.commit("create operation"); err != nil {
		return core.Operation{}, err
	}
	o.s.operations.Set(op.ID, op)
	o.s.accounts.Set(account.ID, account)
	return op, nil
}

func (o *OperationStore) GetOperation(_ context.Context, id uuid.UUID) (*core.Operation, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	op, ok := o.s.operations.Get(id)
	if !ok {
		return nil, nil
	}
	return &op, nil
}

func (o *OperationStore) DeleteOperation(_ context.Context, id uuid.UUID) (bool, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	op, ok := o.s.operations.Get(id)
	if !ok {
		return false, nil
	}
	account, ok := o.s.accounts.Get(op.BankAccountID)
	if !ok {
		return false, fmt.Errorf("owning account of operation %s: %w", id, notFound("bank account", op.BankAccountID))
	}

	account.UpdateBalance(op.Amount, op.Type.Opposite())
	if err := o.s.commit("delete operation"); err != nil {
		return false, err
	}
	o.s.operations.Delete(id)
	o.s.accounts.Set(account.ID, account)
	return true, nil
}

func (o *OperationStore) UpdateOperation(_ context.Context, op core.Operation) error {
	if err := op.Validate(); err != nil {
		return err
	}

	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	stored, ok := o.s.operations.Get(op.ID)
	if !ok {
		return notFound("operation", op.ID)
	}
	if !stored.SameBooking(op) {
		return fmt.Errorf("%w: operation %s: only category and description can change", core.ErrInvalidMutation, op.ID)
	}
	if !o.s.categories.Has(op.CategoryID) {
		return notFound("category", op.CategoryID)
	}

	stored.CategoryID = op.CategoryID
	stored.Description = op.Description
	o.s.operations.Set(op.ID, stored)
	return nil
}

func (o *OperationStore) UploadOperation(_ context.Context, op core.Operation) error {
	if err := op.Validate(); err != nil {
		return err
	}

	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	if o.s.operations.Has(op.ID) {
		return alreadyExists("operation", op.ID)
	}
	if !o.s.accounts.Has(op.BankAccountID) {
		return notFound("bank account", op.BankAccountID)
	}
	if !o.s.categories.Has(op.CategoryID) {
		return notFound("category", op.CategoryID)
	}
	o.s.operations.Set(op.ID, op.Canonical())
	return nil
}

func (o *OperationStore) Accept(ctx context.Context, v core.Visitor) error {
	ops, err := o.GetAllOperations(ctx)
	if err != nil {
		return err
	}
	for _, op := range ops {
		op.Accept(v)
	}
	return nil
}

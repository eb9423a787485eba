package proxy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/cache"
	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/repository"
)

// AccountRefresher re-reads one account into a cache. *AccountProxy
// implements it.
type AccountRefresher interface {
	RefreshBankAccount(ctx context.Context, id uuid.UUID) error
}

type OperationProxy struct {
	repo     repository.OperationRepository
	cache    *cache.IdentityMap[uuid.UUID, core.Operation]
	accounts AccountRefresher
}

type OperationOption func(*OperationProxy)

// WithAccountRefresher makes the proxy refresh the owning account after
// every create and delete, since those change its balance in storage.
func WithAccountRefresher(r AccountRefresher) OperationOption {
	return func(p *OperationProxy) {
		p.accounts = r
	}
}

func NewOperationProxy(ctx context.Context, repo repository.OperationRepository, opts ...OperationOption) (*OperationProxy, error) {
	ops, err := repo.GetAllOperations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load operations: %w", err)
	}

	p := &OperationProxy{repo: repo, cache: cache.NewIdentityMap[uuid.UUID, core.Operation]()}
	for _, opt := range opts {
		opt(p)
	}
	for _, op := range ops {
		p.cache.Set(op.ID, op)
	}
	debug(ctx, "Operations cached", log.FieldCount, len(ops))
	return p, nil
}

func (p *OperationProxy) GetAllOperations(_ context.Context) ([]core.Operation, error) {
	return p.cache.Values(), nil
}

func (p *OperationProxy) CreateOperation(ctx context.Context, t core.ItemType, accountID uuid.UUID, amount decimal.Decimal, date core.Date, categoryID uuid.UUID, description string) (core.Operation, error) {
	op, err := p.repo.CreateOperation(ctx, t, accountID, amount, date, categoryID, description)
	if err != nil {
		return core.Operation{}, err
	}
	p.cache.Set(op.ID, op)
	p.refreshAccount(ctx, op.BankAccountID)
	return op, nil
}

func (p *OperationProxy) GetOperation(ctx context.Context, id uuid.UUID) (*core.Operation, error) {
	if op, ok := p.cache.Get(id); ok {
		return &op, nil
	}

	op, err := p.repo.GetOperation(ctx, id)
	if err != nil || op == nil {
		return op, err
	}
	p.cache.Set(op.ID, *op)
	debug(ctx, "Operation cache filled", log.FieldOperationID, id)
	return op, nil
}

func (p *OperationProxy) DeleteOperation(ctx context.Context, id uuid.UUID) (bool, error) {
	var accountID uuid.UUID
	if p.accounts != nil {
		op, err := p.GetOperation(ctx, id)
		if err != nil {
			return false, err
		}
		if op != nil {
			accountID = op.BankAccountID
		}
	}

	ok, err := p.repo.DeleteOperation(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	p.cache.Delete(id)
	if accountID != uuid.Nil {
		p.refreshAccount(ctx, accountID)
	}
	return true, nil
}

// UpdateOperation delegates and caches op in canonical form. The wrapped
// repository rejects changes to anything but category and description.
func (p *OperationProxy) UpdateOperation(ctx context.Context, op core.Operation) error {
	if err := p.repo.UpdateOperation(ctx, op); err != nil {
		return err
	}
	p.cache.Set(op.ID, op.Canonical())
	return nil
}

func (p *OperationProxy) UploadOperation(ctx context.Context, op core.Operation) error {
	if p.cache.Has(op.ID) {
		return alreadyCached("operation", op.ID)
	}
	if err := p.repo.UploadOperation(ctx, op); err != nil {
		return err
	}
	p.cache.Set(op.ID, op.Canonical())
	return nil
}

func (p *OperationProxy) Accept(_ context.Context, v core.Visitor) error {
	for _, op := range p.cache.Values() {
		op.Accept(v)
	}
	return nil
}

// refreshAccount failures are logged only: the operation is already
// committed and the refresher has dropped its stale entry.
func (p *OperationProxy) refreshAccount(ctx context.Context, id uuid.UUID) {
	if p.accounts == nil {
		return
	}
	if err := p.accounts.RefreshBankAccount(ctx, id); err != nil {
		log.For(ctx, log.ComponentProxy).WarnContext(ctx, "Failed to refresh bank account after balance change",
			log.FieldAccountID, id,
			log.FieldError, err)
	}
}

package proxy

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"finledger/internal/cache"
	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/repository"
)

type AccountProxy struct {
	repo  repository.AccountRepository
	cache *cache.IdentityMap[uuid.UUID, core.BankAccount]
}

// NewAccountProxy loads every account from repo in one call.
func NewAccountProxy(ctx context.Context, repo repository.AccountRepository) (*AccountProxy, error) {
	accounts, err := repo.GetAllBankAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bank accounts: %w", err)
	}

	p := &AccountProxy{repo: repo, cache: cache.NewIdentityMap[uuid.UUID, core.BankAccount]()}
	for _, a := range accounts {
		p.cache.Set(a.ID, a)
	}
	debug(ctx, "Bank accounts cached", log.FieldCount, len(accounts))
	return p, nil
}

func (p *AccountProxy) GetAllBankAccounts(_ context.Context) ([]core.BankAccount, error) {
	return p.cache.Values(), nil
}

func (p *AccountProxy) CreateBankAccount(ctx context.Context, name string) (core.BankAccount, error) {
	account, err := p.repo.CreateBankAccount(ctx, name)
	if err != nil {
		return core.BankAccount{}, err
	}
	p.cache.Set(account.ID, account)
	return account, nil
}

// GetBankAccount serves cached accounts and fills the cache on a miss.
func (p *AccountProxy) GetBankAccount(ctx context.Context, id uuid.UUID) (*core.BankAccount, error) {
	if a, ok := p.cache.Get(id); ok {
		return &a, nil
	}

	a, err := p.repo.GetBankAccount(ctx, id)
	if err != nil || a == nil {
		return a, err
	}
	p.cache.Set(a.ID, *a)
	debug(ctx, "Bank account cache filled", log.FieldAccountID, id)
	return a, nil
}

func (p *AccountProxy) DeleteBankAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := p.repo.DeleteBankAccount(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	p.cache.Delete(id)
	return true, nil
}

func (p *AccountProxy) UpdateBankAccount(ctx context.Context, account core.BankAccount) error {
	if err := p.repo.UpdateBankAccount(ctx, account); err != nil {
		return err
	}
	p.cache.Set(account.ID, account.Canonical())
	return nil
}

// UploadBankAccount rejects ids already cached without calling the
// wrapped repository.
func (p *AccountProxy) UploadBankAccount(ctx context.Context, account core.BankAccount) error {
	if p.cache.Has(account.ID) {
		return alreadyCached("bank account", account.ID)
	}
	if err := p.repo.UploadBankAccount(ctx, account); err != nil {
		return err
	}
	p.cache.Set(account.ID, account.Canonical())
	return nil
}

// RecalculateBalance delegates, then replaces the cached entry with the
// account as stored after the recalculation.
func (p *AccountProxy) RecalculateBalance(ctx context.Context, id uuid.UUID) error {
	if err := p.repo.RecalculateBalance(ctx, id); err != nil {
		return err
	}
	if err := p.RefreshBankAccount(ctx, id); err != nil {
		return err
	}
	if _, ok := p.cache.Get(id); !ok {
		return fmt.Errorf("%w: bank account %s vanished after recalculation", core.ErrNotFound, id)
	}
	return nil
}

// RefreshBankAccount re-reads one account from the wrapped repository.
// An account that no longer exists is dropped from the cache; on a read
// error the entry is dropped too, so the next read goes to storage.
func (p *AccountProxy) RefreshBankAccount(ctx context.Context, id uuid.UUID) error {
	a, err := p.repo.GetBankAccount(ctx, id)
	if err != nil {
		p.cache.Delete(id)
		return fmt.Errorf("refresh bank account %s: %w", id, err)
	}
	if a == nil {
		p.cache.Delete(id)
		return nil
	}
	p.cache.Set(id, *a)
	debug(ctx, "Bank account refreshed",
		log.FieldAccountID, id,
		log.FieldBalance, a.Balance.String())
	return nil
}

func (p *AccountProxy) Accept(_ context.Context, v core.Visitor) error {
	for _, a := range p.cache.Values() {
		a.Accept(v)
	}
	return nil
}

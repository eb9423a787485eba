package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

type AccountStore struct {
	s *Store
}

func NewAccountStore(s *Store) *AccountStore {
	return &AccountStore{s: s}
}

func (a *AccountStore) GetAllBankAccounts(_ context.Context) ([]core.BankAccount, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return a.s.accounts.Values(), nil
}

func (a *AccountStore) CreateBankAccount(_ context.Context, name string) (core.BankAccount, error) {
	account, err := core.NewBankAccount(name)
	if err != nil {
		return core.BankAccount{}, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	a.s.accounts.Set(account.ID, account)
	return account, nil
}

func (a *AccountStore) GetBankAccount(_ context.Context, id uuid.UUID) (*core.BankAccount, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	account, ok := a.s.accounts.Get(id)
	if !ok {
		return nil, nil
	}
	return &account, nil
}

func (a *AccountStore) DeleteBankAccount(_ context.Context, id uuid.UUID) (bool, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if !a.s.accounts.Has(id) {
		return false, nil
	}
	a.s.accounts.Delete(id)
	return true, nil
}

// UpdateBankAccount overwrites name and balance. Setting the balance here
// bypasses the operation ledger; RecalculateBalance restores it.
func (a *AccountStore) UpdateBankAccount(_ context.Context, account core.BankAccount) error {
	if err := account.Validate(); err != nil {
		return err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if !a.s.accounts.Has(account.ID) {
		return notFound("bank account", account.ID)
	}
	a.s.accounts.Set(account.ID, account.Canonical())
	return nil
}

func (a *AccountStore) UploadBankAccount(_ context.Context, account core.BankAccount) error {
	if err := account.Validate(); err != nil {
		return err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if a.s.accounts.Has(account.ID) {
		return alreadyExists("bank account", account.ID)
	}
	a.s.accounts.Set(account.ID, account.Canonical())
	return nil
}

func (a *AccountStore) RecalculateBalance(_ context.Context, id uuid.UUID) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	account, ok := a.s.accounts.Get(id)
	if !ok {
		return notFound("bank account", id)
	}

	balance := decimal.Zero
	for _, op := range a.s.operations.Values() {
		if op.BankAccountID == id {
			balance = balance.Add(op.SignedAmount())
		}
	}

	if err := a.s.commit("update balance"); err != nil {
		return err
	}
	account.Balance = core.CanonicalAmount(balance)
	a.s.accounts.Set(id, account)
	return nil
}

func (a *AccountStore) Accept(ctx context.Context, v core.Visitor) error {
	accounts, err := a.GetAllBankAccounts(ctx)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		account.Accept(v)
	}
	return nil
}

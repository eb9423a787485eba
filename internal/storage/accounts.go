package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"finledger/internal/core"
)

type AccountStore struct {
	db *DB
}

func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) GetAllBankAccounts(ctx context.Context) ([]core.BankAccount, error) {
	rows, err := s.db.queries.ListBankAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}

	accounts := make([]core.BankAccount, 0, len(rows))
	for _, r := range rows {
		a, err := r.toCore()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (s *AccountStore) CreateBankAccount(ctx context.Context, name string) (core.BankAccount, error) {
	account, err := core.NewBankAccount(name)
	if err != nil {
		return core.BankAccount{}, err
	}

	row := bankAccountRow(account)
	if err := s.db.queries.InsertBankAccount(ctx, row); err != nil {
		return core.BankAccount{}, fmt.Errorf("insert bank account: %w", err)
	}
	// Return the entity exactly as a later read maps it.
	if account, err = row.toCore(); err != nil {
		return core.BankAccount{}, err
	}

	slog.InfoContext(ctx, "Bank account created",
		"component", "storage",
		"id", account.ID,
		"name", account.Name)

	return account, nil
}

func (s *AccountStore) GetBankAccount(ctx context.Context, id uuid.UUID) (*core.BankAccount, error) {
	row, err := s.db.queries.GetBankAccount(ctx, id.String())
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bank account: %w", err)
	}

	account, err := row.toCore()
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *AccountStore) DeleteBankAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := s.db.queries.DeleteBankAccount(ctx, id.String())
	if err != nil {
		return false, fmt.Errorf("delete bank account: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	slog.InfoContext(ctx, "Bank account deleted", "component", "storage", "id", id)
	return true, nil
}

func (s *AccountStore) UpdateBankAccount(ctx context.Context, account core.BankAccount) error {
	if err := account.Validate(); err != nil {
		return err
	}

	n, err := s.db.queries.UpdateBankAccount(ctx, bankAccountRow(account))
	if err != nil {
		return fmt.Errorf("update bank account: %w", err)
	}
	if n == 0 {
		return notFound("bank account", account.ID)
	}

	slog.InfoContext(ctx, "Bank account updated",
		"component", "storage",
		"id", account.ID,
		"name", account.Name,
		"balance", account.Balance.String())
	return nil
}

func (s *AccountStore) UploadBankAccount(ctx context.Context, account core.BankAccount) error {
	if err := account.Validate(); err != nil {
		return err
	}

	return s.db.withTx(ctx, func(q *Queries) error {
		_, err := q.GetBankAccount(ctx, account.ID.String())
		if err == nil {
			return alreadyExists("bank account", account.ID)
		}
		if !isNoRows(err) {
			return fmt.Errorf("check bank account: %w", err)
		}

		if err := q.InsertBankAccount(ctx, bankAccountRow(account)); err != nil {
			return txErr("insert bank account", err)
		}
		return nil
	})
}

func (s *AccountStore) RecalculateBalance(ctx context.Context, id uuid.UUID) error {
	return s.db.withTx(ctx, func(q *Queries) error {
		row, err := q.GetBankAccount(ctx, id.String())
		if isNoRows(err) {
			return notFound("bank account", id)
		}
		if err != nil {
			return fmt.Errorf("get bank account: %w", err)
		}

		amounts, err := q.ListOperationAmountsByAccount(ctx, id.String())
		if err != nil {
			return fmt.Errorf("list operation amounts: %w", err)
		}
		balance, err := signedSum(amounts)
		if err != nil {
			return err
		}

		if _, err := q.UpdateBankAccountBalance(ctx, id.String(), balance.String()); err != nil {
			return txErr("update balance", err)
		}

		slog.InfoContext(ctx, "Bank account balance recalculated",
			"component", "storage",
			"id", id,
			"previous_balance", row.Balance,
			"balance", balance.String(),
			"operations", len(amounts))
		return nil
	})
}

func (s *AccountStore) Accept(ctx context.Context, v core.Visitor) error {
	accounts, err := s.GetAllBankAccounts(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		a.Accept(v)
	}
	return nil
}

// Package repository declares the storage contracts of the ledger.
//
// Stores (SQLite, in-memory) and the caching proxies implement the same
// interfaces, so callers never know whether a cache sits in between.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

type (
	AccountRepository interface {
		GetAllBankAccounts(ctx context.Context) ([]core.BankAccount, error)
		CreateBankAccount(ctx context.Context, name string) (core.BankAccount, error)
		// GetBankAccount returns nil, nil when the account does not exist.
		GetBankAccount(ctx context.Context, id uuid.UUID) (*core.BankAccount, error)
		// DeleteBankAccount reports false when there was nothing to delete.
		DeleteBankAccount(ctx context.Context, id uuid.UUID) (bool, error)
		// UpdateBankAccount overwrites name and balance. Setting the balance
		// here is a manual correction and bypasses the operation ledger;
		// RecalculateBalance restores the derived value.
		UpdateBankAccount(ctx context.Context, account core.BankAccount) error
		// UploadBankAccount inserts an imported account as-is and fails with
		// core.ErrAlreadyExists when the id is taken.
		UploadBankAccount(ctx context.Context, account core.BankAccount) error
		// RecalculateBalance sets the balance to the signed sum of the
		// account's operations.
		RecalculateBalance(ctx context.Context, id uuid.UUID) error
		Accept(ctx context.Context, v core.Visitor) error
	}

	CategoryRepository interface {
		GetAllCategories(ctx context.Context) ([]core.Category, error)
		CreateCategory(ctx context.Context, t core.ItemType, name string) (core.Category, error)
		GetCategory(ctx context.Context, id uuid.UUID) (*core.Category, error)
		DeleteCategory(ctx context.Context, id uuid.UUID) (bool, error)
		UpdateCategory(ctx context.Context, category core.Category) error
		UploadCategory(ctx context.Context, category core.Category) error
		Accept(ctx context.Context, v core.Visitor) error
	}

	// OperationRepository keeps account balances in step with operations:
	// create and delete adjust the owning account in the same transaction.
	OperationRepository interface {
		GetAllOperations(ctx context.Context) ([]core.Operation, error)
		CreateOperation(ctx context.Context, t core.ItemType, accountID uuid.UUID, amount decimal.Decimal, date core.Date, categoryID uuid.UUID, description string) (core.Operation, error)
		GetOperation(ctx context.Context, id uuid.UUID) (*core.Operation, error)
		DeleteOperation(ctx context.Context, id uuid.UUID) (bool, error)
		// UpdateOperation changes category and description only. Any other
		// difference from the stored record fails with core.ErrInvalidMutation.
		UpdateOperation(ctx context.Context, op core.Operation) error
		// UploadOperation inserts an imported operation without touching
		// balances; imported accounts already carry them.
		UploadOperation(ctx context.Context, op core.Operation) error
		Accept(ctx context.Context, v core.Visitor) error
	}
)

package proxy

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
	"finledger/internal/repository"
	"finledger/internal/storage"
	"finledger/internal/storage/memory"
)

type backend struct {
	accounts   repository.AccountRepository
	categories repository.CategoryRepository
	operations repository.OperationRepository
	// failNext makes the next write fail inside its transaction; nil when
	// the backend cannot inject failures.
	failNext func()
}

func memoryBackend(t *testing.T) backend {
	store := memory.New()
	return backend{
		accounts:   memory.NewAccountStore(store),
		categories: memory.NewCategoryStore(store),
		operations: memory.NewOperationStore(store),
		failNext:   func() { store.FailNextWrite(errStore) },
	}
}

func sqliteBackend(t *testing.T) backend {
	db, err := storage.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return backend{
		accounts:   storage.NewAccountStore(db),
		categories: storage.NewCategoryStore(db),
		operations: storage.NewOperationStore(db),
	}
}

// After each successful write through the proxies their maps must match
// a fresh read of the wrapped stores, field for field.
func TestProxiesStayCoherentWithStore(t *testing.T) {
	tests := []struct {
		name string
		open func(t *testing.T) backend
	}{
		{name: "memory", open: memoryBackend},
		{name: "sqlite", open: sqliteBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runCoherence(t, tt.open(t))
		})
	}
}

func runCoherence(t *testing.T, b backend) {
	accounts, err := NewAccountProxy(ctx, b.accounts)
	require.NoError(t, err)
	categories, err := NewCategoryProxy(ctx, b.categories)
	require.NoError(t, err)
	operations, err := NewOperationProxy(ctx, b.operations, WithAccountRefresher(accounts))
	require.NoError(t, err)

	check := func(t *testing.T) {
		t.Helper()
		wantAccounts, err := b.accounts.GetAllBankAccounts(ctx)
		require.NoError(t, err)
		gotAccounts, _ := accounts.GetAllBankAccounts(ctx)
		assert.Equal(t, wantAccounts, gotAccounts)

		wantCategories, err := b.categories.GetAllCategories(ctx)
		require.NoError(t, err)
		gotCategories, _ := categories.GetAllCategories(ctx)
		assert.Equal(t, wantCategories, gotCategories)

		wantOps, err := b.operations.GetAllOperations(ctx)
		require.NoError(t, err)
		gotOps, _ := operations.GetAllOperations(ctx)
		assert.Equal(t, wantOps, gotOps)
	}

	main, err := accounts.CreateBankAccount(ctx, "Main")
	require.NoError(t, err)
	salary, err := categories.CreateCategory(ctx, core.Income, "Salary")
	require.NoError(t, err)
	food, err := categories.CreateCategory(ctx, core.Expense, "Food")
	require.NoError(t, err)
	check(t)

	pay, err := operations.CreateOperation(ctx, core.Income, main.ID, d("1500"), core.NewDate(2024, 1, 31), salary.ID, "January")
	require.NoError(t, err)
	lunch, err := operations.CreateOperation(ctx, core.Expense, main.ID, d("14.90"), core.NewDate(2024, 2, 1), food.ID, "")
	require.NoError(t, err)
	// Trailing zeros and a non-UTC zone are what a store normalizes on read.
	cet := core.Date{Time: time.Date(2024, 2, 3, 9, 30, 0, 0, time.FixedZone("CET", 3600))}
	_, err = operations.CreateOperation(ctx, core.Expense, main.ID, d("3.50"), cet, food.ID, "coffee")
	require.NoError(t, err)
	check(t)

	got, _ := accounts.GetBankAccount(ctx, main.ID)
	assert.True(t, got.Balance.Equal(d("1481.60")))

	lunch.Description = "team lunch"
	require.NoError(t, operations.UpdateOperation(ctx, lunch))
	check(t)

	ok, err := operations.DeleteOperation(ctx, pay.ID)
	require.NoError(t, err)
	require.True(t, ok)
	check(t)

	got, _ = accounts.GetBankAccount(ctx, main.ID)
	assert.True(t, got.Balance.Equal(d("-18.40")))

	// Manual correction, then repair.
	corrected := *got
	corrected.Balance = d("10.50")
	require.NoError(t, accounts.UpdateBankAccount(ctx, corrected))
	check(t)
	require.NoError(t, accounts.RecalculateBalance(ctx, main.ID))
	check(t)

	got, _ = accounts.GetBankAccount(ctx, main.ID)
	assert.True(t, got.Balance.Equal(d("-18.40")))

	uploaded := core.Operation{
		ID:            uuid.New(),
		Type:          core.Income,
		BankAccountID: main.ID,
		Amount:        d("20.00"),
		Date:          cet,
		CategoryID:    salary.ID,
		Description:   "refund",
	}
	require.NoError(t, operations.UploadOperation(ctx, uploaded))
	check(t)

	// A failed write must not touch the caches either.
	if b.failNext != nil {
		b.failNext()
		_, err = operations.CreateOperation(ctx, core.Expense, main.ID, d("1"), core.NewDate(2024, 2, 2), food.ID, "")
		require.ErrorIs(t, err, core.ErrTransaction)
		check(t)
	}
	_, err = operations.CreateOperation(ctx, core.Expense, uuid.New(), d("1"), core.NewDate(2024, 2, 2), food.ID, "")
	require.ErrorIs(t, err, core.ErrNotFound)
	check(t)
}

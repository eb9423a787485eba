package proxy

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
)

var (
	ctx      = context.Background()
	errStore = errors.New("store unavailable")
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func account(name, balance string) core.BankAccount {
	return core.BankAccount{ID: uuid.New(), Name: name, Balance: d(balance)}
}

func TestNewAccountProxyLoadsOnce(t *testing.T) {
	main, savings := account("Main", "10"), account("Savings", "20")
	repo := &mockAccountRepo{}
	repo.On("GetAllBankAccounts", mock.Anything).Return([]core.BankAccount{main, savings}, nil).Once()

	p, err := NewAccountProxy(ctx, repo)
	require.NoError(t, err)

	all, err := p.GetAllBankAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.BankAccount{main, savings}, all)

	got, err := p.GetBankAccount(ctx, savings.ID)
	require.NoError(t, err)
	assert.Equal(t, savings, *got)

	repo.AssertNumberOfCalls(t, "GetAllBankAccounts", 1)
	repo.AssertNotCalled(t, "GetBankAccount", mock.Anything, mock.Anything)
}

func TestNewAccountProxyLoadFailure(t *testing.T) {
	repo := &mockAccountRepo{}
	repo.On("GetAllBankAccounts", mock.Anything).Return([]core.BankAccount(nil), errStore)

	_, err := NewAccountProxy(ctx, repo)
	require.ErrorIs(t, err, errStore)
}

func TestAccountProxyLazyFill(t *testing.T) {
	external := account("External", "5")
	repo := &mockAccountRepo{}
	repo.On("GetAllBankAccounts", mock.Anything).Return([]core.BankAccount{}, nil)
	repo.On("GetBankAccount", mock.Anything, external.ID).Return(&external, nil).Once()

	p, err := NewAccountProxy(ctx, repo)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := p.GetBankAccount(ctx, external.ID)
		require.NoError(t, err)
		assert.Equal(t, external, *got)
	}
	repo.AssertNumberOfCalls(t, "GetBankAccount", 1)
}

func TestAccountProxyMissReturnsNil(t *testing.T) {
	id := uuid.New()
	repo := &mockAccountRepo{}
	repo.On("GetAllBankAccounts", mock.Anything).Return([]core.BankAccount{}, nil)
	repo.On("GetBankAccount", mock.Anything, id).Return(nil, nil)

	p, _ := NewAccountProxy(ctx, repo)

	got, err := p.GetBankAccount(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Absence is not cached.
	_, _ = p.GetBankAccount(ctx, id)
	repo.AssertNumberOfCalls(t, "GetBankAccount", 2)
}

func TestAccountProxyWritesNeverRefetch(t *testing.T) {
	existing := account("Existing", "0")
	created := account("Created", "0")

	repo := &mockAccountRepo{}
	repo.On("GetAllBankAccounts", mock.Anything).Return([]core.BankAccount{existing}, nil)
	repo.On("CreateBankAccount", mock.Anything, "Created").Return(created, nil)
	repo.On("UpdateBankAccount", mock.Anything, mock.Anything).Return(nil)

	p, _ := NewAccountProxy(ctx, repo)

	_, err := p.CreateBankAccount(ctx, "Created")
	require.NoError(t, err)
	got, _ := p.GetBankAccount(ctx, created.ID)
	assert.Equal(t, created, *got)

	renamed := existing
	renamed.Name = "Renamed"
	require.NoError(t, p.UpdateBankAccount(ctx, renamed))
	got, _ = p.GetBankAccount(ctx, existing.ID)
	assert.Equal(t, "Renamed", got.Name)

	all, _ := p.GetAllBankAccounts(ctx)
	assert.Equal(t, []core.BankAccount{renamed, created}, all)

	repo.AssertNotCalled(t, "GetBankAccount", mock.Anything, mock.Anything)
}

func TestAccountProxyFailedWritesLeaveCache(t *testing.T) {
	existing := account("Existing", "3")
	repo := &mockAccountRepo{}
	repo.On("GetAllBankAccounts", mock.Anything).Return([]core.BankAccount{existing}, nil)
	repo.On("CreateBankAccount", mock.Anything, "").Return(core.BankAccount{}, core.ErrEmptyName)
	repo.On("UpdateBankAccount", mock.Anything, mock.Anything).Return(errStore)

	p, _ := NewAccountProxy(ctx, repo)

	_, err := p.CreateBankAccount(ctx, "")
	require.ErrorIs(t, err, core.ErrValidation)

	changed := existing
	changed.Name = "Changed"
	require.ErrorIs(t, p.UpdateBankAccount(ctx, changed), errStore)

	all, _ := p.GetAllBankAccounts(ctx)
	assert.Equal(t, []core.BankAccount{existing}, all)
}

func TestAccountProxyDelete(t *testing.T) {
	a, b, c := account("A", "0"), account("B", "0"), account("C", "0")
	repo := &mockAccountRepo{}
	repo.On("GetAllBankAccounts", mock.Anything).Return([]core.BankAccount{a, b, c}, nil)
	repo.On("DeleteBankAccount", mock.Anything, a.ID).Return(true, nil)
	repo.On("DeleteBankAccount", mock.Anything, b.ID).Return(false, nil)
	repo.On("DeleteBankAccount", mock.Anything, c.ID).Return(false, errStore)

	p, _ := NewAccountProxy(ctx, repo)

	ok, err := p.DeleteBankAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.DeleteBankAccount(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = p.DeleteBankAccount(ctx, c.ID)
	require.ErrorIs(t, err, errStore)

	all, _ := p.GetAllBankAccounts(ctx)
	assert.Equal(t, []core.BankAccount{b, c}, all)

	got, err := p.GetBankAccount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, *got)
	repo.AssertNotCalled(t, "GetBankAccount", mock.Anything, mock.Anything)
}

func TestAccountProxyUploadChecksCacheFirst(t *testing.T) {
	existing := account("Existing", "1")
	fresh := account("Fresh", "2")
	repo := &mockAccountRepo{}
	repo.On("GetAllBankAccounts", mock.Anything).Return([]core.BankAccount{existing}, nil)
	repo.On("UploadBankAccount", mock.Anything, fresh).Return(nil)

	p, _ := NewAccountProxy(ctx, repo)

	err := p.UploadBankAccount(ctx, existing)
	require.ErrorIs(t, err, core.ErrAlreadyExists)
	repo.AssertNotCalled(t, "UploadBankAccount", mock.Anything, existing)

	require.NoError(t, p.UploadBankAccount(ctx, fresh))
	got, _ := p.GetBankAccount(ctx, fresh.ID)
	assert.Equal(t, fresh, *got)
	repo.AssertNotCalled(t, "GetBankAccount", mock.Anything, mock.Anything)
}

func TestAccountProxyRecalculatePullsStoredBalance(t *testing.T) {
	drifted := account("Main", "999")
	repaired := drifted
	repaired.Balance = d("12.34")

	repo := &mockAccountRepo{}
	repo.On("GetAllBankAccounts", mock.Anything).Return([]core.BankAccount{drifted}, nil)
	repo.On("RecalculateBalance", mock.Anything, drifted.ID).Return(nil)
	repo.On("GetBankAccount", mock.Anything, drifted.ID).Return(&repaired, nil).Once()

	p, _ := NewAccountProxy(ctx, repo)
	require.NoError(t, p.RecalculateBalance(ctx, drifted.ID))

	got, _ := p.GetBankAccount(ctx, drifted.ID)
	assert.True(t, got.Balance.Equal(d("12.34")))
	repo.AssertNumberOfCalls(t, "GetBankAccount", 1)
}

func TestAccountProxyRecalculateFailure(t *testing.T) {
	acc := account("Main", "7")
	missing := uuid.New()
	repo := &mockAccountRepo{}
	repo.On("GetAllBankAccounts", mock.Anything).Return([]core.BankAccount{acc}, nil)
	repo.On("RecalculateBalance", mock.Anything, acc.ID).Return(errStore)
	repo.On("RecalculateBalance", mock.Anything, missing).Return(core.ErrNotFound)

	p, _ := NewAccountProxy(ctx, repo)

	require.ErrorIs(t, p.RecalculateBalance(ctx, acc.ID), errStore)
	require.ErrorIs(t, p.RecalculateBalance(ctx, missing), core.ErrNotFound)

	got, _ := p.GetBankAccount(ctx, acc.ID)
	assert.True(t, got.Balance.Equal(d("7")))
	repo.AssertNotCalled(t, "GetBankAccount", mock.Anything, mock.Anything)
}

func TestAccountProxyRefreshDropsVanishedAccount(t *testing.T) {
	acc := account("Main", "1")
	repo := &mockAccountRepo{}
	repo.On("GetAllBankAccounts", mock.Anything).Return([]core.BankAccount{acc}, nil)
	repo.On("GetBankAccount", mock.Anything, acc.ID).Return(nil, nil)

	p, _ := NewAccountProxy(ctx, repo)
	require.NoError(t, p.RefreshBankAccount(ctx, acc.ID))

	all, _ := p.GetAllBankAccounts(ctx)
	assert.Empty(t, all)
}

func TestAccountProxyAcceptUsesCache(t *testing.T) {
	repo := &mockAccountRepo{}
	repo.On("GetAllBankAccounts", mock.Anything).Return([]core.BankAccount{account("A", "1"), account("B", "2")}, nil)

	p, _ := NewAccountProxy(ctx, repo)
	v := &countVisitor{}
	require.NoError(t, p.Accept(ctx, v))

	assert.Equal(t, 2, v.accounts)
	repo.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything)
}

func TestCategoryProxy(t *testing.T) {
	food := core.Category{ID: uuid.New(), Type: core.Expense, Name: "Food"}
	salary := core.Category{ID: uuid.New(), Type: core.Income, Name: "Salary"}

	repo := &mockCategoryRepo{}
	repo.On("GetAllCategories", mock.Anything).Return([]core.Category{food}, nil)
	repo.On("CreateCategory", mock.Anything, core.Income, "Salary").Return(salary, nil)
	repo.On("UpdateCategory", mock.Anything, mock.Anything).Return(nil)
	repo.On("DeleteCategory", mock.Anything, salary.ID).Return(true, nil)

	p, err := NewCategoryProxy(ctx, repo)
	require.NoError(t, err)

	_, err = p.CreateCategory(ctx, core.Income, "Salary")
	require.NoError(t, err)

	food.Name = "Groceries"
	require.NoError(t, p.UpdateCategory(ctx, food))
	got, _ := p.GetCategory(ctx, food.ID)
	assert.Equal(t, "Groceries", got.Name)

	require.ErrorIs(t, p.UploadCategory(ctx, salary), core.ErrAlreadyExists)
	repo.AssertNotCalled(t, "UploadCategory", mock.Anything, mock.Anything)

	ok, err := p.DeleteCategory(ctx, salary.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	all, _ := p.GetAllCategories(ctx)
	assert.Equal(t, []core.Category{food}, all)

	v := &countVisitor{}
	require.NoError(t, p.Accept(ctx, v))
	assert.Equal(t, 1, v.categories)

	repo.AssertNotCalled(t, "GetCategory", mock.Anything, mock.Anything)
}

func TestOperationProxyRefreshesOwningAccount(t *testing.T) {
	accountID, categoryID := uuid.New(), uuid.New()
	date := core.NewDate(2024, 3, 1)
	created := core.Operation{ID: uuid.New(), Type: core.Income, BankAccountID: accountID, Amount: d("10"), Date: date, CategoryID: categoryID}

	repo := &mockOperationRepo{}
	repo.On("GetAllOperations", mock.Anything).Return([]core.Operation{}, nil)
	repo.On("CreateOperation", mock.Anything, core.Income, accountID, d("10"), date, categoryID, "").Return(created, nil)
	repo.On("DeleteOperation", mock.Anything, created.ID).Return(true, nil)

	refresher := &mockRefresher{}
	refresher.On("RefreshBankAccount", mock.Anything, accountID).Return(nil)

	p, err := NewOperationProxy(ctx, repo, WithAccountRefresher(refresher))
	require.NoError(t, err)

	_, err = p.CreateOperation(ctx, core.Income, accountID, d("10"), date, categoryID, "")
	require.NoError(t, err)
	got, _ := p.GetOperation(ctx, created.ID)
	assert.Equal(t, created, *got)

	ok, err := p.DeleteOperation(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	all, _ := p.GetAllOperations(ctx)
	assert.Empty(t, all)

	refresher.AssertNumberOfCalls(t, "RefreshBankAccount", 2)
	repo.AssertNotCalled(t, "GetOperation", mock.Anything, mock.Anything)
}

func TestOperationProxyRefreshFailureIsNotFatal(t *testing.T) {
	accountID, categoryID := uuid.New(), uuid.New()
	date := core.NewDate(2024, 3, 1)
	created := core.Operation{ID: uuid.New(), Type: core.Expense, BankAccountID: accountID, Amount: d("1"), Date: date, CategoryID: categoryID}

	repo := &mockOperationRepo{}
	repo.On("GetAllOperations", mock.Anything).Return([]core.Operation{}, nil)
	repo.On("CreateOperation", mock.Anything, core.Expense, accountID, d("1"), date, categoryID, "x").Return(created, nil)

	refresher := &mockRefresher{}
	refresher.On("RefreshBankAccount", mock.Anything, accountID).Return(errStore)

	p, _ := NewOperationProxy(ctx, repo, WithAccountRefresher(refresher))
	op, err := p.CreateOperation(ctx, core.Expense, accountID, d("1"), date, categoryID, "x")
	require.NoError(t, err)
	assert.Equal(t, created.ID, op.ID)
}

func TestOperationProxyUpdateAndUpload(t *testing.T) {
	stored := core.Operation{ID: uuid.New(), Type: core.Expense, BankAccountID: uuid.New(), Amount: d("4"), Date: core.NewDate(2024, 1, 1), CategoryID: uuid.New()}
	imported := stored
	imported.ID = uuid.New()

	repo := &mockOperationRepo{}
	repo.On("GetAllOperations", mock.Anything).Return([]core.Operation{stored}, nil)
	repo.On("UpdateOperation", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("UploadOperation", mock.Anything, imported).Return(nil)

	p, _ := NewOperationProxy(ctx, repo)

	changed := stored
	changed.Description = "coffee"
	require.NoError(t, p.UpdateOperation(ctx, changed))
	got, _ := p.GetOperation(ctx, stored.ID)
	assert.Equal(t, "coffee", got.Description)

	require.ErrorIs(t, p.UploadOperation(ctx, stored), core.ErrAlreadyExists)
	require.NoError(t, p.UploadOperation(ctx, imported))

	all, _ := p.GetAllOperations(ctx)
	assert.Len(t, all, 2)
	repo.AssertNumberOfCalls(t, "UploadOperation", 1)
	repo.AssertNotCalled(t, "GetOperation", mock.Anything, mock.Anything)
}

func TestOperationProxyRejectedUpdateKeepsCache(t *testing.T) {
	stored := core.Operation{ID: uuid.New(), Type: core.Expense, BankAccountID: uuid.New(), Amount: d("4"), Date: core.NewDate(2024, 1, 1), CategoryID: uuid.New()}

	repo := &mockOperationRepo{}
	repo.On("GetAllOperations", mock.Anything).Return([]core.Operation{stored}, nil)
	repo.On("UpdateOperation", mock.Anything, mock.Anything).Return(core.ErrInvalidMutation)

	p, _ := NewOperationProxy(ctx, repo)

	changed := stored
	changed.Amount = d("5")
	require.ErrorIs(t, p.UpdateOperation(ctx, changed), core.ErrInvalidMutation)

	got, _ := p.GetOperation(ctx, stored.ID)
	assert.True(t, got.Amount.Equal(d("4")))
}

type countVisitor struct {
	core.NopVisitor
	accounts, categories, operations int
}

func (v *countVisitor) VisitBankAccount(core.BankAccount) { v.accounts++ }
func (v *countVisitor) VisitCategory(core.Category)       { v.categories++ }
func (v *countVisitor) VisitOperation(core.Operation)     { v.operations++ }

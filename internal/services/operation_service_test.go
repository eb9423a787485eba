package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"finledger/internal/amqp"
	"finledger/internal/core"
	"finledger/internal/storage/memory"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishBalanceCheck(ctx context.Context, accountID uuid.UUID, reason string) error {
	return m.Called(ctx, accountID, reason).Error(0)
}

type fixture struct {
	accounts *memory.AccountStore
	svc      *OperationService
	account  core.BankAccount
	category core.Category
}

func newFixture(t *testing.T, publisher BalancePublisher) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	accounts := memory.NewAccountStore(store)
	categories := memory.NewCategoryStore(store)

	acc, err := accounts.CreateBankAccount(ctx, "Main")
	require.NoError(t, err)
	cat, err := categories.CreateCategory(ctx, core.Expense, "Food")
	require.NoError(t, err)

	return fixture{
		accounts: accounts,
		svc:      NewOperationService(memory.NewOperationStore(store), publisher),
		account:  acc,
		category: cat,
	}
}

func (f fixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	a, err := f.accounts.GetBankAccount(context.Background(), f.account.ID)
	require.NoError(t, err)
	return a.Balance
}

func TestCreateOperationPublishesBalanceCheck(t *testing.T) {
	pub := &mockPublisher{}
	f := newFixture(t, pub)
	pub.On("PublishBalanceCheck", mock.Anything, f.account.ID, amqp.ReasonOperationCreated).Return(nil).Once()

	op, err := f.svc.CreateOperation(context.Background(), core.Expense, f.account.ID, decimal.NewFromInt(25), core.NewDate(2024, 5, 5), f.category.ID, "market")
	require.NoError(t, err)
	assert.Equal(t, "market", op.Description)
	assert.True(t, f.balance(t).Equal(decimal.NewFromInt(-25)))

	pub.AssertExpectations(t)
}

func TestCreateOperationFailureSkipsPublish(t *testing.T) {
	pub := &mockPublisher{}
	f := newFixture(t, pub)

	_, err := f.svc.CreateOperation(context.Background(), core.Expense, f.account.ID, decimal.NewFromInt(-1), core.NewDate(2024, 5, 5), f.category.ID, "")
	require.ErrorIs(t, err, core.ErrNegativeAmount)

	_, err = f.svc.CreateOperation(context.Background(), core.Expense, uuid.New(), decimal.NewFromInt(1), core.NewDate(2024, 5, 5), f.category.ID, "")
	require.ErrorIs(t, err, core.ErrNotFound)

	pub.AssertNotCalled(t, "PublishBalanceCheck", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &mockPublisher{}
	f := newFixture(t, pub)
	pub.On("PublishBalanceCheck", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("circuit breaker is open"))

	_, err := f.svc.CreateOperation(context.Background(), core.Expense, f.account.ID, decimal.NewFromInt(3), core.NewDate(2024, 5, 5), f.category.ID, "")
	require.NoError(t, err)
	assert.True(t, f.balance(t).Equal(decimal.NewFromInt(-3)))
}

func TestNilPublisher(t *testing.T) {
	f := newFixture(t, nil)

	op, err := f.svc.CreateOperation(context.Background(), core.Expense, f.account.ID, decimal.NewFromInt(3), core.NewDate(2024, 5, 5), f.category.ID, "")
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteOperation(context.Background(), op.ID))
	assert.True(t, f.balance(t).IsZero())
}

func TestDeleteOperation(t *testing.T) {
	pub := &mockPublisher{}
	f := newFixture(t, pub)
	pub.On("PublishBalanceCheck", mock.Anything, f.account.ID, amqp.ReasonOperationCreated).Return(nil)
	pub.On("PublishBalanceCheck", mock.Anything, f.account.ID, amqp.ReasonOperationDeleted).Return(nil).Once()

	op, err := f.svc.CreateOperation(context.Background(), core.Expense, f.account.ID, decimal.NewFromInt(9), core.NewDate(2024, 5, 5), f.category.ID, "")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteOperation(context.Background(), op.ID))
	assert.True(t, f.balance(t).IsZero())

	err = f.svc.DeleteOperation(context.Background(), op.ID)
	require.ErrorIs(t, err, core.ErrNotFound)

	pub.AssertExpectations(t)
	pub.AssertNumberOfCalls(t, "PublishBalanceCheck", 2)
}

func TestCommands(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	create := &CreateOperationCommand{
		Service:    f.svc,
		Type:       core.Expense,
		AccountID:  f.account.ID,
		Amount:     decimal.NewFromInt(40),
		Date:       core.NewDate(2024, 6, 1),
		CategoryID: f.category.ID,
	}

	var elapsed []time.Duration
	timed := NewTimedCommand(create, func(d time.Duration) { elapsed = append(elapsed, d) })
	require.NoError(t, timed.Execute(ctx))
	require.Len(t, elapsed, 1)
	assert.GreaterOrEqual(t, elapsed[0], time.Duration(0))
	assert.NotEqual(t, uuid.Nil, create.Result.ID)
	assert.True(t, f.balance(t).Equal(decimal.NewFromInt(-40)))

	del := &DeleteOperationCommand{Service: f.svc, ID: create.Result.ID}
	require.NoError(t, NewTimedCommand(del, nil).Execute(ctx))
	assert.True(t, f.balance(t).IsZero())

	// A failing command is not timed.
	err := NewTimedCommand(del, func(d time.Duration) { elapsed = append(elapsed, d) }).Execute(ctx)
	require.ErrorIs(t, err, core.ErrNotFound)
	assert.Len(t, elapsed, 1)
}

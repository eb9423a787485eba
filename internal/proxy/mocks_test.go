package proxy

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"finledger/internal/core"
	"finledger/internal/repository"
)

type mockAccountRepo struct {
	mock.Mock
}

var _ repository.AccountRepository = (*mockAccountRepo)(nil)

func (m *mockAccountRepo) GetAllBankAccounts(ctx context.Context) ([]core.BankAccount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]core.BankAccount), args.Error(1)
}

func (m *mockAccountRepo) CreateBankAccount(ctx context.Context, name string) (core.BankAccount, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(core.BankAccount), args.Error(1)
}

func (m *mockAccountRepo) GetBankAccount(ctx context.Context, id uuid.UUID) (*core.BankAccount, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*core.BankAccount)
	return a, args.Error(1)
}

func (m *mockAccountRepo) DeleteBankAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockAccountRepo) UpdateBankAccount(ctx context.Context, account core.BankAccount) error {
	return m.Called(ctx, account).Error(0)
}

func (m *mockAccountRepo) UploadBankAccount(ctx context.Context, account core.BankAccount) error {
	return m.Called(ctx, account).Error(0)
}

func (m *mockAccountRepo) RecalculateBalance(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAccountRepo) Accept(ctx context.Context, v core.Visitor) error {
	return m.Called(ctx, v).Error(0)
}

type mockCategoryRepo struct {
	mock.Mock
}

var _ repository.CategoryRepository = (*mockCategoryRepo)(nil)

func (m *mockCategoryRepo) GetAllCategories(ctx context.Context) ([]core.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]core.Category), args.Error(1)
}

func (m *mockCategoryRepo) CreateCategory(ctx context.Context, t core.ItemType, name string) (core.Category, error) {
	args := m.Called(ctx, t, name)
	return args.Get(0).(core.Category), args.Error(1)
}

func (m *mockCategoryRepo) GetCategory(ctx context.Context, id uuid.UUID) (*core.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*core.Category)
	return c, args.Error(1)
}

func (m *mockCategoryRepo) DeleteCategory(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockCategoryRepo) UpdateCategory(ctx context.Context, category core.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *mockCategoryRepo) UploadCategory(ctx context.Context, category core.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *mockCategoryRepo) Accept(ctx context.Context, v core.Visitor) error {
	return m.Called(ctx, v).Error(0)
}

type mockOperationRepo struct {
	mock.Mock
}

var _ repository.OperationRepository = (*mockOperationRepo)(nil)

func (m *mockOperationRepo) GetAllOperations(ctx context.Context) ([]core.Operation, error) {
	args := m.Called(ctx)
	return args.Get(0).([]core.Operation), args.Error(1)
}

func (m *mockOperationRepo) CreateOperation(ctx context.Context, t core.ItemType, accountID uuid.UUID, amount decimal.Decimal, date core.Date, categoryID uuid.UUID, description string) (core.Operation, error) {
	args := m.Called(ctx, t, accountID, amount, date, categoryID, description)
	return args.Get(0).(core.Operation), args.Error(1)
}

func (m *mockOperationRepo) GetOperation(ctx context.Context, id uuid.UUID) (*core.Operation, error) {
	args := m.Called(ctx, id)
	op, _ := args.Get(0).(*core.Operation)
	return op, args.Error(1)
}

func (m *mockOperationRepo) DeleteOperation(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockOperationRepo) UpdateOperation(ctx context.Context, op core.Operation) error {
	return m.Called(ctx, op).Error(0)
}

func (m *mockOperationRepo) UploadOperation(ctx context.Context, op core.Operation) error {
	return m.Called(ctx, op).Error(0)
}

func (m *mockOperationRepo) Accept(ctx context.Context, v core.Visitor) error {
	return m.Called(ctx, v).Error(0)
}

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) RefreshBankAccount(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

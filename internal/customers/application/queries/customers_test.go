package queries

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

	"github.com/troncosounlar-bit/legasync-flow/internal/customers/domain"
)

type mockCustomerRepo struct {
	mock.Mock
}

func (m *mockCustomerRepo) Save(ctx context.Context, c *domain.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepo) List(ctx context.Context) ([]*domain.Customer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockExpenseRepo struct {
	mock.Mock
}

func (m *mockExpenseRepo) Create(ctx context.Context, e *domain.Expense) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockExpenseRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Expense, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *mockExpenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func newCustomer(t *testing.T, deal string) *domain.Customer {
	t.Helper()
	c, err := domain.NewCustomer(domain.NewCustomerParams{
		Name:      "Ferretería Norte",
		DealValue: decimal.RequireFromString(deal),
	}, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return c
}

func TestCustomerQueries_Balance(t *testing.T) {
	ctx := context.Background()
	customer := newCustomer(t, "1200")
	customers := new(mockCustomerRepo)
	expenses := new(mockExpenseRepo)
	customers.On("FindByID", ctx, customer.ID()).Return(customer, nil)
	expenses.On("ListByCustomer", ctx, customer.ID()).Return([]domain.Expense{
		{ID: uuid.New(), CustomerID: customer.ID(), Amount: decimal.RequireFromString("150.50")},
		{ID: uuid.New(), CustomerID: customer.ID(), Amount: decimal.RequireFromString("49.50")},
	}, nil)

	balance, err := NewCustomerQueries(customers, expenses).Balance(ctx, customer.ID())

	require.NoError(t, err)
	assert.Equal(t, "Ferretería Norte", balance.CustomerName)
	assert.True(t, decimal.RequireFromString("200").Equal(balance.TotalExpenses))
	assert.True(t, decimal.RequireFromString("1000").Equal(balance.NetBalance))
	assert.Equal(t, 2, balance.ExpenseCount)
	customers.AssertExpectations(t)
	expenses.AssertExpectations(t)
}

func TestCustomerQueries_Balance_MissingCustomer(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	customers := new(mockCustomerRepo)
	expenses := new(mockExpenseRepo)
	customers.On("FindByID", ctx, id).Return(nil, domain.ErrCustomerNotFound)

	_, err := NewCustomerQueries(customers, expenses).Balance(ctx, id)

	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	expenses.AssertNotCalled(t, "ListByCustomer", mock.Anything, mock.Anything)
}

func TestCustomerQueries_Balance_ExpenseFailure(t *testing.T) {
	ctx := context.Background()
	customer := newCustomer(t, "10")
	customers := new(mockCustomerRepo)
	expenses := new(mockExpenseRepo)
	boom := errors.New("database is locked")
	customers.On("FindByID", ctx, customer.ID()).Return(customer, nil)
	expenses.On("ListByCustomer", ctx, customer.ID()).Return([]domain.Expense(nil), boom)

	_, err := NewCustomerQueries(customers, expenses).Balance(ctx, customer.ID())

	assert.ErrorIs(t, err, boom)
}

func TestCustomerQueries_ListAndExpenses(t *testing.T) {
	ctx := context.Background()
	customer := newCustomer(t, "0")
	customers := new(mockCustomerRepo)
	expenses := new(mockExpenseRepo)
	customers.On("List", ctx).Return([]*domain.Customer{customer}, nil)
	expenses.On("ListByCustomer", ctx, customer.ID()).Return([]domain.Expense{}, nil)

	q := NewCustomerQueries(customers, expenses)
	list, err := q.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := q.Expenses(ctx, customer.ID())
	require.NoError(t, err)
	assert.Empty(t, got)
}

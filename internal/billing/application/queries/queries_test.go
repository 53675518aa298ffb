package queries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

type mockViews struct {
	mock.Mock
}

func (m *mockViews) Invoices(ctx context.Context) ([]domain.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *mockViews) ActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subscription), args.Error(1)
}

func (m *mockViews) Refresh(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *mockViews) Invalidate(ctx context.Context) error { return m.Called(ctx).Error(0) }

type mockInvoiceRepo struct {
	mock.Mock
	domain.InvoiceRepository
}

func (m *mockInvoiceRepo) List(ctx context.Context, search string) ([]domain.Invoice, error) {
	args := m.Called(ctx, search)
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func TestListInvoicesHandler(t *testing.T) {
	cached := []domain.Invoice{{ID: uuid.New(), CustomerName: "Acme"}}
	searched := []domain.Invoice{{ID: uuid.New(), CustomerName: "Bufete"}}

	views := &mockViews{}
	views.On("Invoices", mock.Anything).Return(cached, nil)
	repo := &mockInvoiceRepo{}
	repo.On("List", mock.Anything, "buf").Return(searched, nil)

	h := NewListInvoicesHandler(repo, views)

	got, err := h.Handle(context.Background(), ListInvoicesQuery{Search: "  "})
	require.NoError(t, err)
	assert.Equal(t, cached, got)

	got, err = h.Handle(context.Background(), ListInvoicesQuery{Search: " buf "})
	require.NoError(t, err)
	assert.Equal(t, searched, got)
}

func TestInvoiceMetricsHandler(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	views := &mockViews{}
	views.On("Invoices", mock.Anything).Return([]domain.Invoice{
		{BaseAmount: decimal.NewFromInt(30), Status: domain.InvoicePaid, CreatedAt: now},
		{BaseAmount: decimal.NewFromInt(70), Status: domain.InvoicePending, IsAutomated: true, CreatedAt: now.AddDate(0, -1, 0)},
	}, nil)

	h := NewInvoiceMetricsHandler(views, 0)
	h.now = func() time.Time { return now }

	m, err := h.Handle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "100", m.TotalRevenue.String())
	assert.Equal(t, "70", m.RiskCapital.String())
	assert.Equal(t, 70, m.AutomationRatio)
	assert.Equal(t, 50, m.HealthScore)
}

func TestRevenueStatisticsHandler(t *testing.T) {
	views := &mockViews{}
	views.On("Invoices", mock.Anything).Return([]domain.Invoice{
		{CustomerName: "Acme", BaseAmount: decimal.NewFromInt(100), CurrencyCode: "BRL", Status: domain.InvoicePaid},
	}, nil)

	stats, err := NewRevenueStatisticsHandler(views, nil).Handle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "20", stats.TotalRevenueUSD.String())
	assert.Equal(t, []string{"Acme"}, stats.Labels())
}

func TestCalculateTax(t *testing.T) {
	res, err := CalculateTax(decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "21", res.Tax.String())
	assert.Equal(t, "121", res.Total.String())

	_, err = CalculateTax(decimal.NewFromInt(6_000_000))
	assert.ErrorIs(t, err, domain.ErrTaxLimitExceeded)
}

func TestSubscriptionsHandler_ActiveUsesViews(t *testing.T) {
	subs := []domain.Subscription{{ID: uuid.New(), IsActive: true}}
	views := &mockViews{}
	views.On("ActiveSubscriptions", mock.Anything).Return(subs, nil)

	got, err := NewSubscriptionsHandler(nil, views).Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, subs, got)
}

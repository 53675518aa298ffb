package queries

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	sharedApplication "github.com/troncosounlar-bit/legasync-flow/internal/shared/application"
)

// ListInvoicesQuery filters invoices by customer name.
type ListInvoicesQuery struct {
	Search string
}

// ListInvoicesHandler handles the ListInvoicesQuery. Unfiltered lists come
// from the view cache, searches go to the store.
type ListInvoicesHandler struct {
	invoices domain.InvoiceRepository
	views    domain.ViewCache
}

var _ sharedApplication.QueryHandler[ListInvoicesQuery, []domain.Invoice] = (*ListInvoicesHandler)(nil)

// NewListInvoicesHandler creates a new ListInvoicesHandler.
func NewListInvoicesHandler(invoices domain.InvoiceRepository, views domain.ViewCache) *ListInvoicesHandler {
	return &ListInvoicesHandler{invoices: invoices, views: views}
}

// Handle returns invoices newest first.
func (h *ListInvoicesHandler) Handle(ctx context.Context, query ListInvoicesQuery) ([]domain.Invoice, error) {
	search := strings.TrimSpace(query.Search)
	if search == "" && h.views != nil {
		return h.views.Invoices(ctx)
	}
	return h.invoices.List(ctx, search)
}

// InvoiceMetricsHandler computes dashboard figures from the cached list.
type InvoiceMetricsHandler struct {
	views     domain.ViewCache
	riskAfter time.Duration
	now       func() time.Time
}

// NewInvoiceMetricsHandler creates a new InvoiceMetricsHandler.
func NewInvoiceMetricsHandler(views domain.ViewCache, riskAfter time.Duration) *InvoiceMetricsHandler {
	return &InvoiceMetricsHandler{views: views, riskAfter: riskAfter, now: time.Now}
}

// Handle returns the current invoice metrics.
func (h *InvoiceMetricsHandler) Handle(ctx context.Context) (domain.InvoiceMetrics, error) {
	invoices, err := h.views.Invoices(ctx)
	if err != nil {
		return domain.InvoiceMetrics{}, err
	}
	return domain.ComputeInvoiceMetrics(invoices, h.now(), h.riskAfter), nil
}

// RevenueStatisticsHandler normalises paid revenue to USD.
type RevenueStatisticsHandler struct {
	views domain.ViewCache
	table domain.ExchangeTable
}

// NewRevenueStatisticsHandler creates a new RevenueStatisticsHandler. A nil
// table uses the default rates.
func NewRevenueStatisticsHandler(views domain.ViewCache, table domain.ExchangeTable) *RevenueStatisticsHandler {
	if table == nil {
		table = domain.DefaultExchangeTable()
	}
	return &RevenueStatisticsHandler{views: views, table: table}
}

// Handle returns the revenue statistics.
func (h *RevenueStatisticsHandler) Handle(ctx context.Context) (domain.Statistics, error) {
	invoices, err := h.views.Invoices(ctx)
	if err != nil {
		return domain.Statistics{}, err
	}
	return domain.RevenueStatistics(invoices, h.table), nil
}

// TaxResult is the outcome of a tax calculation.
type TaxResult struct {
	Amount decimal.Decimal `json:"amount"`
	Tax    decimal.Decimal `json:"tax"`
	Total  decimal.Decimal `json:"total"`
}

// CalculateTax applies the legacy tax rule to amount.
func CalculateTax(amount decimal.Decimal) (TaxResult, error) {
	tax, err := domain.CalculateLegacyTax(amount)
	if err != nil {
		return TaxResult{}, err
	}
	return TaxResult{Amount: amount, Tax: tax, Total: amount.Add(tax)}, nil
}

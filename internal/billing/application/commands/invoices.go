package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	sharedApplication "github.com/troncosounlar-bit/legasync-flow/internal/shared/application"
)

// CreateInvoiceCommand contains the data for a manual invoice.
type CreateInvoiceCommand struct {
	CustomerID   *uuid.UUID
	CustomerName string `validate:"required,max=200"`
	Description  string `validate:"max=500"`
	Amount       string `validate:"required,numeric"`
	CurrencyCode string `validate:"omitempty,len=3,alpha"`
}

// InvoiceHandler handles manual invoice writes.
type InvoiceHandler struct {
	invoices domain.InvoiceRepository
	views    viewRefresher
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoices domain.InvoiceRepository, views domain.ViewCache, logger *slog.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, views: newViewRefresher(views, logger)}
}

// Create stores a manual invoice.
func (h *InvoiceHandler) Create(ctx context.Context, cmd CreateInvoiceCommand) (*domain.Invoice, error) {
	if err := sharedApplication.ValidateCommand(cmd); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(cmd.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: amount: %v", sharedApplication.ErrInvalidCommand, err)
	}

	inv, err := domain.NewManualInvoice(cmd.CustomerID, cmd.CustomerName, cmd.Description, amount, cmd.CurrencyCode, time.Now())
	if err != nil {
		return nil, err
	}
	if err := h.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}

	h.views.refresh(ctx)
	return inv, nil
}

// Delete removes an invoice.
func (h *InvoiceHandler) Delete(ctx context.Context, id uuid.UUID) error {
	if err := h.invoices.Delete(ctx, id); err != nil {
		return err
	}
	h.views.refresh(ctx)
	return nil
}

// MarkPaid records payment of a pending invoice.
func (h *InvoiceHandler) MarkPaid(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	inv, err := h.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := inv.MarkPaid(); err != nil {
		return nil, err
	}
	if err := h.invoices.MarkPaid(ctx, id, time.Now().UTC()); err != nil {
		return nil, err
	}

	h.views.refresh(ctx)
	return inv, nil
}

package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/database"
)

// InvoiceRepository stores invoices on either SQL driver.
type InvoiceRepository struct {
	conn database.Connection
}

var _ domain.InvoiceRepository = (*InvoiceRepository)(nil)

// NewInvoiceRepository creates a new repository.
func NewInvoiceRepository(conn database.Connection) *InvoiceRepository {
	return &InvoiceRepository{conn: conn}
}

const invoiceColumns = `id, customer_id, customer_name, subscription_id, billing_period, description,
	base_amount, currency_code, status, fiscal_status, fiscal_id, validation_date, is_automated, created_at`

func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		nullUUID(inv.CustomerID),
		inv.CustomerName,
		nullUUID(inv.SubscriptionID),
		nullString(inv.BillingPeriod),
		inv.Description,
		inv.BaseAmount,
		inv.CurrencyCode,
		string(inv.Status),
		string(inv.FiscalStatus),
		inv.FiscalID,
		database.NullTimestamp(inv.ValidationDate),
		inv.IsAutomated,
		database.FormatTimestamp(inv.CreatedAt),
	)
	if database.IsUniqueViolation(err) {
		return domain.ErrDuplicateInvoice
	}
	if err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	inv, err := scanInvoice(exec.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id))
	if database.IsNoRows(err) {
		return nil, domain.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find invoice %s: %w", id, err)
	}
	return &inv, nil
}

func (r *InvoiceRepository) List(ctx context.Context, search string) ([]domain.Invoice, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	var args []any
	if search != "" {
		query += ` WHERE customer_name ` + database.CaseInsensitiveLike(r.conn.Driver()) + ` ?`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return database.CollectRows(rows, scanInvoice)
}

func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, id, `DELETE FROM invoices WHERE id = ?`, id)
}

// MarkPaid sets the status; invoices carry no payment timestamp.
func (r *InvoiceRepository) MarkPaid(ctx context.Context, id uuid.UUID, _ time.Time) error {
	return r.update(ctx, id, `UPDATE invoices SET status = ? WHERE id = ?`, string(domain.InvoicePaid), id)
}

func (r *InvoiceRepository) update(ctx context.Context, id uuid.UUID, query string, args ...any) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	res, err := exec.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update invoice %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func scanInvoice(row database.Row) (domain.Invoice, error) {
	var (
		inv            domain.Invoice
		customerID     uuid.NullUUID
		subscriptionID uuid.NullUUID
		billingPeriod  *string
		status         string
		fiscalStatus   string
		validationDate database.Time
		createdAt      database.Time
	)
	err := row.Scan(
		&inv.ID,
		&customerID,
		&inv.CustomerName,
		&subscriptionID,
		&billingPeriod,
		&inv.Description,
		&inv.BaseAmount,
		&inv.CurrencyCode,
		&status,
		&fiscalStatus,
		&inv.FiscalID,
		&validationDate,
		&inv.IsAutomated,
		&createdAt,
	)
	if err != nil {
		return domain.Invoice{}, err
	}

	if customerID.Valid {
		id := customerID.UUID
		inv.CustomerID = &id
	}
	if subscriptionID.Valid {
		id := subscriptionID.UUID
		inv.SubscriptionID = &id
	}
	if billingPeriod != nil {
		inv.BillingPeriod = *billingPeriod
	}
	inv.Status = domain.InvoiceStatus(status)
	inv.FiscalStatus = domain.FiscalStatus(fiscalStatus)
	if validationDate.Valid {
		t := validationDate.Time
		inv.ValidationDate = &t
	}
	inv.CreatedAt = createdAt.Time
	return inv, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

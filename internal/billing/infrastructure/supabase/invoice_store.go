package supabase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	supa "github.com/nedpals/supabase-go"
	"github.com/samber/lo"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

// InvoiceStore implements domain.InvoiceRepository over PostgREST.
type InvoiceStore struct {
	client *supa.Client
}

var _ domain.InvoiceRepository = (*InvoiceStore)(nil)

// NewInvoiceStore creates a store using client.
func NewInvoiceStore(client *supa.Client) *InvoiceStore {
	return &InvoiceStore{client: client}
}

func (s *InvoiceStore) Create(ctx context.Context, inv *domain.Invoice) error {
	var created []invoiceRow
	err := s.client.DB.From(invoicesTable).
		Insert(invoiceToRow(inv)).
		Execute(&created)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateInvoice
	}
	if err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

func (s *InvoiceStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var rows []invoiceRow
	if err := s.client.DB.From(invoicesTable).
		Select("*").
		Eq("id", id.String()).
		Execute(&rows); err != nil {
		return nil, fmt.Errorf("find invoice %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrInvoiceNotFound
	}
	inv := rows[0].toDomain()
	return &inv, nil
}

func (s *InvoiceStore) List(ctx context.Context, search string) ([]domain.Invoice, error) {
	var rows []invoiceRow
	query := s.client.DB.From(invoicesTable).Select("*")

	var err error
	if search = strings.TrimSpace(search); search != "" {
		err = query.Ilike("customer_name", "*"+search+"*").Execute(&rows)
	} else {
		err = query.Execute(&rows)
	}
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	invoices := lo.Map(rows, func(row invoiceRow, _ int) domain.Invoice { return row.toDomain() })
	sort.SliceStable(invoices, func(i, j int) bool {
		return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
	})
	return invoices, nil
}

func (s *InvoiceStore) Delete(ctx context.Context, id uuid.UUID) error {
	var deleted []invoiceRow
	if err := s.client.DB.From(invoicesTable).
		Delete().
		Eq("id", id.String()).
		Execute(&deleted); err != nil {
		return fmt.Errorf("delete invoice %s: %w", id, err)
	}
	if len(deleted) == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (s *InvoiceStore) MarkPaid(ctx context.Context, id uuid.UUID, _ time.Time) error {
	var updated []invoiceRow
	if err := s.client.DB.From(invoicesTable).
		Update(map[string]any{"status": string(domain.InvoicePaid)}).
		Eq("id", id.String()).
		Execute(&updated); err != nil {
		return fmt.Errorf("mark invoice %s paid: %w", id, err)
	}
	if len(updated) == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

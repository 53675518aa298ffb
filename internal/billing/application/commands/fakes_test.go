package commands

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

var errStoreOffline = errors.New("store offline")

// fakeSubscriptions keeps subscriptions in insertion order.
type fakeSubscriptions struct {
	mu             sync.Mutex
	subs           []domain.Subscription
	listErr        error
	markErr        error
	rescheduleErr  error
	rescheduleCall int
}

func newFakeSubscriptions(subs ...domain.Subscription) *fakeSubscriptions {
	return &fakeSubscriptions{subs: subs}
}

func (f *fakeSubscriptions) ListActive(_ context.Context) ([]domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Subscription
	for _, s := range f.subs {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubscriptions) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Subscription
	for _, s := range f.subs {
		if s.CustomerID == customerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubscriptions) FindByID(_ context.Context, id uuid.UUID) (*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.subs {
		if f.subs[i].ID == id {
			s := f.subs[i]
			return &s, nil
		}
	}
	return nil, domain.ErrSubscriptionNotFound
}

func (f *fakeSubscriptions) Create(_ context.Context, sub *domain.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, *sub)
	return nil
}

func (f *fakeSubscriptions) SetActive(_ context.Context, id uuid.UUID, active bool, at time.Time) error {
	return f.update(id, func(s *domain.Subscription) error {
		s.IsActive = active
		s.UpdatedAt = at
		return nil
	})
}

func (f *fakeSubscriptions) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.subs {
		if f.subs[i].ID == id {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return nil
		}
	}
	return domain.ErrSubscriptionNotFound
}

func (f *fakeSubscriptions) MarkInvoicePending(_ context.Context, id, invoiceID uuid.UUID, at time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	return f.update(id, func(s *domain.Subscription) error {
		s.PendingInvoiceID = &invoiceID
		s.UpdatedAt = at
		return nil
	})
}

func (f *fakeSubscriptions) Reschedule(_ context.Context, id uuid.UUID, next time.Time, at time.Time) error {
	f.mu.Lock()
	f.rescheduleCall++
	err := f.rescheduleErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.update(id, func(s *domain.Subscription) error {
		s.NextBillingDate = next
		s.PendingInvoiceID = nil
		s.UpdatedAt = at
		return nil
	})
}

func (f *fakeSubscriptions) get(id uuid.UUID) domain.Subscription {
	s, _ := f.FindByID(context.Background(), id)
	return *s
}

func (f *fakeSubscriptions) update(id uuid.UUID, fn func(*domain.Subscription) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.subs {
		if f.subs[i].ID == id {
			return fn(&f.subs[i])
		}
	}
	return domain.ErrSubscriptionNotFound
}

// fakeInvoices enforces one invoice per subscription and period.
type fakeInvoices struct {
	mu        sync.Mutex
	invoices  []domain.Invoice
	createErr error
	failFor   map[uuid.UUID]error
}

func (f *fakeInvoices) Create(_ context.Context, inv *domain.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if inv.SubscriptionID != nil {
		if err := f.failFor[*inv.SubscriptionID]; err != nil {
			return err
		}
	}
	if inv.SubscriptionID != nil && inv.BillingPeriod != "" {
		for _, existing := range f.invoices {
			if existing.SubscriptionID != nil && *existing.SubscriptionID == *inv.SubscriptionID && existing.BillingPeriod == inv.BillingPeriod {
				return domain.ErrDuplicateInvoice
			}
		}
	}
	f.invoices = append(f.invoices, *inv)
	return nil
}

func (f *fakeInvoices) FindByID(_ context.Context, id uuid.UUID) (*domain.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.invoices {
		if f.invoices[i].ID == id {
			inv := f.invoices[i]
			return &inv, nil
		}
	}
	return nil, domain.ErrInvoiceNotFound
}

func (f *fakeInvoices) List(_ context.Context, search string) ([]domain.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Invoice, 0, len(f.invoices))
	for _, inv := range f.invoices {
		if search == "" || strings.Contains(strings.ToLower(inv.CustomerName), strings.ToLower(search)) {
			out = append(out, inv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeInvoices) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.invoices {
		if f.invoices[i].ID == id {
			f.invoices = append(f.invoices[:i], f.invoices[i+1:]...)
			return nil
		}
	}
	return domain.ErrInvoiceNotFound
}

func (f *fakeInvoices) MarkPaid(_ context.Context, id uuid.UUID, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.invoices {
		if f.invoices[i].ID == id {
			f.invoices[i].Status = domain.InvoicePaid
			return nil
		}
	}
	return domain.ErrInvoiceNotFound
}

func (f *fakeInvoices) all() []domain.Invoice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Invoice(nil), f.invoices...)
}

// fakeViews counts refreshes.
type fakeViews struct {
	mu          sync.Mutex
	refreshes   int
	invalidated int
	refreshErr  error
}

func (f *fakeViews) Invoices(context.Context) ([]domain.Invoice, error) { return nil, nil }
func (f *fakeViews) ActiveSubscriptions(context.Context) ([]domain.Subscription, error) {
	return nil, nil
}

func (f *fakeViews) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.refreshErr
}

func (f *fakeViews) Invalidate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	return nil
}

func (f *fakeViews) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

// passthroughUoW runs work without a transaction.
type passthroughUoW struct{}

func (passthroughUoW) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (passthroughUoW) Commit(context.Context) error                       { return nil }
func (passthroughUoW) Rollback(context.Context) error                     { return nil }

// mockFiscalValidator is a mock implementation of domain.FiscalValidator.
type mockFiscalValidator struct {
	mock.Mock
}

func (m *mockFiscalValidator) Validate(ctx context.Context, req domain.FiscalRequest) (domain.FiscalToken, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.FiscalToken), args.Error(1)
}

// mockRunLock is a mock implementation of domain.RunLock.
type mockRunLock struct {
	mock.Mock
}

func (m *mockRunLock) Acquire(ctx context.Context, ttl time.Duration) (func(), error) {
	args := m.Called(ctx, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

package commands

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

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/outbox"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func subscription(amount int64, next time.Time, active bool) domain.Subscription {
	return domain.Subscription{
		ID:              uuid.New(),
		CustomerID:      uuid.New(),
		CustomerName:    "Estudio Pérez",
		ServiceName:     "Asesoría",
		Amount:          decimal.NewFromInt(amount),
		Interval:        domain.IntervalMonthly,
		CurrencyCode:    "USD",
		NextBillingDate: next,
		IsActive:        active,
	}
}

type runFixture struct {
	subs    *fakeSubscriptions
	invs    *fakeInvoices
	outbox  *outbox.MemoryRepository
	views   *fakeViews
	fiscal  *mockFiscalValidator
	metrics *observability.InMemoryMetrics
}

func newRunFixture(subs ...domain.Subscription) *runFixture {
	f := &runFixture{
		subs:    newFakeSubscriptions(subs...),
		invs:    &fakeInvoices{},
		outbox:  outbox.NewMemoryRepository(),
		views:   &fakeViews{},
		fiscal:  &mockFiscalValidator{},
		metrics: observability.NewInMemoryMetrics(),
	}
	return f
}

func (f *runFixture) handler(now time.Time) *RunBillingHandler {
	return NewRunBillingHandler(f.subs, f.invs, f.outbox, passthroughUoW{}, f.fiscal, f.views, domain.DefaultPolicies(), nil).
		WithClock(domain.FixedClock(now)).
		WithMetrics(f.metrics)
}

func (f *runFixture) routingKeys() []string {
	var keys []string
	for _, msg := range f.outbox.All() {
		keys = append(keys, msg.RoutingKey)
	}
	return keys
}

func TestRunBilling_MonthlyScenario(t *testing.T) {
	sub := subscription(45, day(2024, 1, 1), true)
	f := newRunFixture(sub)
	f.fiscal.On("Validate", mock.Anything, mock.Anything).Return(domain.FiscalToken("CAE-TEST00001"), nil)

	result, err := f.handler(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)).Handle(context.Background(), RunBillingCommand{})
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompleted, result.Status())
	assert.Equal(t, 1, result.Considered)
	assert.Equal(t, 1, result.Due)
	require.Len(t, result.Invoices, 1)
	assert.Equal(t, sub.ID, result.Invoices[0].SubscriptionID)
	assert.Equal(t, "2024-01-01", result.Invoices[0].BillingPeriod)

	invoices := f.invs.all()
	require.Len(t, invoices, 1)
	assert.True(t, invoices[0].BaseAmount.Equal(decimal.NewFromInt(45)))
	assert.Equal(t, domain.InvoicePending, invoices[0].Status)
	assert.Equal(t, domain.FiscalValidated, invoices[0].FiscalStatus)
	assert.Equal(t, "CAE-TEST00001", invoices[0].FiscalID)
	assert.True(t, invoices[0].IsAutomated)

	stored := f.subs.get(sub.ID)
	assert.Equal(t, day(2024, 2, 1), stored.NextBillingDate)
	assert.False(t, stored.HasPendingInvoice())

	assert.Equal(t, []string{
		domain.RoutingInvoiceGenerated,
		domain.RoutingSubscriptionRescheduled,
		domain.RoutingRunCompleted,
	}, f.routingKeys())
	assert.Equal(t, 1, f.views.refreshCount())
	assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricBillingInvoicesGenerated))

	t.Run("next day run creates nothing", func(t *testing.T) {
		second, err := f.handler(time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC)).Handle(context.Background(), RunBillingCommand{})
		require.NoError(t, err)
		assert.Zero(t, second.Due)
		assert.Empty(t, second.Invoices)
		assert.Len(t, f.invs.all(), 1)
		assert.Equal(t, day(2024, 2, 1), f.subs.get(sub.ID).NextBillingDate)
	})
}

func TestRunBilling_ImmediateRerunCreatesNothing(t *testing.T) {
	f := newRunFixture(subscription(10, day(2024, 3, 1), true), subscription(20, day(2024, 2, 15), true))
	f.fiscal.On("Validate", mock.Anything, mock.Anything).Return(domain.FiscalToken("CAE-X"), nil)
	now := day(2024, 3, 1)

	first, err := f.handler(now).Handle(context.Background(), RunBillingCommand{})
	require.NoError(t, err)
	assert.Len(t, first.Invoices, 2)

	second, err := f.handler(now).Handle(context.Background(), RunBillingCommand{})
	require.NoError(t, err)
	assert.Empty(t, second.Invoices)
	assert.Len(t, f.invs.all(), 2)
}

func TestRunBilling_SkipsFutureAndInactive(t *testing.T) {
	future := subscription(10, day(2024, 1, 20), true)
	inactive := subscription(10, day(2023, 6, 1), false)
	f := newRunFixture(future, inactive)

	result, err := f.handler(day(2024, 1, 5)).Handle(context.Background(), RunBillingCommand{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Considered)
	assert.Zero(t, result.Due)
	assert.Empty(t, f.invs.all())
	assert.Equal(t, day(2024, 1, 20), f.subs.get(future.ID).NextBillingDate)
	assert.Equal(t, day(2023, 6, 1), f.subs.get(inactive.ID).NextBillingDate)
	f.fiscal.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything)
}

func TestRunBilling_FiscalFailureIsFatalToItem(t *testing.T) {
	rejected := subscription(10, day(2024, 1, 1), true)
	accepted := subscription(20, day(2024, 1, 1), true)
	f := newRunFixture(rejected, accepted)
	f.fiscal.On("Validate", mock.Anything, mock.MatchedBy(func(r domain.FiscalRequest) bool { return r.SubscriptionID == rejected.ID })).
		Return(domain.FiscalToken(""), domain.ErrFiscalRejected)
	f.fiscal.On("Validate", mock.Anything, mock.MatchedBy(func(r domain.FiscalRequest) bool { return r.SubscriptionID == accepted.ID })).
		Return(domain.FiscalToken("CAE-OK"), nil)

	result, err := f.handler(day(2024, 1, 2)).Handle(context.Background(), RunBillingCommand{})
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompletedWithErrors, result.Status())
	require.Len(t, result.Failures, 1)
	assert.Equal(t, rejected.ID, result.Failures[0].SubscriptionID)
	assert.Equal(t, domain.StageFiscal, result.Failures[0].Stage)
	assert.Len(t, result.Invoices, 1)
	assert.Equal(t, day(2024, 1, 1), f.subs.get(rejected.ID).NextBillingDate)
	assert.Equal(t, day(2024, 2, 1), f.subs.get(accepted.ID).NextBillingDate)
	assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricBillingItemFailures, observability.T("stage", domain.StageFiscal)))
}

func TestRunBilling_InvoicePersistenceFailureLeavesDate(t *testing.T) {
	sub := subscription(10, day(2024, 1, 1), true)
	f := newRunFixture(sub)
	f.invs.createErr = errStoreOffline
	f.fiscal.On("Validate", mock.Anything, mock.Anything).Return(domain.FiscalToken("CAE-X"), nil)

	result, err := f.handler(day(2024, 1, 2)).Handle(context.Background(), RunBillingCommand{})
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, domain.StageInvoice, result.Failures[0].Stage)
	assert.Empty(t, result.Invoices)
	assert.Equal(t, day(2024, 1, 1), f.subs.get(sub.ID).NextBillingDate)
	assert.Equal(t, 1, f.views.refreshCount())
}

func TestRunBilling_InvoicePersistenceFailureDoesNotStopBatch(t *testing.T) {
	broken := subscription(10, day(2024, 1, 1), true)
	healthy := subscription(20, day(2024, 1, 1), true)
	f := newRunFixture(broken, healthy)
	f.invs.failFor = map[uuid.UUID]error{broken.ID: errStoreOffline}
	f.fiscal.On("Validate", mock.Anything, mock.Anything).Return(domain.FiscalToken("CAE-X"), nil)

	result, err := f.handler(day(2024, 1, 2)).Handle(context.Background(), RunBillingCommand{})
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompletedWithErrors, result.Status())
	require.Len(t, result.Failures, 1)
	assert.Equal(t, broken.ID, result.Failures[0].SubscriptionID)
	assert.Equal(t, domain.StageInvoice, result.Failures[0].Stage)

	require.Len(t, result.Invoices, 1)
	invoices := f.invs.all()
	require.Len(t, invoices, 1)
	require.NotNil(t, invoices[0].SubscriptionID)
	assert.Equal(t, healthy.ID, *invoices[0].SubscriptionID)

	assert.Equal(t, day(2024, 1, 1), f.subs.get(broken.ID).NextBillingDate)
	assert.Equal(t, day(2024, 2, 1), f.subs.get(healthy.ID).NextBillingDate)
	assert.False(t, f.subs.get(healthy.ID).HasPendingInvoice())
	f.fiscal.AssertNumberOfCalls(t, "Validate", 2)
}

func TestRunBilling_ResumesAfterFailedReschedule(t *testing.T) {
	sub := subscription(45, day(2024, 1, 1), true)
	f := newRunFixture(sub)
	f.fiscal.On("Validate", mock.Anything, mock.Anything).Return(domain.FiscalToken("CAE-X"), nil).Once()
	f.subs.rescheduleErr = errStoreOffline

	first, err := f.handler(day(2024, 1, 5)).Handle(context.Background(), RunBillingCommand{})
	require.NoError(t, err)
	require.Len(t, first.Invoices, 1)
	require.Len(t, first.Failures, 1)
	assert.Equal(t, domain.StageReschedule, first.Failures[0].Stage)

	stored := f.subs.get(sub.ID)
	assert.Equal(t, day(2024, 1, 1), stored.NextBillingDate)
	require.True(t, stored.HasPendingInvoice())
	assert.Equal(t, first.Invoices[0].InvoiceID, *stored.PendingInvoiceID)

	f.subs.rescheduleErr = nil
	second, err := f.handler(day(2024, 1, 5)).Handle(context.Background(), RunBillingCommand{})
	require.NoError(t, err)

	assert.Empty(t, second.Invoices)
	assert.Equal(t, 1, second.Resumed)
	assert.Len(t, f.invs.all(), 1)
	assert.Equal(t, day(2024, 2, 1), f.subs.get(sub.ID).NextBillingDate)
	assert.False(t, f.subs.get(sub.ID).HasPendingInvoice())
	f.fiscal.AssertNumberOfCalls(t, "Validate", 1)
}

func TestRunBilling_DuplicatePeriodOnlyReschedules(t *testing.T) {
	sub := subscription(45, day(2024, 1, 1), true)
	f := newRunFixture(sub)
	subID := sub.ID
	require.NoError(t, f.invs.Create(context.Background(), &domain.Invoice{ID: uuid.New(), SubscriptionID: &subID, BillingPeriod: "2024-01-01"}))
	f.fiscal.On("Validate", mock.Anything, mock.Anything).Return(domain.FiscalToken("CAE-X"), nil)

	result, err := f.handler(day(2024, 1, 5)).Handle(context.Background(), RunBillingCommand{})
	require.NoError(t, err)

	assert.Empty(t, result.Invoices)
	assert.Equal(t, 1, result.Resumed)
	assert.Len(t, f.invs.all(), 1)
	assert.Equal(t, day(2024, 2, 1), f.subs.get(sub.ID).NextBillingDate)
}

func TestRunBilling_ListFailureIsFatal(t *testing.T) {
	f := newRunFixture()
	f.subs.listErr = errStoreOffline

	result, err := f.handler(day(2024, 1, 5)).Handle(context.Background(), RunBillingCommand{})

	require.ErrorIs(t, err, errStoreOffline)
	assert.ErrorIs(t, result.Err, errStoreOffline)
	assert.Equal(t, domain.RunFailed, result.Status())
	assert.Equal(t, []string{domain.RoutingRunFailed}, f.routingKeys())
	assert.Zero(t, f.views.refreshCount())
	assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricBillingRuns, observability.T(observability.StatusKey, string(domain.RunFailed))))
}

func TestRunBilling_IgnoresCallerCancellation(t *testing.T) {
	f := newRunFixture(subscription(10, day(2024, 1, 1), true))
	f.fiscal.On("Validate", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).
		Return(domain.FiscalToken("CAE-X"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.handler(day(2024, 1, 2)).Handle(ctx, RunBillingCommand{})
	require.NoError(t, err)
	assert.Len(t, result.Invoices, 1)
}

func TestRunBilling_NotifiesStatusSink(t *testing.T) {
	f := newRunFixture(subscription(10, day(2024, 1, 1), true))
	f.fiscal.On("Validate", mock.Anything, mock.Anything).Return(domain.FiscalToken("CAE-X"), nil)

	received := make(chan domain.RunResult, 1)
	h := f.handler(day(2024, 1, 2)).WithStatusSink(domain.StatusSinkFunc(func(r domain.RunResult) { received <- r }))

	result, err := h.Handle(context.Background(), RunBillingCommand{})
	require.NoError(t, err)

	select {
	case got := <-received:
		assert.Equal(t, result.RunID, got.RunID)
		assert.Equal(t, 1, got.InvoiceCount())
	case <-time.After(time.Second):
		t.Fatal("status sink was not notified")
	}
}

func TestRunBilling_CorrelatesEventsWithRun(t *testing.T) {
	operator := uuid.New()
	f := newRunFixture(subscription(10, day(2024, 1, 1), true))
	f.fiscal.On("Validate", mock.Anything, mock.Anything).Return(domain.FiscalToken("CAE-X"), nil)

	result, err := f.handler(day(2024, 1, 2)).Handle(context.Background(), RunBillingCommand{OperatorID: operator})
	require.NoError(t, err)

	for _, msg := range f.outbox.All() {
		assert.Contains(t, string(msg.Payload), result.RunID.String())
		assert.Contains(t, string(msg.Payload), operator.String())
	}
}

func TestRunBilling_CurrencyPolicy(t *testing.T) {
	sub := subscription(1000, day(2024, 1, 1), true)
	sub.CurrencyCode = "ARS"
	f := newRunFixture(sub)
	f.fiscal.On("Validate", mock.Anything, mock.MatchedBy(func(r domain.FiscalRequest) bool { return r.Currency == "ARS" })).
		Return(domain.FiscalToken("CAE-X"), nil)

	policies, err := domain.ParsePolicies("USD", "subscription", "monthly", "clamp")
	require.NoError(t, err)
	h := NewRunBillingHandler(f.subs, f.invs, f.outbox, passthroughUoW{}, f.fiscal, f.views, policies, nil).
		WithClock(domain.FixedClock(day(2024, 1, 2)))

	_, err = h.Handle(context.Background(), RunBillingCommand{})
	require.NoError(t, err)
	require.Len(t, f.invs.all(), 1)
	assert.Equal(t, "ARS", f.invs.all()[0].CurrencyCode)
}

func TestRunBilling_RunLock(t *testing.T) {
	t.Run("refuses when another run holds the lock", func(t *testing.T) {
		f := newRunFixture(subscription(10, day(2024, 1, 1), true))
		lock := &mockRunLock{}
		lock.On("Acquire", mock.Anything, 5*time.Minute).Return(nil, domain.ErrRunInProgress)

		_, err := f.handler(day(2024, 1, 2)).WithRunLock(lock, 5*time.Minute).Handle(context.Background(), RunBillingCommand{})

		assert.True(t, errors.Is(err, domain.ErrRunInProgress))
		assert.Empty(t, f.invs.all())
	})

	t.Run("releases after the run", func(t *testing.T) {
		f := newRunFixture()
		released := false
		lock := &mockRunLock{}
		lock.On("Acquire", mock.Anything, DefaultRunLockTTL).Return(func() { released = true }, nil)

		_, err := f.handler(day(2024, 1, 2)).WithRunLock(lock, 0).Handle(context.Background(), RunBillingCommand{})

		require.NoError(t, err)
		assert.True(t, released)
	})
}

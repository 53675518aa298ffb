package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	sharedApplication "github.com/troncosounlar-bit/legasync-flow/internal/shared/application"
	sharedDomain "github.com/troncosounlar-bit/legasync-flow/internal/shared/domain"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/outbox"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

// DefaultRunLockTTL bounds how long a crashed run can block the next one.
const DefaultRunLockTTL = 10 * time.Minute

// RunBillingCommand starts a billing run.
type RunBillingCommand struct {
	OperatorID uuid.UUID
}

// RunBillingHandler invoices every due subscription and moves it to its
// next billing date.
//
// Each subscription goes through two units of work. The first writes the
// invoice and a pending marker on the subscription, the second advances
// the date and clears the marker. A subscription still carrying the marker
// on a later run skips straight to the second step, so a failure between
// the two never produces a second invoice for the same period.
type RunBillingHandler struct {
	subscriptions domain.SubscriptionRepository
	invoices      domain.InvoiceRepository
	outboxRepo    outbox.Repository
	uow           sharedApplication.UnitOfWork
	fiscal        domain.FiscalValidator
	views         domain.ViewCache
	policies      domain.Policies
	logger        *slog.Logger

	lock    domain.RunLock
	lockTTL time.Duration
	sink    domain.StatusSink
	clock   domain.Clock
	metrics observability.Metrics
}

var _ sharedApplication.CommandHandler[RunBillingCommand, domain.RunResult] = (*RunBillingHandler)(nil)

// NewRunBillingHandler creates a new RunBillingHandler.
func NewRunBillingHandler(
	subscriptions domain.SubscriptionRepository,
	invoices domain.InvoiceRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	fiscal domain.FiscalValidator,
	views domain.ViewCache,
	policies domain.Policies,
	logger *slog.Logger,
) *RunBillingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunBillingHandler{
		subscriptions: subscriptions,
		invoices:      invoices,
		outboxRepo:    outboxRepo,
		uow:           uow,
		fiscal:        fiscal,
		views:         views,
		policies:      policies,
		logger:        logger,
		lockTTL:       DefaultRunLockTTL,
		clock:         domain.SystemClock{},
		metrics:       observability.NoopMetrics{},
	}
}

// WithRunLock guards runs with lock. ttl bounds how long a crashed run
// blocks the next one; a lock that does not renew itself while held can
// expire under a run that outlives ttl.
func (h *RunBillingHandler) WithRunLock(lock domain.RunLock, ttl time.Duration) *RunBillingHandler {
	h.lock = lock
	if ttl > 0 {
		h.lockTTL = ttl
	}
	return h
}

// WithStatusSink registers a sink notified after every run.
func (h *RunBillingHandler) WithStatusSink(sink domain.StatusSink) *RunBillingHandler {
	h.sink = sink
	return h
}

// WithClock replaces the wall clock.
func (h *RunBillingHandler) WithClock(clock domain.Clock) *RunBillingHandler {
	h.clock = clock
	return h
}

// WithMetrics sets the metrics collector.
func (h *RunBillingHandler) WithMetrics(metrics observability.Metrics) *RunBillingHandler {
	h.metrics = metrics
	return h
}

// Handle executes a billing run. Cancelling ctx does not stop a run that
// has started. The returned error is only set when the run could not
// start or could not list subscriptions; item failures are reported in
// the result.
func (h *RunBillingHandler) Handle(ctx context.Context, cmd RunBillingCommand) (domain.RunResult, error) {
	ctx = context.WithoutCancel(ctx)

	if h.lock != nil {
		release, err := h.lock.Acquire(ctx, h.lockTTL)
		if err != nil {
			return domain.RunResult{Err: err}, err
		}
		defer release()
	}

	result := domain.RunResult{
		RunID:     uuid.New(),
		StartedAt: h.clock.Now(),
		Invoices:  []domain.GeneratedInvoice{},
		Failures:  []domain.ItemFailure{},
	}
	ctx = observability.WithRunID(ctx, result.RunID.String())
	metadata := sharedApplication.NewCorrelatedEventMetadata(cmd.OperatorID, result.RunID)
	timer := observability.StartTimer("billing.run").
		WithMetrics(h.metrics).
		WithMetric(observability.MetricBillingRunDuration)

	h.logger.InfoContext(ctx, "billing run started", "started_at", result.StartedAt)

	subs, err := h.subscriptions.ListActive(ctx)
	if err != nil {
		result.Err = fmt.Errorf("list active subscriptions: %w", err)
		result.FinishedAt = h.clock.Now()
		h.logger.ErrorContext(ctx, "billing run failed", observability.ErrorKey, result.Err)
		h.recordRunEvent(ctx, metadata, domain.NewBillingRunFailed(result))
		h.finish(ctx, timer, result)
		return result, result.Err
	}

	result.Considered = len(subs)
	for _, sub := range subs {
		if !sub.IsDue(result.StartedAt) {
			continue
		}
		result.Due++
		h.process(ctx, metadata, sub, &result)
	}

	if err := h.views.Refresh(ctx); err != nil {
		h.logger.WarnContext(ctx, "view refresh failed", observability.ErrorKey, err)
	}

	result.FinishedAt = h.clock.Now()
	h.recordRunEvent(ctx, metadata, domain.NewBillingRunCompleted(result))
	h.finish(ctx, timer, result)
	return result, nil
}

func (h *RunBillingHandler) process(ctx context.Context, metadata sharedDomain.EventMetadata, sub domain.Subscription, result *domain.RunResult) {
	logger := h.logger.With("subscription_id", sub.ID, "billing_period", sub.BillingPeriod())

	if sub.HasPendingInvoice() {
		logger.InfoContext(ctx, "resuming pending reschedule", "invoice_id", *sub.PendingInvoiceID)
		if h.reschedule(ctx, metadata, sub, *sub.PendingInvoiceID, true, result) {
			h.recordResumed(result)
		}
		return
	}

	for _, mismatch := range h.policies.Mismatches(sub) {
		logger.WarnContext(ctx, "subscription differs from billing policy", "detail", mismatch)
	}

	currency := h.policies.CurrencyFor(sub)
	token, err := h.fiscal.Validate(ctx, domain.NewFiscalRequest(sub, currency))
	if err != nil {
		h.recordFailure(ctx, result, sub, domain.StageFiscal, err)
		return
	}

	inv := domain.NewAutomatedInvoice(sub, token, currency, h.clock.Now())
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.invoices.Create(txCtx, inv); err != nil {
			return err
		}
		if err := h.subscriptions.MarkInvoicePending(txCtx, sub.ID, inv.ID, inv.CreatedAt); err != nil {
			return err
		}
		return h.enqueue(txCtx, metadata, domain.NewInvoiceGenerated(result.RunID, inv, sub, inv.CreatedAt))
	})
	if errors.Is(err, domain.ErrDuplicateInvoice) {
		// The period is already invoiced; only the date is left to move.
		logger.WarnContext(ctx, "invoice already exists for period, rescheduling only")
		if h.reschedule(ctx, metadata, sub, uuid.Nil, true, result) {
			h.recordResumed(result)
		}
		return
	}
	if err != nil {
		h.recordFailure(ctx, result, sub, domain.StageInvoice, err)
		return
	}

	result.Invoices = append(result.Invoices, domain.GeneratedInvoice{
		InvoiceID:      inv.ID,
		SubscriptionID: sub.ID,
		Amount:         inv.BaseAmount,
		Currency:       inv.CurrencyCode,
		BillingPeriod:  inv.BillingPeriod,
	})
	h.metrics.Counter(observability.MetricBillingInvoicesGenerated, 1)
	logger.InfoContext(ctx, "invoice generated", "invoice_id", inv.ID, "amount", inv.BaseAmount.StringFixed(2), "currency", inv.CurrencyCode)

	h.reschedule(ctx, metadata, sub, inv.ID, false, result)
}

func (h *RunBillingHandler) reschedule(ctx context.Context, metadata sharedDomain.EventMetadata, sub domain.Subscription, invoiceID uuid.UUID, resumed bool, result *domain.RunResult) bool {
	next := domain.NextBillingDate(sub, h.policies)
	at := h.clock.Now()

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.subscriptions.Reschedule(txCtx, sub.ID, next, at); err != nil {
			return err
		}
		return h.enqueue(txCtx, metadata, domain.NewSubscriptionRescheduled(result.RunID, sub, invoiceID, next, resumed, at))
	})
	if err != nil {
		h.recordFailure(ctx, result, sub, domain.StageReschedule, err)
		return false
	}
	return true
}

func (h *RunBillingHandler) enqueue(ctx context.Context, metadata sharedDomain.EventMetadata, events ...sharedDomain.DomainEvent) error {
	sharedApplication.ApplyEventMetadata(events, metadata)
	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	return h.outboxRepo.SaveBatch(ctx, msgs)
}

// recordRunEvent stores a run-level event. Failure to store it does not
// change the outcome of the run.
func (h *RunBillingHandler) recordRunEvent(ctx context.Context, metadata sharedDomain.EventMetadata, event sharedDomain.DomainEvent) {
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		return h.enqueue(txCtx, metadata, event)
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to record run event", "routing_key", event.RoutingKey(), observability.ErrorKey, err)
	}
}

func (h *RunBillingHandler) recordFailure(ctx context.Context, result *domain.RunResult, sub domain.Subscription, stage string, err error) {
	result.Failures = append(result.Failures, domain.ItemFailure{
		SubscriptionID: sub.ID,
		Stage:          stage,
		Error:          err.Error(),
	})
	h.metrics.Counter(observability.MetricBillingItemFailures, 1, observability.T("stage", stage))
	h.logger.ErrorContext(ctx, "subscription billing failed",
		"subscription_id", sub.ID,
		"stage", stage,
		observability.ErrorKey, err,
	)
}

func (h *RunBillingHandler) recordResumed(result *domain.RunResult) {
	result.Resumed++
	h.metrics.Counter(observability.MetricBillingReschedulesResumed, 1)
}

func (h *RunBillingHandler) finish(ctx context.Context, timer *observability.Timer, result domain.RunResult) {
	status := result.Status()
	timer.WithTags(observability.T(observability.StatusKey, string(status))).StopWithError(result.Err)
	h.metrics.Counter(observability.MetricBillingRuns, 1, observability.T(observability.StatusKey, string(status)))

	h.logger.InfoContext(ctx, "billing run finished",
		observability.StatusKey, status,
		"considered", result.Considered,
		"due", result.Due,
		"invoices", result.InvoiceCount(),
		"resumed", result.Resumed,
		"failures", len(result.Failures),
		observability.DurationKey, result.Duration().Milliseconds(),
	)

	if h.sink != nil {
		go h.sink.RunFinished(result)
	}
}

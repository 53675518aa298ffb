package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RunStatus is the outcome of a billing run.
type RunStatus string

const (
	RunCompleted           RunStatus = "completed"
	RunCompletedWithErrors RunStatus = "completed_with_errors"
	RunFailed              RunStatus = "failed"
)

// Stages at which a single subscription can fail.
const (
	StageFiscal     = "fiscal_validation"
	StageInvoice    = "invoice"
	StageReschedule = "reschedule"
)

// GeneratedInvoice identifies an invoice created by a run.
type GeneratedInvoice struct {
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	SubscriptionID uuid.UUID       `json:"subscription_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	BillingPeriod  string          `json:"billing_period"`
}

// ItemFailure records why one subscription was not fully processed.
type ItemFailure struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	Stage          string    `json:"stage"`
	Error          string    `json:"error"`
}

// RunResult reports what a billing run did.
type RunResult struct {
	RunID      uuid.UUID          `json:"run_id"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Considered int                `json:"considered"`
	Due        int                `json:"due"`
	Invoices   []GeneratedInvoice `json:"invoices"`
	Resumed    int                `json:"resumed"`
	Failures   []ItemFailure      `json:"failures"`
	Err        error              `json:"-"`
}

// Status derives the run status from the collected outcome.
func (r RunResult) Status() RunStatus {
	switch {
	case r.Err != nil:
		return RunFailed
	case len(r.Failures) > 0:
		return RunCompletedWithErrors
	default:
		return RunCompleted
	}
}

// InvoiceCount is the number of invoices the run created.
func (r RunResult) InvoiceCount() int { return len(r.Invoices) }

// Duration is the wall time of the run.
func (r RunResult) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// StatusSink receives the final result of every run. Implementations must
// not block.
type StatusSink interface {
	RunFinished(result RunResult)
}

// StatusSinkFunc adapts a function to StatusSink.
type StatusSinkFunc func(result RunResult)

func (f StatusSinkFunc) RunFinished(result RunResult) { f(result) }

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// ErrRunInProgress is returned when another billing run holds the lock.
var ErrRunInProgress = errors.New("billing run already in progress")

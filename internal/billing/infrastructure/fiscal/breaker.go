package fiscal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

// BreakerConfig configures the circuit breaker around a validator.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the
	// breaker.
	FailureThreshold uint32
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32
}

// DefaultBreakerConfig returns a sensible default configuration.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 3, Timeout: 30 * time.Second, MaxRequests: 1}
}

// BreakerValidator stops calling an unavailable authority. Rejections are
// answers, not outages, and never open the breaker.
type BreakerValidator struct {
	next    domain.FiscalValidator
	breaker *gobreaker.CircuitBreaker[domain.FiscalToken]
	metrics observability.Metrics
}

var _ domain.FiscalValidator = (*BreakerValidator)(nil)

// NewBreakerValidator wraps next with a circuit breaker.
func NewBreakerValidator(next domain.FiscalValidator, cfg BreakerConfig, logger *slog.Logger, metrics observability.Metrics) *BreakerValidator {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}

	settings := gobreaker.Settings{
		Name:        "fiscal",
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrFiscalRejected)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			metrics.Gauge(observability.MetricFiscalBreaker, float64(to), observability.T("name", name))
		},
	}

	return &BreakerValidator{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[domain.FiscalToken](settings),
		metrics: metrics,
	}
}

// Validate forwards to the wrapped validator unless the breaker is open.
func (v *BreakerValidator) Validate(ctx context.Context, req domain.FiscalRequest) (domain.FiscalToken, error) {
	token, err := v.breaker.Execute(func() (domain.FiscalToken, error) {
		return v.next.Validate(ctx, req)
	})

	outcome := "validated"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "short_circuited"
		err = fmt.Errorf("%w: %v", domain.ErrFiscalUnavailable, err)
	case errors.Is(err, domain.ErrFiscalRejected):
		outcome = "rejected"
	case err != nil:
		outcome = "error"
	}
	v.metrics.Counter(observability.MetricFiscalValidations, 1, observability.T("outcome", outcome))
	return token, err
}

// State reports the breaker state.
func (v *BreakerValidator) State() string {
	return v.breaker.State().String()
}

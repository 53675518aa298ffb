package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	billingCommands "github.com/troncosounlar-bit/legasync-flow/internal/billing/application/commands"
	billingDomain "github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

// RunScheduledBilling runs a billing pass now and then every interval until
// ctx is done. A run held by another process is skipped.
func (c *Container) RunScheduledBilling(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		c.Logger.Info("scheduled billing disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		c.runBillingOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Container) runBillingOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx = observability.WithCorrelationID(ctx, "")
	_, err := c.RunBilling.Handle(ctx, billingCommands.RunBillingCommand{OperatorID: c.operatorID})
	switch {
	case errors.Is(err, billingDomain.ErrRunInProgress):
		c.Logger.InfoContext(ctx, "billing run skipped, another run holds the lock")
	case err != nil:
		c.Logger.ErrorContext(ctx, "scheduled billing run failed", observability.ErrorKey, err)
	}
}

// CleanupOutbox deletes published outbox messages older than the configured
// retention every interval until ctx is done.
func (c *Container) CleanupOutbox(ctx context.Context, interval time.Duration) {
	if interval <= 0 || c.Config.OutboxRetentionDays <= 0 {
		return
	}
	retention := time.Duration(c.Config.OutboxRetentionDays) * 24 * time.Hour
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := c.OutboxProcessor.Cleanup(ctx, retention)
			if err != nil {
				c.Logger.Error("outbox cleanup failed", observability.ErrorKey, err)
				continue
			}
			if deleted > 0 {
				c.Logger.Info("outbox cleanup completed", "deleted", deleted, "retention_days", c.Config.OutboxRetentionDays)
			}
		}
	}
}

// LogOutboxStats logs processor statistics every interval until ctx is done.
func (c *Container) LogOutboxStats(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := c.OutboxProcessor.GetStats()
			c.Logger.Info("outbox stats",
				"running", stats.IsRunning,
				"published", stats.PublishedCount,
				"failed", stats.FailedCount,
				"dead", stats.DeadCount,
				"lag_seconds", stats.LagSeconds,
				"oldest_message_at", stats.OldestMessageAt,
				"last_processed_at", stats.LastProcessedAt,
				"last_error", stats.LastError,
			)
		}
	}
}

// HealthHandler serves /healthz with outbox and billing counters and
// /readyz with the registered health checks.
func (c *Container) HealthHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		stats := c.OutboxProcessor.GetStats()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":            "ok",
			"running":           stats.IsRunning,
			"published":         stats.PublishedCount,
			"failed":            stats.FailedCount,
			"dead":              stats.DeadCount,
			"last_processed_at": stats.LastProcessedAt,
			"last_error_at":     stats.LastErrorAt,
			"last_error":        stats.LastError,
			"fiscal_breaker":    c.Fiscal.State(),
			"metrics":           c.Metrics.Snapshot(),
		})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		health := c.Health.Check(checkCtx)
		code := http.StatusOK
		if health.Status == observability.HealthStatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, health)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// Package viewcache keeps the invoice and active-subscription lists that
// screens, metrics and statistics read from. Values are stored as JSON in
// Redis when available, otherwise in process memory.
package viewcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

const (
	// KeyPrefix namespaces every cached view.
	KeyPrefix = "legasync:view:"

	keyInvoices      = KeyPrefix + "invoices"
	keySubscriptions = KeyPrefix + "subscriptions:active"

	// DefaultTTL bounds how stale a view can get if nobody refreshes it.
	DefaultTTL = 10 * time.Minute
)

// Store is the byte-level backend the views are kept in.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Source loads the views from the system of record.
type Source interface {
	Invoices(ctx context.Context) ([]domain.Invoice, error)
	ActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error)
}

type repositorySource struct {
	subs     domain.SubscriptionRepository
	invoices domain.InvoiceRepository
}

// RepositorySource reads views straight from the repositories.
func RepositorySource(subs domain.SubscriptionRepository, invoices domain.InvoiceRepository) Source {
	return repositorySource{subs: subs, invoices: invoices}
}

func (s repositorySource) Invoices(ctx context.Context) ([]domain.Invoice, error) {
	return s.invoices.List(ctx, "")
}

func (s repositorySource) ActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	return s.subs.ListActive(ctx)
}

// Views implements domain.ViewCache on top of a Store.
type Views struct {
	source  Source
	store   Store
	ttl     time.Duration
	logger  *slog.Logger
	metrics observability.Metrics

	refreshMu sync.Mutex
}

var _ domain.ViewCache = (*Views)(nil)

// New creates the view cache. A zero ttl uses DefaultTTL.
func New(source Source, store Store, ttl time.Duration, logger *slog.Logger, metrics observability.Metrics) *Views {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Views{source: source, store: store, ttl: ttl, logger: logger, metrics: metrics}
}

// Invoices returns the cached invoice list, loading it on first use.
func (v *Views) Invoices(ctx context.Context) ([]domain.Invoice, error) {
	return read(ctx, v, keyInvoices, v.source.Invoices)
}

// ActiveSubscriptions returns the cached active subscriptions, loading them
// on first use.
func (v *Views) ActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	return read(ctx, v, keySubscriptions, v.source.ActiveSubscriptions)
}

// Refresh reloads both views from the source.
func (v *Views) Refresh(ctx context.Context) error {
	v.refreshMu.Lock()
	defer v.refreshMu.Unlock()

	err := observability.TimeOperation(nil, v.metrics, "views.refresh", func() error {
		if _, err := load(ctx, v, keyInvoices, v.source.Invoices); err != nil {
			return err
		}
		_, err := load(ctx, v, keySubscriptions, v.source.ActiveSubscriptions)
		return err
	})

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	v.metrics.Counter(observability.MetricViewRefreshes, 1, observability.T("status", outcome))
	return err
}

// Invalidate drops both views; the next read reloads them.
func (v *Views) Invalidate(ctx context.Context) error {
	if err := v.store.Delete(ctx, keyInvoices, keySubscriptions); err != nil {
		return fmt.Errorf("invalidate views: %w", err)
	}
	return nil
}

func read[T any](ctx context.Context, v *Views, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	raw, ok, err := v.store.Get(ctx, key)
	if err != nil {
		v.logger.WarnContext(ctx, "view cache read failed, loading from source", "key", key, observability.ErrorKey, err)
	} else if ok {
		var items []T
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
		v.logger.WarnContext(ctx, "discarding undecodable view", "key", key)
	}
	return load(ctx, v, key, fetch)
}

func load[T any](ctx context.Context, v *Views, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	items, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("load view %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode view %s: %w", key, err)
	}
	if err := v.store.Set(ctx, key, raw, v.ttl); err != nil {
		v.logger.WarnContext(ctx, "view cache write failed", "key", key, observability.ErrorKey, err)
	}
	return items, nil
}

// Package application serves the exchange panel.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker/v2"

	"github.com/troncosounlar-bit/legasync-flow/internal/exchange/domain"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

const ratesKey = "rates"

// DefaultCacheTTL is how long a fetched list is served before refetching.
const DefaultCacheTTL = 5 * time.Minute

// RatesService caches curated quotes and keeps serving the last good list
// while the provider is failing.
type RatesService struct {
	source  domain.Source
	cache   *gocache.Cache
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[[]domain.Rate]
	logger  *slog.Logger
	metrics observability.Metrics

	mu       sync.RWMutex
	lastGood []domain.Rate
}

// NewRatesService creates the service. Zero ttl uses DefaultCacheTTL.
func NewRatesService(source domain.Source, ttl time.Duration, logger *slog.Logger, metrics observability.Metrics) *RatesService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	breaker := gobreaker.NewCircuitBreaker[[]domain.Rate](gobreaker.Settings{
		Name:        "exchange",
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &RatesService{
		source:  source,
		cache:   gocache.New(ttl, 2*ttl),
		ttl:     ttl,
		breaker: breaker,
		logger:  logger,
		metrics: metrics,
	}
}

// Rates returns the curated quotes, from cache when fresh.
func (s *RatesService) Rates(ctx context.Context) ([]domain.Rate, error) {
	if cached, ok := s.cache.Get(ratesKey); ok {
		return cached.([]domain.Rate), nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches a new list regardless of the cache.
func (s *RatesService) Refresh(ctx context.Context) ([]domain.Rate, error) {
	rates, err := s.breaker.Execute(func() ([]domain.Rate, error) {
		raw, err := s.source.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		return domain.Curate(raw), nil
	})
	if err != nil {
		s.metrics.Counter(observability.MetricExchangeFetches, 1, observability.T("status", "error"))
		if last := s.last(); len(last) > 0 {
			s.logger.WarnContext(ctx, "serving last known exchange rates", observability.ErrorKey, err)
			return last, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrRatesUnavailable, err)
	}

	s.metrics.Counter(observability.MetricExchangeFetches, 1, observability.T("status", "ok"))
	s.cache.Set(ratesKey, rates, s.ttl)
	s.mu.Lock()
	s.lastGood = rates
	s.mu.Unlock()
	return rates, nil
}

// RateByCasa returns a single quote.
func (s *RatesService) RateByCasa(ctx context.Context, casa string) (domain.Rate, error) {
	rates, err := s.Rates(ctx)
	if err != nil {
		return domain.Rate{}, err
	}
	return domain.Find(rates, casa)
}

func (s *RatesService) last() []domain.Rate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastGood
}

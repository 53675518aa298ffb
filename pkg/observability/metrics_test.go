package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryMetrics(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter(MetricBillingInvoicesGenerated, 2)
	m.Counter(MetricBillingInvoicesGenerated, 3)
	m.Gauge(MetricFiscalBreaker, 1, T("name", "fiscal"))
	m.Timing(MetricBillingRunDuration, time.Second)

	assert.Equal(t, int64(5), m.GetCounter(MetricBillingInvoicesGenerated))
	assert.Equal(t, float64(1), m.GetGauge(MetricFiscalBreaker, T("name", "fiscal")))
	assert.Equal(t, []time.Duration{time.Second}, m.GetTimings(MetricBillingRunDuration))

	snapshot := m.Snapshot()
	assert.Equal(t, int64(5), snapshot[MetricBillingInvoicesGenerated])
}

func TestFormatKey_TagOrderIsStable(t *testing.T) {
	a := formatKey("m", []Tag{T("b", "2"), T("a", "1")})
	b := formatKey("m", []Tag{T("a", "1"), T("b", "2")})
	assert.Equal(t, a, b)
	assert.Equal(t, "m:a=1:b=2", a)
}

func TestNoopMetrics(t *testing.T) {
	var m Metrics = NoopMetrics{}
	assert.NotPanics(t, func() {
		m.Counter("x", 1)
		m.Gauge("x", 1)
		m.Timing("x", time.Second)
	})
}

func TestHealthRegistry(t *testing.T) {
	tests := []struct {
		name     string
		checks   map[string]HealthChecker
		expected HealthStatus
	}{
		{
			name:     "no checks is healthy",
			checks:   map[string]HealthChecker{},
			expected: HealthStatusHealthy,
		},
		{
			name: "optional failure degrades",
			checks: map[string]HealthChecker{
				"database": PingChecker("database", true, func(context.Context) error { return nil }),
				"redis":    PingChecker("redis", false, func(context.Context) error { return errors.New("down") }),
			},
			expected: HealthStatusDegraded,
		},
		{
			name: "required failure is unhealthy",
			checks: map[string]HealthChecker{
				"database": PingChecker("database", true, func(context.Context) error { return errors.New("down") }),
				"redis":    PingChecker("redis", false, func(context.Context) error { return errors.New("down") }),
			},
			expected: HealthStatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewHealthRegistry()
			for name, check := range tt.checks {
				r.Register(name, check)
			}

			health := r.Check(context.Background())
			assert.Equal(t, tt.expected, health.Status)
			assert.Len(t, health.Checks, len(tt.checks))
			assert.Len(t, r.Names(), len(tt.checks))
		})
	}
}

package fiscal

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-plugin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

func sampleRequest() domain.FiscalRequest {
	return domain.FiscalRequest{
		SubscriptionID: uuid.New(),
		CustomerID:     uuid.New(),
		CustomerName:   "Estudio Pérez",
		Amount:         decimal.RequireFromString("1500.50"),
		Currency:       "ARS",
		BillingPeriod:  "2024-02-01",
	}
}

var tokenPattern = regexp.MustCompile(`^CAE-[0-9A-Z]{9}$`)

func TestSimulatedValidator(t *testing.T) {
	t.Run("returns a CAE token", func(t *testing.T) {
		v := NewSimulatedValidator(0)

		token, err := v.Validate(context.Background(), sampleRequest())

		require.NoError(t, err)
		assert.Regexp(t, tokenPattern, string(token))
	})

	t.Run("tokens differ between calls", func(t *testing.T) {
		v := NewSimulatedValidator(0)

		a, err := v.Validate(context.Background(), sampleRequest())
		require.NoError(t, err)
		b, err := v.Validate(context.Background(), sampleRequest())
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
	})

	t.Run("honours cancellation during the delay", func(t *testing.T) {
		v := NewSimulatedValidator(time.Hour)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := v.Validate(ctx, sampleRequest())

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewToken_DiscardsBiasedBytes(t *testing.T) {
	t.Run("skips bytes past the last full alphabet cycle", func(t *testing.T) {
		src := []byte{255, 252, 0, 1, 35, 36, 251, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

		token, err := newTokenFrom(bytes.NewReader(src))

		require.NoError(t, err)
		assert.Equal(t, domain.FiscalToken("CAE-01Z0Z2345"), token)
	})

	t.Run("reads more when a batch is mostly discarded", func(t *testing.T) {
		src := bytes.Repeat([]byte{253}, 2*tokenLength)
		src = append(src, bytes.Repeat([]byte{71}, 2*tokenLength)...)

		token, err := newTokenFrom(bytes.NewReader(src))

		require.NoError(t, err)
		assert.Equal(t, domain.FiscalToken("CAE-ZZZZZZZZZ"), token)
	})

	t.Run("short entropy source", func(t *testing.T) {
		_, err := newTokenFrom(bytes.NewReader([]byte{1, 2, 3}))

		assert.Error(t, err)
	})

	t.Run("every character is reachable", func(t *testing.T) {
		seen := map[rune]bool{}
		for i := 0; i < 500; i++ {
			token, err := NewToken()
			require.NoError(t, err)
			require.Regexp(t, tokenPattern, string(token))
			for _, c := range string(token)[len(TokenPrefix):] {
				seen[c] = true
			}
		}
		assert.Len(t, seen, len(tokenAlphabet))
	})
}

func TestBreakerValidator(t *testing.T) {
	t.Run("opens after consecutive outages", func(t *testing.T) {
		calls := 0
		failing := domain.FiscalValidatorFunc(func(context.Context, domain.FiscalRequest) (domain.FiscalToken, error) {
			calls++
			return "", errors.New("connection refused")
		})
		metrics := observability.NewInMemoryMetrics()
		v := NewBreakerValidator(failing, BreakerConfig{FailureThreshold: 2, Timeout: time.Minute}, nil, metrics)

		for i := 0; i < 2; i++ {
			_, err := v.Validate(context.Background(), sampleRequest())
			require.Error(t, err)
		}
		_, err := v.Validate(context.Background(), sampleRequest())

		assert.ErrorIs(t, err, domain.ErrFiscalUnavailable)
		assert.Equal(t, 2, calls)
		assert.Equal(t, "open", v.State())
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricFiscalValidations, observability.T("outcome", "short_circuited")))
		assert.Equal(t, int64(2), metrics.GetCounter(observability.MetricFiscalValidations, observability.T("outcome", "error")))
	})

	t.Run("rejections keep the breaker closed", func(t *testing.T) {
		rejecting := domain.FiscalValidatorFunc(func(context.Context, domain.FiscalRequest) (domain.FiscalToken, error) {
			return "", domain.ErrFiscalRejected
		})
		v := NewBreakerValidator(rejecting, BreakerConfig{FailureThreshold: 1, Timeout: time.Minute}, nil, nil)

		for i := 0; i < 3; i++ {
			_, err := v.Validate(context.Background(), sampleRequest())
			assert.ErrorIs(t, err, domain.ErrFiscalRejected)
		}
		assert.Equal(t, "closed", v.State())
	})

	t.Run("passes tokens through", func(t *testing.T) {
		v := NewBreakerValidator(NewSimulatedValidator(0), DefaultBreakerConfig(), nil, nil)

		token, err := v.Validate(context.Background(), sampleRequest())

		require.NoError(t, err)
		assert.Regexp(t, tokenPattern, string(token))
	})
}

func dispense(t *testing.T, impl domain.FiscalValidator) domain.FiscalValidator {
	t.Helper()
	client, server := plugin.TestPluginGRPCConn(t, false, PluginMap(impl))
	t.Cleanup(func() {
		client.Close()
		server.Stop()
	})

	raw, err := client.Dispense(PluginName)
	require.NoError(t, err)
	v, ok := raw.(domain.FiscalValidator)
	require.True(t, ok)
	return v
}

func TestGRPCPlugin(t *testing.T) {
	t.Run("round trips the request", func(t *testing.T) {
		var got domain.FiscalRequest
		impl := domain.FiscalValidatorFunc(func(_ context.Context, req domain.FiscalRequest) (domain.FiscalToken, error) {
			got = req
			return "CAE-ABCDEF123", nil
		})
		v := dispense(t, impl)
		req := sampleRequest()

		token, err := v.Validate(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, domain.FiscalToken("CAE-ABCDEF123"), token)
		assert.Equal(t, req.SubscriptionID, got.SubscriptionID)
		assert.Equal(t, req.CustomerID, got.CustomerID)
		assert.Equal(t, req.CustomerName, got.CustomerName)
		assert.True(t, req.Amount.Equal(got.Amount))
		assert.Equal(t, req.Currency, got.Currency)
		assert.Equal(t, req.BillingPeriod, got.BillingPeriod)
	})

	t.Run("maps rejection", func(t *testing.T) {
		v := dispense(t, domain.FiscalValidatorFunc(func(context.Context, domain.FiscalRequest) (domain.FiscalToken, error) {
			return "", domain.ErrFiscalRejected
		}))

		_, err := v.Validate(context.Background(), sampleRequest())

		assert.ErrorIs(t, err, domain.ErrFiscalRejected)
	})

	t.Run("maps other failures to unavailable", func(t *testing.T) {
		v := dispense(t, domain.FiscalValidatorFunc(func(context.Context, domain.FiscalRequest) (domain.FiscalToken, error) {
			return "", errors.New("afip timeout")
		}))

		_, err := v.Validate(context.Background(), sampleRequest())

		assert.ErrorIs(t, err, domain.ErrFiscalUnavailable)
		assert.Contains(t, err.Error(), "afip timeout")
	})
}

func TestLoadPlugin_MissingBinary(t *testing.T) {
	_, err := LoadPlugin("/nonexistent/fiscal-plugin", nil)
	assert.Error(t, err)

	_, err = LoadPlugin("", nil)
	assert.Error(t, err)
}

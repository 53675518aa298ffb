package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troncosounlar-bit/legasync-flow/internal/shared/domain"
)

func TestNewMoney(t *testing.T) {
	t.Run("normalizes currency", func(t *testing.T) {
		m, err := domain.NewMoney(decimal.NewFromInt(45), " usd ")
		require.NoError(t, err)
		assert.Equal(t, "USD", m.Currency())
		assert.Equal(t, "45.00 USD", m.String())
	})

	t.Run("rejects invalid currency", func(t *testing.T) {
		for _, code := range []string{"", "US", "DOLLAR", "U$D"} {
			_, err := domain.NewMoney(decimal.NewFromInt(1), code)
			assert.ErrorIs(t, err, domain.ErrInvalidCurrency, code)
		}
	})
}

func TestMoney_Add(t *testing.T) {
	a := domain.MustMoney("10.50", "ARS")
	b := domain.MustMoney("0.25", "ARS")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equals(domain.MustMoney("10.75", "ARS")))

	_, err = a.Add(domain.MustMoney("1", "USD"))
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

func TestMoney_Round(t *testing.T) {
	assert.Equal(t, "0.01 USD", domain.MustMoney("0.005", "USD").Round().String())
	assert.Equal(t, "-0.01 USD", domain.MustMoney("-0.005", "USD").Round().String())
}

func TestMoney_Equals(t *testing.T) {
	m := domain.MustMoney("1.0", "EUR")
	assert.True(t, m.Equals(domain.MustMoney("1.00", "EUR")))
	assert.False(t, m.Equals(domain.MustMoney("1.00", "USD")))
	assert.True(t, domain.MustMoney("0", "USD").IsZero())
}

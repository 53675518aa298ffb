package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdvanceBillingDate(t *testing.T) {
	tests := []struct {
		name       string
		from       time.Time
		months     int
		billingDay int
		policy     domain.MonthEndPolicy
		want       time.Time
	}{
		{"plain month", date(2024, 1, 1), 1, 0, domain.MonthEndClamp, date(2024, 2, 1)},
		{"clamp to leap february", date(2024, 1, 31), 1, 0, domain.MonthEndClamp, date(2024, 2, 29)},
		{"clamp to february", date(2023, 1, 31), 1, 0, domain.MonthEndClamp, date(2023, 2, 28)},
		{"anchor restores day after short month", date(2024, 2, 29), 1, 31, domain.MonthEndClamp, date(2024, 3, 31)},
		{"year boundary", date(2024, 12, 15), 1, 0, domain.MonthEndClamp, date(2025, 1, 15)},
		{"yearly", date(2024, 2, 29), 12, 0, domain.MonthEndClamp, date(2025, 2, 28)},
		{"overflow leap year", date(2024, 1, 31), 1, 0, domain.MonthEndOverflow, date(2024, 3, 2)},
		{"overflow common year", date(2023, 1, 31), 1, 0, domain.MonthEndOverflow, date(2023, 3, 3)},
		{"overflow without surplus", date(2024, 3, 10), 1, 0, domain.MonthEndOverflow, date(2024, 4, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.AdvanceBillingDate(tt.from, tt.months, tt.billingDay, tt.policy)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdvanceBillingDate_DropsTimeOfDay(t *testing.T) {
	from := time.Date(2024, 5, 10, 23, 30, 0, 0, time.UTC)
	got := domain.AdvanceBillingDate(from, 1, 0, domain.MonthEndClamp)
	assert.Equal(t, date(2024, 6, 10), got)
}

func TestSubscription_IsDue(t *testing.T) {
	now := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

	t.Run("past date is due", func(t *testing.T) {
		sub := domain.Subscription{IsActive: true, NextBillingDate: date(2024, 1, 1)}
		assert.True(t, sub.IsDue(now))
	})

	t.Run("same day is due regardless of time", func(t *testing.T) {
		sub := domain.Subscription{IsActive: true, NextBillingDate: time.Date(2024, 1, 5, 23, 59, 0, 0, time.UTC)}
		assert.True(t, sub.IsDue(now))
	})

	t.Run("future date is not due", func(t *testing.T) {
		sub := domain.Subscription{IsActive: true, NextBillingDate: date(2024, 1, 6)}
		assert.False(t, sub.IsDue(now))
	})

	t.Run("inactive is never due", func(t *testing.T) {
		sub := domain.Subscription{IsActive: false, NextBillingDate: date(2023, 1, 1)}
		assert.False(t, sub.IsDue(now))
	})
}

func TestPolicies(t *testing.T) {
	yearlyARS := domain.Subscription{Interval: domain.IntervalYearly, CurrencyCode: "ARS", NextBillingDate: date(2024, 1, 1)}

	t.Run("defaults bill monthly in USD", func(t *testing.T) {
		p := domain.DefaultPolicies()
		assert.Equal(t, "USD", p.CurrencyFor(yearlyARS))
		assert.Equal(t, 1, p.MonthsFor(yearlyARS))
		assert.Len(t, p.Mismatches(yearlyARS), 2)
		assert.Equal(t, date(2024, 2, 1), domain.NextBillingDate(yearlyARS, p))
	})

	t.Run("subscription policies follow the subscription", func(t *testing.T) {
		p, err := domain.ParsePolicies("USD", "subscription", "subscription", "clamp")
		require.NoError(t, err)
		assert.Equal(t, "ARS", p.CurrencyFor(yearlyARS))
		assert.Equal(t, 12, p.MonthsFor(yearlyARS))
		assert.Empty(t, p.Mismatches(yearlyARS))
		assert.Equal(t, date(2025, 1, 1), domain.NextBillingDate(yearlyARS, p))
	})

	t.Run("interval policies parse to their constants", func(t *testing.T) {
		monthly, err := domain.ParsePolicies("USD", "default", "monthly", "clamp")
		require.NoError(t, err)
		assert.Equal(t, domain.IntervalAlwaysMonthly, monthly.Interval)
		assert.Equal(t, 1, monthly.MonthsFor(yearlyARS))

		own, err := domain.ParsePolicies("USD", "default", "subscription", "clamp")
		require.NoError(t, err)
		assert.Equal(t, domain.IntervalFromSubscription, own.Interval)
		assert.Equal(t, 12, own.MonthsFor(yearlyARS))
	})

	t.Run("rejects unknown policies", func(t *testing.T) {
		_, err := domain.ParsePolicies("USD", "local", "monthly", "clamp")
		assert.Error(t, err)
		_, err = domain.ParsePolicies("USD", "default", "weekly", "clamp")
		assert.Error(t, err)
		_, err = domain.ParsePolicies("USD", "default", "monthly", "round")
		assert.Error(t, err)
	})
}

package domain

import (
	"fmt"
	"time"
)

// CurrencyPolicy decides which currency the billing run invoices in.
type CurrencyPolicy string

const (
	// CurrencyDefault invoices every subscription in the configured currency.
	CurrencyDefault CurrencyPolicy = "default"
	// CurrencySubscription invoices in the subscription's own currency.
	CurrencySubscription CurrencyPolicy = "subscription"
)

// IntervalPolicy decides how far a billing run moves the next billing date.
type IntervalPolicy string

const (
	// IntervalAlwaysMonthly advances every subscription by one month.
	IntervalAlwaysMonthly IntervalPolicy = "monthly"
	// IntervalFromSubscription advances by the subscription's own interval.
	IntervalFromSubscription IntervalPolicy = "subscription"
)

// MonthEndPolicy decides what happens when the anchor day does not exist
// in the target month.
type MonthEndPolicy string

const (
	// MonthEndClamp moves to the last day of the target month.
	MonthEndClamp MonthEndPolicy = "clamp"
	// MonthEndOverflow rolls the surplus days into the following month.
	MonthEndOverflow MonthEndPolicy = "overflow"
)

// Policies groups the configurable billing decisions.
type Policies struct {
	DefaultCurrency string
	Currency        CurrencyPolicy
	Interval        IntervalPolicy
	MonthEnd        MonthEndPolicy
}

// DefaultPolicies invoices in USD every month and clamps at month end.
func DefaultPolicies() Policies {
	return Policies{
		DefaultCurrency: "USD",
		Currency:        CurrencyDefault,
		Interval:        IntervalAlwaysMonthly,
		MonthEnd:        MonthEndClamp,
	}
}

// ParsePolicies validates raw policy names, typically read from config.
func ParsePolicies(defaultCurrency, currency, interval, monthEnd string) (Policies, error) {
	p := Policies{
		DefaultCurrency: defaultCurrency,
		Currency:        CurrencyPolicy(currency),
		Interval:        IntervalPolicy(interval),
		MonthEnd:        MonthEndPolicy(monthEnd),
	}
	if p.DefaultCurrency == "" {
		p.DefaultCurrency = "USD"
	}
	switch p.Currency {
	case CurrencyDefault, CurrencySubscription:
	default:
		return Policies{}, fmt.Errorf("unknown currency policy %q", currency)
	}
	switch p.Interval {
	case IntervalAlwaysMonthly, IntervalFromSubscription:
	default:
		return Policies{}, fmt.Errorf("unknown interval policy %q", interval)
	}
	switch p.MonthEnd {
	case MonthEndClamp, MonthEndOverflow:
	default:
		return Policies{}, fmt.Errorf("unknown month end policy %q", monthEnd)
	}
	return p, nil
}

// CurrencyFor returns the currency an automated invoice for sub uses.
func (p Policies) CurrencyFor(sub Subscription) string {
	if p.Currency == CurrencySubscription && sub.CurrencyCode != "" {
		return sub.CurrencyCode
	}
	return p.DefaultCurrency
}

// MonthsFor returns how many months a billing run advances sub.
func (p Policies) MonthsFor(sub Subscription) int {
	if p.Interval == IntervalFromSubscription && sub.Interval == IntervalYearly {
		return 12
	}
	return 1
}

// Mismatches lists the ways sub disagrees with the active policies.
func (p Policies) Mismatches(sub Subscription) []string {
	var out []string
	if p.Currency == CurrencyDefault && sub.CurrencyCode != "" && sub.CurrencyCode != p.DefaultCurrency {
		out = append(out, fmt.Sprintf("currency %s billed as %s", sub.CurrencyCode, p.DefaultCurrency))
	}
	if p.Interval == IntervalAlwaysMonthly && sub.Interval == IntervalYearly {
		out = append(out, "yearly interval billed monthly")
	}
	return out
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AdvanceBillingDate adds whole calendar months to date. billingDay anchors
// the day of month; zero means the date's own day.
func AdvanceBillingDate(date time.Time, months, billingDay int, policy MonthEndPolicy) time.Time {
	date = DateOf(date)
	anchor := billingDay
	if anchor <= 0 || anchor > 31 {
		anchor = date.Day()
	}

	if policy == MonthEndOverflow {
		// time.Date normalises out-of-range days forward.
		return time.Date(date.Year(), date.Month()+time.Month(months), anchor, 0, 0, 0, 0, time.UTC)
	}

	first := time.Date(date.Year(), date.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(first); anchor > last {
		anchor = last
	}
	return time.Date(first.Year(), first.Month(), anchor, 0, 0, 0, 0, time.UTC)
}

// NextBillingDate is the date sub moves to after being billed.
func NextBillingDate(sub Subscription, p Policies) time.Time {
	return AdvanceBillingDate(sub.NextBillingDate, p.MonthsFor(sub), sub.BillingDay, p.MonthEnd)
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}

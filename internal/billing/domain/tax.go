package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrTaxLimitExceeded is returned for amounts the legacy engine refuses.
var ErrTaxLimitExceeded = errors.New("LIMITE_EXCEDIDO")

var (
	legacyTaxRate  = decimal.RequireFromString("0.21")
	legacyTaxLimit = decimal.NewFromInt(5_000_000)
	hundred        = decimal.NewFromInt(100)
	half           = decimal.RequireFromString("0.5")
)

// CalculateLegacyTax applies the 21% rate and rounds to cents with half
// values moving toward positive infinity. Negative amounts are accepted.
func CalculateLegacyTax(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Abs().GreaterThan(legacyTaxLimit) {
		return decimal.Zero, ErrTaxLimitExceeded
	}
	return roundHalfUp(amount.Mul(legacyTaxRate).Mul(hundred)).Div(hundred), nil
}

func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}

// roundPercent rounds part/total*100 to a whole percentage.
func roundPercent(part, total decimal.Decimal) int {
	return int(roundHalfUp(part.Div(total).Mul(hundred)).IntPart())
}

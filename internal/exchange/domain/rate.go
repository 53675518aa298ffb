// Package domain holds the dollar quotes shown on the exchange panel.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var (
	ErrRateNotFound     = errors.New("exchange rate not found")
	ErrRatesUnavailable = errors.New("exchange rates unavailable")
)

// Rate is one dollar quote. Buy is absent for quotes that only sell.
type Rate struct {
	Currency  string              `json:"moneda"`
	Casa      string              `json:"casa"`
	Name      string              `json:"nombre"`
	Buy       decimal.NullDecimal `json:"compra"`
	Sell      decimal.Decimal     `json:"venta"`
	UpdatedAt time.Time           `json:"fechaActualizacion"`
}

// Source fetches the raw quote list from a provider.
type Source interface {
	Fetch(ctx context.Context) ([]Rate, error)
}

// Casas shown on the panel, in display order.
var Casas = []string{"oficial", "blue", "bolsa", "contadoconliqui", "tarjeta"}

var displayNames = map[string]string{
	"oficial":         "Dólar Oficial",
	"blue":            "Dólar Blue",
	"bolsa":           "Dólar MEP",
	"contadoconliqui": "Dólar CCL",
	"tarjeta":         "Dólar Tarjeta",
}

// Curate keeps the known casas, renames them for display and orders them
// as in Casas.
func Curate(rates []Rate) []Rate {
	byCasa := lo.KeyBy(rates, func(r Rate) string { return r.Casa })
	return lo.FilterMap(Casas, func(casa string, _ int) (Rate, bool) {
		rate, ok := byCasa[casa]
		if !ok {
			return Rate{}, false
		}
		rate.Name = displayNames[casa]
		return rate, true
	})
}

// Find returns the quote for casa.
func Find(rates []Rate, casa string) (Rate, error) {
	rate, ok := lo.Find(rates, func(r Rate) bool { return r.Casa == casa })
	if !ok {
		return Rate{}, ErrRateNotFound
	}
	return rate, nil
}

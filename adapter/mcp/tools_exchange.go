package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/troncosounlar-bit/legasync-flow/internal/exchange/domain"
)

type ratesInput struct {
	Casa    string `json:"casa,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`
}

func registerExchangeTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("exchange.rates").
		Description("Dollar quotes (oficial, blue, MEP, CCL, tarjeta); pass casa for a single one").
		Handler(func(ctx context.Context, input ratesInput) ([]domain.Rate, error) {
			if app.Rates == nil {
				return nil, errNotInitialized
			}
			if input.Casa != "" {
				rate, err := app.Rates.RateByCasa(ctx, input.Casa)
				if err != nil {
					return nil, err
				}
				return []domain.Rate{rate}, nil
			}
			if input.Refresh {
				return app.Rates.Refresh(ctx)
			}
			return app.Rates.Rates(ctx)
		})

	return nil
}

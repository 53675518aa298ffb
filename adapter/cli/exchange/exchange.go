// Package exchange shows dollar quotes from the CLI.
package exchange

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/exchange/domain"
)

var (
	casa    string
	refresh bool
)

// Cmd shows the curated dollar quotes.
var Cmd = &cobra.Command{
	Use:   "exchange",
	Short: "Show dollar exchange rates",
	Long: `Show the dollar quotes for the exchange panel. Quotes are cached for a few
minutes; when the provider fails the last known list is shown.

Examples:
  legasync exchange
  legasync exchange --casa blue
  legasync exchange --refresh`,
	Aliases: []string{"rates", "dolar"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Rates == nil {
			return cli.ErrNotInitialized
		}

		out := cmd.OutOrStdout()
		if casa != "" {
			rate, err := app.Rates.RateByCasa(cmd.Context(), casa)
			if err != nil {
				return fmt.Errorf("%s: %w", casa, err)
			}
			printRate(out, rate)
			return nil
		}

		var (
			rates []domain.Rate
			err   error
		)
		if refresh {
			rates, err = app.Rates.Refresh(cmd.Context())
		} else {
			rates, err = app.Rates.Rates(cmd.Context())
		}
		if err != nil {
			return err
		}
		for _, rate := range rates {
			printRate(out, rate)
		}
		return nil
	},
}

func printRate(out io.Writer, rate domain.Rate) {
	buy := "-"
	if rate.Buy.Valid {
		buy = rate.Buy.Decimal.StringFixed(2)
	}
	fmt.Fprintf(out, "%-16s compra %10s  venta %10s  %s\n",
		rate.Name, buy, rate.Sell.StringFixed(2), rate.UpdatedAt.Local().Format("2006-01-02 15:04"))
}

func init() {
	Cmd.Flags().StringVar(&casa, "casa", "", "only this quote (oficial, blue, bolsa, contadoconliqui, tarjeta)")
	Cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache")
}

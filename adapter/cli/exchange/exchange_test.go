package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/adapter/cli/clitest"
	"github.com/troncosounlar-bit/legasync-flow/internal/exchange/domain"
)

const quotes = `[
	{"moneda":"USD","casa":"oficial","nombre":"Oficial","compra":900.5,"venta":950,"fechaActualizacion":"2026-10-15T14:00:00.000Z"},
	{"moneda":"USD","casa":"blue","nombre":"Blue","compra":1180,"venta":1200,"fechaActualizacion":"2026-10-15T14:00:00.000Z"},
	{"moneda":"USD","casa":"mayorista","nombre":"Mayorista","compra":880,"venta":890,"fechaActualizacion":"2026-10-15T14:00:00.000Z"},
	{"moneda":"USD","casa":"tarjeta","nombre":"Tarjeta","compra":null,"venta":1520,"fechaActualizacion":"2026-10-15T14:00:00.000Z"}
]`

func setup(t *testing.T) {
	t.Helper()
	casa = ""
	refresh = false

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(quotes))
	}))
	t.Cleanup(srv.Close)

	cfg := clitest.Config(t)
	cfg.ExchangeAPIURL = srv.URL
	clitest.NewApp(t, cfg)
}

func run(t *testing.T) (string, error) {
	t.Helper()
	var output strings.Builder
	Cmd.SetContext(context.Background())
	Cmd.SetOut(&output)
	err := Cmd.RunE(Cmd, nil)
	return output.String(), err
}

func TestExchangeCmd_NoApp(t *testing.T) {
	cli.SetApp(nil)
	_, err := run(t)
	assert.ErrorIs(t, err, cli.ErrNotInitialized)
}

func TestExchangeCmd_ListsCuratedQuotes(t *testing.T) {
	setup(t)

	out, err := run(t)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Dólar Oficial")
	assert.Contains(t, lines[0], "900.50")
	assert.Contains(t, lines[1], "Dólar Blue")
	assert.Contains(t, lines[2], "Dólar Tarjeta")
	assert.Contains(t, lines[2], "compra          -")
	assert.NotContains(t, out, "Mayorista")
}

func TestExchangeCmd_Casa(t *testing.T) {
	setup(t)

	casa = "blue"
	out, err := run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "venta    1200.00")

	casa = "bolsa"
	_, err = run(t)
	assert.ErrorIs(t, err, domain.ErrRateNotFound)
}

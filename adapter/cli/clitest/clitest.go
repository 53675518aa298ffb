// Package clitest builds a local application for command tests.
package clitest

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/app"
	"github.com/troncosounlar-bit/legasync-flow/pkg/config"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

// OperatorID is the operator every test app acts as.
var OperatorID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Config returns a local SQLite configuration rooted in a temp dir.
func Config(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:               "test",
		OperatorID:           OperatorID.String(),
		SQLitePath:           filepath.Join(t.TempDir(), "legasync.db"),
		ViewCacheTTL:         time.Minute,
		OutboxPollInterval:   10 * time.Millisecond,
		OutboxBatchSize:      50,
		OutboxMaxRetries:     3,
		BillingRunLockTTL:    time.Minute,
		DefaultCurrency:      "USD",
		CurrencyPolicy:       config.CurrencyPolicyDefault,
		IntervalPolicy:       config.IntervalPolicyMonthly,
		MonthEndPolicy:       config.MonthEndPolicyClamp,
		InvoiceRiskAfter:     360 * time.Hour,
		FiscalMode:           config.FiscalModeSimulated,
		FiscalSimulatedDelay: time.Millisecond,
		ExchangeCacheTTL:     time.Minute,
	}
}

// NewApp builds a container from cfg (Config(t) when nil), installs it as
// the current CLI app and removes it when the test ends.
func NewApp(t *testing.T, cfg *config.Config) *cli.App {
	t.Helper()
	if cfg == nil {
		cfg = Config(t)
	}

	var logs bytes.Buffer
	logger := observability.NewLogger(observability.LogConfig{
		Level:  observability.LogLevelError,
		Format: observability.LogFormatText,
		Output: &logs,
	})

	container, err := app.NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)

	a := cli.NewApp(container)
	cli.SetApp(a)
	t.Cleanup(func() {
		cli.SetApp(nil)
		_ = container.Close()
	})
	return a
}

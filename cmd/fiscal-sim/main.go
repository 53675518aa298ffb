// Command fiscal-sim is a fiscal authority plugin that approves every
// request after a fixed delay. Point FISCAL_PLUGIN_PATH at its binary and
// set FISCAL_MODE=plugin to use it.
package main

import (
	"os"
	"time"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/infrastructure/fiscal"
)

func main() {
	delay := 1500 * time.Millisecond
	if raw := os.Getenv("FISCAL_SIMULATED_DELAY"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			delay = d
		}
	}
	fiscal.Serve(fiscal.NewSimulatedValidator(delay))
}

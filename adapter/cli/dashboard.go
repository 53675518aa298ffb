package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the back-office dashboard",
	Long: `Display a combined view of the back office:
- Invoice metrics (revenue, capital at risk, automation, health)
- Active subscriptions
- Recent activity
- Dollar quotes, when the provider is reachable

Examples:
  legasync dashboard`,
	Aliases: []string{"dash", "today"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.InvoiceMetrics == nil {
			return ErrNotInitialized
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "\n  LegaSync Flow")
		fmt.Fprintln(out, strings.Repeat("═", 60))

		if err := showMetrics(cmd, out, app); err != nil {
			return err
		}
		showSubscriptions(cmd, out, app)
		showActivity(cmd, out, app)
		showRates(cmd, out, app)

		fmt.Fprintln(out)
		return nil
	},
}

func showMetrics(cmd *cobra.Command, out io.Writer, app *App) error {
	m, err := app.InvoiceMetrics.Handle(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\n  METRICS")
	fmt.Fprintln(out, strings.Repeat("-", 60))
	fmt.Fprintf(out, "    Revenue %s | At risk %s | Automation %d%% | Health %d%%\n",
		m.TotalRevenue.StringFixed(2), m.RiskCapital.StringFixed(2), m.AutomationRatio, m.HealthScore)
	fmt.Fprintf(out, "    %d invoices\n", m.InvoiceCount)
	return nil
}

func showSubscriptions(cmd *cobra.Command, out io.Writer, app *App) {
	if app.Subscriptions == nil {
		return
	}
	subs, err := app.Subscriptions.Active(cmd.Context())
	if err != nil {
		return
	}

	fmt.Fprintln(out, "\n  ACTIVE SUBSCRIPTIONS")
	fmt.Fprintln(out, strings.Repeat("-", 60))
	if len(subs) == 0 {
		fmt.Fprintln(out, "    No active subscriptions.")
		fmt.Fprintln(out, "    Use 'legasync subscription add' to create one")
		return
	}

	count := len(subs)
	if count > 5 {
		count = 5
	}
	for _, sub := range subs[:count] {
		fmt.Fprintf(out, "    %s  %-24s %10s %s\n",
			sub.NextBillingDate.Format(DateLayout), sub.CustomerName, sub.Amount.StringFixed(2), sub.CurrencyCode)
	}
	if len(subs) > count {
		fmt.Fprintf(out, "    ... and %d more\n", len(subs)-count)
	}
}

func showActivity(cmd *cobra.Command, out io.Writer, app *App) {
	if app.ActivityLog == nil {
		return
	}
	entries, err := app.ActivityLog.RecentLogs(cmd.Context())
	if err != nil {
		return
	}

	fmt.Fprintln(out, "\n  RECENT ACTIVITY")
	fmt.Fprintln(out, strings.Repeat("-", 60))
	if len(entries) == 0 {
		fmt.Fprintln(out, "    Nothing yet.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(out, "    %s %s\n", activityIcon(string(e.Type)), e.Message)
	}
}

func showRates(cmd *cobra.Command, out io.Writer, app *App) {
	if app.Rates == nil {
		return
	}

	fmt.Fprintln(out, "\n  DÓLAR")
	fmt.Fprintln(out, strings.Repeat("-", 60))
	rates, err := app.Rates.Rates(cmd.Context())
	if err != nil {
		fmt.Fprintln(out, "    Quotes unavailable.")
		return
	}
	for _, r := range rates {
		fmt.Fprintf(out, "    %-16s %10s\n", r.Name, r.Sell.StringFixed(2))
	}
}

func activityIcon(logType string) string {
	switch logType {
	case "success":
		return "✓"
	case "warning":
		return "!"
	default:
		return "·"
	}
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/application/queries"
	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/security"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export invoices or the billing calendar",
	Long: `Export invoices as CSV, or the upcoming billing dates of active
subscriptions as an iCalendar file for Google Calendar, Outlook or Apple
Calendar.

Examples:
  legasync export --format csv -o invoices.csv
  legasync export --format ics -o billing.ics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.ListInvoices == nil || app.Subscriptions == nil {
			return ErrNotInitialized
		}

		var out io.Writer = cmd.OutOrStdout()
		if exportOutput != "" {
			f, err := security.CreateFile(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to open output: %w", err)
			}
			defer f.Close()
			out = f
		}

		switch exportFormat {
		case "csv":
			invoices, err := app.ListInvoices.Handle(cmd.Context(), queries.ListInvoicesQuery{})
			if err != nil {
				return err
			}
			return writeInvoicesCSV(out, invoices)
		case "ics", "ical":
			subs, err := app.Subscriptions.Active(cmd.Context())
			if err != nil {
				return err
			}
			_, err = io.WriteString(out, generateICS(subs, time.Now()))
			return err
		default:
			return fmt.Errorf("unsupported format: %s (supported: csv, ics)", exportFormat)
		}
	},
}

func writeInvoicesCSV(out io.Writer, invoices []domain.Invoice) error {
	w := csv.NewWriter(out)
	_ = w.Write([]string{"id", "created_at", "customer", "description", "amount", "currency", "status", "fiscal_status", "fiscal_id", "billing_period", "automated"})
	for _, inv := range invoices {
		_ = w.Write([]string{
			inv.ID.String(),
			inv.CreatedAt.UTC().Format(time.RFC3339),
			inv.CustomerName,
			inv.Description,
			inv.BaseAmount.StringFixed(2),
			inv.CurrencyCode,
			string(inv.Status),
			string(inv.FiscalStatus),
			inv.FiscalID,
			inv.BillingPeriod,
			fmt.Sprint(inv.IsAutomated),
		})
	}
	w.Flush()
	return w.Error()
}

// generateICS renders one all-day event per subscription on its next
// billing date.
func generateICS(subs []domain.Subscription, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("BEGIN:VCALENDAR\r\n")
	sb.WriteString("VERSION:2.0\r\n")
	sb.WriteString("PRODID:-//LegaSync Flow//Billing Calendar//ES\r\n")
	sb.WriteString("CALSCALE:GREGORIAN\r\n")
	sb.WriteString("METHOD:PUBLISH\r\n")
	sb.WriteString("X-WR-CALNAME:LegaSync Facturación\r\n")

	for _, sub := range subs {
		day := sub.NextBillingDate.UTC()
		sb.WriteString("BEGIN:VEVENT\r\n")
		sb.WriteString(fmt.Sprintf("UID:%s-%s@legasync\r\n", sub.ID, day.Format("20060102")))
		sb.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(now)))
		sb.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", day.Format("20060102")))
		sb.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", day.AddDate(0, 0, 1).Format("20060102")))
		sb.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(sub.CustomerName+" - "+sub.ServiceName)))
		sb.WriteString(fmt.Sprintf("DESCRIPTION:%s %s\\nInterval: %s\r\n",
			sub.Amount.StringFixed(2), sub.CurrencyCode, sub.Interval))
		if sub.Interval == domain.IntervalYearly {
			sb.WriteString("RRULE:FREQ=YEARLY\r\n")
		} else {
			sb.WriteString("RRULE:FREQ=MONTHLY\r\n")
		}
		sb.WriteString("CATEGORIES:BILLING\r\n")
		sb.WriteString("END:VEVENT\r\n")
	}

	sb.WriteString("END:VCALENDAR\r\n")
	return sb.String()
}

func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "export format (csv, ics)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
}

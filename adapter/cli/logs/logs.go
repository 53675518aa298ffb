// Package logs reads and writes the dashboard activity feed.
package logs

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/dashboard/application"
	"github.com/troncosounlar-bit/legasync-flow/internal/dashboard/domain"
)

var (
	logType string
	logIcon string
)

// Cmd is the activity feed command group.
var Cmd = &cobra.Command{
	Use:     "logs",
	Short:   "Show or add dashboard activity",
	Aliases: []string{"feed"},
	RunE:    listCmd.RunE,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "Show the newest activity entries",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ActivityLog == nil {
			return cli.ErrNotInitialized
		}

		entries, err := app.ActivityLog.RecentLogs(cmd.Context())
		if err != nil {
			return err
		}
		printEntries(cmd.OutOrStdout(), entries)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <message>",
	Short: "Add an entry to the activity feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ActivityLog == nil {
			return cli.ErrNotInitialized
		}

		operator := app.OperatorID
		entries, err := app.ActivityLog.AddLog(cmd.Context(), application.AddLogCommand{
			Type:    domain.LogType(logType),
			Icon:    logIcon,
			Message: args[0],
			UserID:  &operator,
		})
		if err != nil {
			return err
		}
		printEntries(cmd.OutOrStdout(), entries)
		return nil
	},
}

func printEntries(out io.Writer, entries []domain.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No activity yet.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %-7s %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Type, e.Message)
	}
}

func init() {
	addCmd.Flags().StringVarP(&logType, "type", "t", string(domain.LogInfo), "entry type (success, info, warning)")
	addCmd.Flags().StringVar(&logIcon, "icon", "Bell", "icon name")

	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(addCmd)
}

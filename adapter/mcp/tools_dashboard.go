package mcp

import (
	"context"
	"time"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	billingDomain "github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	"github.com/troncosounlar-bit/legasync-flow/internal/dashboard/application"
	"github.com/troncosounlar-bit/legasync-flow/internal/dashboard/domain"
)

// DashboardSummary is the back-office overview.
type DashboardSummary struct {
	Timestamp           string                       `json:"timestamp"`
	Metrics             billingDomain.InvoiceMetrics `json:"metrics"`
	ActiveSubscriptions int                          `json:"active_subscriptions"`
	DueSubscriptions    int                          `json:"due_subscriptions"`
	RecentActivity      []domain.Entry               `json:"recent_activity"`
	Recommendations     []string                     `json:"recommendations"`
}

type addLogInput struct {
	Type    string `json:"type,omitempty"`
	Icon    string `json:"icon,omitempty"`
	Message string `json:"message" jsonschema:"required"`
}

func registerDashboardTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("dashboard.summary").
		Description("Invoice metrics, due subscriptions, recent activity and suggested actions").
		Handler(dashboardSummaryTool(app))

	srv.Tool("dashboard.logs").
		Description("The newest activity feed entries").
		Handler(func(ctx context.Context, input struct{}) ([]domain.Entry, error) {
			if app.ActivityLog == nil {
				return nil, errNotInitialized
			}
			return app.ActivityLog.RecentLogs(ctx)
		})

	srv.Tool("dashboard.add_log").
		Description("Add an entry to the activity feed and return the refreshed feed").
		Handler(func(ctx context.Context, input addLogInput) ([]domain.Entry, error) {
			if app.ActivityLog == nil {
				return nil, errNotInitialized
			}
			logType := domain.LogType(input.Type)
			if logType == "" {
				logType = domain.LogInfo
			}
			operator := app.OperatorID
			return app.ActivityLog.AddLog(ctx, application.AddLogCommand{
				Type:    logType,
				Icon:    input.Icon,
				Message: input.Message,
				UserID:  &operator,
			})
		})

	return nil
}

func dashboardSummaryTool(app *cli.App) func(context.Context, struct{}) (*DashboardSummary, error) {
	return func(ctx context.Context, _ struct{}) (*DashboardSummary, error) {
		if app == nil || app.InvoiceMetrics == nil || app.Subscriptions == nil || app.ActivityLog == nil {
			return nil, errNotInitialized
		}
		now := time.Now().UTC()

		metrics, err := app.InvoiceMetrics.Handle(ctx)
		if err != nil {
			return nil, err
		}
		subs, err := app.Subscriptions.Active(ctx)
		if err != nil {
			return nil, err
		}
		entries, err := app.ActivityLog.RecentLogs(ctx)
		if err != nil {
			return nil, err
		}

		summary := &DashboardSummary{
			Timestamp:           now.Format(time.RFC3339),
			Metrics:             metrics,
			ActiveSubscriptions: len(subs),
			RecentActivity:      entries,
		}
		for _, sub := range subs {
			if sub.IsDue(now) {
				summary.DueSubscriptions++
			}
		}
		summary.Recommendations = recommendations(summary)
		return summary, nil
	}
}

func recommendations(s *DashboardSummary) []string {
	var out []string
	if s.DueSubscriptions > 0 {
		out = append(out, "Run billing.run: subscriptions are due for invoicing")
	}
	if s.Metrics.RiskCapital.IsPositive() {
		out = append(out, "Follow up on pending invoices older than the risk threshold")
	}
	if s.Metrics.InvoiceCount > 0 && s.Metrics.HealthScore < 50 {
		out = append(out, "Less than half of the invoices are paid")
	}
	if len(out) == 0 {
		out = append(out, "Nothing needs attention")
	}
	return out
}

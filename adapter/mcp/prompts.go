package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common back-office workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("monthly_close").
		Description("Walk through the monthly billing close: run billing, review failures and chase unpaid invoices.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Monthly Billing Close", `Help me close this month's billing. Please:

1. Read legasync://subscriptions/active and tell me which subscriptions are due
2. Run the billing.run tool once
3. For every failure in the result, explain the stage and suggest a fix
4. Read legasync://metrics and summarise revenue, capital at risk and health score
5. List pending invoices older than two weeks from legasync://invoices

Do not run billing.run more than once; a second run only picks up what failed.`), nil
		})

	srv.Prompt("customer_review").
		Description("Review the sales pipeline and customer profitability.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			focus := args["customer"]
			text := `Review my customer pipeline. Please:

1. Read legasync://customers and group customers by pipeline status
2. For customers in negotiation, check the last contact date and flag any older than 30 days
3. Use customer.balance for customers with expenses and highlight negative net balances
4. Suggest which prospects to prioritise this week`
			if focus != "" {
				text += "\n\nFocus on the customer named " + focus + "."
			}
			return userPrompt("Customer Pipeline Review", text), nil
		})

	return nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}

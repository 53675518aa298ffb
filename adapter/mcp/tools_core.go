package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) error {
	srv.Tool("cli.health").
		Description("Check database, cache and fiscal service health").
		Handler(healthTool(deps.App))

	srv.Tool("cli.version").
		Description("Report the server version").
		Handler(func(ctx context.Context, input struct{}) (map[string]string, error) {
			return map[string]string{"version": cli.Version, "commit": cli.Commit}, nil
		})

	return nil
}

func healthTool(app *cli.App) func(context.Context, struct{}) (observability.OverallHealth, error) {
	return func(ctx context.Context, _ struct{}) (observability.OverallHealth, error) {
		if app == nil || app.Health == nil {
			return observability.OverallHealth{}, errNotInitialized
		}
		return app.Health.Check(ctx), nil
	}
}

package commands

import (
	"context"
	"log/slog"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

// viewRefresher reloads the cached lists after a write. The write has
// already committed, so a failed refresh is only logged.
type viewRefresher struct {
	views  domain.ViewCache
	logger *slog.Logger
}

func newViewRefresher(views domain.ViewCache, logger *slog.Logger) viewRefresher {
	if logger == nil {
		logger = slog.Default()
	}
	return viewRefresher{views: views, logger: logger}
}

func (r viewRefresher) refresh(ctx context.Context) {
	if r.views == nil {
		return
	}
	if err := r.views.Refresh(ctx); err != nil {
		r.logger.WarnContext(ctx, "view refresh failed", observability.ErrorKey, err)
	}
}

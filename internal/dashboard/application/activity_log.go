// Package application serves and feeds the dashboard activity log.
package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/troncosounlar-bit/legasync-flow/internal/dashboard/domain"
)

// AddLogCommand describes a feed entry to write.
type AddLogCommand struct {
	Type    domain.LogType
	Icon    string
	Message string
	UserID  *uuid.UUID
}

// ActivityLog reads and writes the dashboard feed.
type ActivityLog struct {
	repo domain.Repository
	now  func() time.Time
}

// NewActivityLog creates the service.
func NewActivityLog(repo domain.Repository) *ActivityLog {
	return &ActivityLog{repo: repo, now: time.Now}
}

// RecentLogs returns the newest entries.
func (s *ActivityLog) RecentLogs(ctx context.Context) ([]domain.Entry, error) {
	return s.repo.Recent(ctx, domain.RecentLimit)
}

// AddLog writes an entry and returns the refreshed feed.
func (s *ActivityLog) AddLog(ctx context.Context, cmd AddLogCommand) ([]domain.Entry, error) {
	entry, err := domain.NewEntry(cmd.Type, cmd.Icon, cmd.Message, cmd.UserID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Add(ctx, entry); err != nil {
		return nil, err
	}
	return s.RecentLogs(ctx)
}

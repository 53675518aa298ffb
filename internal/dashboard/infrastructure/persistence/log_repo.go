// Package persistence stores the dashboard feed in dashboard_logs.
package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/troncosounlar-bit/legasync-flow/internal/dashboard/domain"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/database"
)

// LogRepository implements domain.Repository.
type LogRepository struct {
	conn database.Connection
}

var _ domain.Repository = (*LogRepository)(nil)

// NewLogRepository creates a new repository.
func NewLogRepository(conn database.Connection) *LogRepository {
	return &LogRepository{conn: conn}
}

func (r *LogRepository) Add(ctx context.Context, e *domain.Entry) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	var userID any
	if e.UserID != nil {
		userID = *e.UserID
	}
	_, err := exec.Exec(ctx, `
		INSERT INTO dashboard_logs (id, created_at, type, icon, message, user_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, database.FormatTimestamp(e.CreatedAt), string(e.Type), e.Icon, e.Message, userID)
	if err != nil {
		return fmt.Errorf("add dashboard log: %w", err)
	}
	return nil
}

func (r *LogRepository) Recent(ctx context.Context, limit int) ([]domain.Entry, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `
		SELECT id, created_at, type, icon, message, user_id
		FROM dashboard_logs
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list dashboard logs: %w", err)
	}
	entries, err := database.CollectRows(rows, func(row database.Row) (domain.Entry, error) {
		var (
			e         domain.Entry
			createdAt database.Time
			typ       string
			userID    uuid.NullUUID
		)
		if err := row.Scan(&e.ID, &createdAt, &typ, &e.Icon, &e.Message, &userID); err != nil {
			return domain.Entry{}, err
		}
		e.CreatedAt = createdAt.Time
		e.Type = domain.LogType(typ)
		if userID.Valid {
			id := userID.UUID
			e.UserID = &id
		}
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list dashboard logs: %w", err)
	}
	return entries, nil
}

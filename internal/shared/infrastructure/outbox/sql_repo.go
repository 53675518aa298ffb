package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/database"
)

// SQLRepository stores the outbox in the outbox_messages table on either driver.
type SQLRepository struct {
	conn database.Connection
}

// NewSQLRepository creates an outbox repository over a database connection.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn}
}

const outboxColumns = `id, event_id, aggregate_type, aggregate_id, routing_key, payload, created_at,
	published_at, next_retry_at, retry_count, last_error, dead_lettered_at, dead_letter_reason`

func (r *SQLRepository) Save(ctx context.Context, msg *Message) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, `
		INSERT INTO outbox_messages (event_id, aggregate_type, aggregate_id, routing_key, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateID.String(),
		msg.RoutingKey,
		string(msg.Payload),
		database.FormatTimestamp(msg.CreatedAt),
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("save outbox message %s: %w", msg.RoutingKey, err)
	}
	return nil
}

func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	for _, msg := range msgs {
		if err := r.Save(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `
		SELECT `+outboxColumns+`
		FROM outbox_messages
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY id
		LIMIT ?`,
		database.FormatTimestamp(time.Now()), limit,
	)
	if err != nil {
		return nil, err
	}
	return database.CollectRows(rows, scanMessage)
}

func (r *SQLRepository) GetDead(ctx context.Context, limit int) ([]*Message, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `
		SELECT `+outboxColumns+`
		FROM outbox_messages
		WHERE dead_lettered_at IS NOT NULL
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return database.CollectRows(rows, scanMessage)
}

func (r *SQLRepository) MarkPublished(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE outbox_messages SET published_at = ?, next_retry_at = NULL WHERE id = ?`,
		database.FormatTimestamp(time.Now()), id)
}

func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	return r.exec(ctx, `
		UPDATE outbox_messages
		SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		WHERE id = ?`,
		errMsg, database.FormatTimestamp(nextRetryAt), id)
}

func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	return r.exec(ctx, `
		UPDATE outbox_messages
		SET retry_count = retry_count + 1, last_error = ?, dead_lettered_at = ?, dead_letter_reason = ?
		WHERE id = ?`,
		reason, database.FormatTimestamp(time.Now()), reason, id)
}

func (r *SQLRepository) DeleteOld(ctx context.Context, before time.Time) (int64, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	res, err := exec.Exec(ctx,
		`DELETE FROM outbox_messages WHERE published_at IS NOT NULL AND created_at < ?`,
		database.FormatTimestamp(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLRepository) exec(ctx context.Context, query string, args ...any) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, query, args...)
	return err
}

func scanMessage(row database.Row) (*Message, error) {
	var (
		msg                                     Message
		eventID, aggregateID                    string
		payload                                 string
		createdAt, publishedAt, nextRetry, dead database.Time
		lastError, deadReason                   *string
	)
	if err := row.Scan(
		&msg.ID, &eventID, &msg.AggregateType, &aggregateID, &msg.RoutingKey, &payload, &createdAt,
		&publishedAt, &nextRetry, &msg.RetryCount, &lastError, &dead, &deadReason,
	); err != nil {
		return nil, err
	}

	var err error
	if msg.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("outbox %d: event id: %w", msg.ID, err)
	}
	if msg.AggregateID, err = uuid.Parse(aggregateID); err != nil {
		return nil, fmt.Errorf("outbox %d: aggregate id: %w", msg.ID, err)
	}
	msg.Payload = []byte(payload)
	msg.CreatedAt = createdAt.Time
	msg.PublishedAt = optionalTime(publishedAt)
	msg.NextRetryAt = optionalTime(nextRetry)
	msg.DeadLetteredAt = optionalTime(dead)
	msg.LastError = lastError
	msg.DeadLetterReason = deadReason
	return &msg, nil
}

func optionalTime(t database.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

var _ Repository = (*SQLRepository)(nil)

package outbox

import (
	"context"
	"database/sql"
	"time"

	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/database"
)

const messageColumns = `id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
	payload, metadata, created_at, published_at, next_retry_at, retry_count,
	last_error, dead_lettered_at, dead_letter_reason`

// SQLRepository implements Repository for every supported driver.
type SQLRepository struct {
	conn database.Connection
}

// NewSQLRepository creates a new outbox repository.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn}
}

// SaveBatch stores messages and fills in their ids.
func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	for _, msg := range msgs {
		err := exec.QueryRow(ctx, `
			INSERT INTO outbox (
				event_id, aggregate_type, aggregate_id, event_type, routing_key,
				payload, metadata, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`,
			msg.EventID,
			msg.AggregateType,
			msg.AggregateID,
			msg.EventType,
			msg.RoutingKey,
			[]byte(msg.Payload),
			[]byte(msg.Metadata),
			database.UTC(msg.CreatedAt),
		).Scan(&msg.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetUnpublished retrieves pending messages ordered by creation time.
func (r *SQLRepository) GetUnpublished(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT `+messageColumns+`
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at, id
		LIMIT ?`,
		database.UTC(now), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkPublished marks a message as successfully published.
func (r *SQLRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE outbox SET published_at = ?, dead_lettered_at = NULL WHERE id = ?`,
		database.UTC(at), id,
	)
	return err
}

// MarkFailed records a publish failure with error message.
func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	_, err := r.conn.Exec(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1,
			last_error = ?,
			next_retry_at = ?
		WHERE id = ?`,
		errMsg, database.UTC(nextRetryAt), id,
	)
	return err
}

// MarkDead marks a message as dead-lettered.
func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	_, err := r.conn.Exec(ctx, `
		UPDATE outbox
		SET dead_lettered_at = ?,
			dead_letter_reason = ?
		WHERE id = ?`,
		database.UTC(at), reason, id,
	)
	return err
}

// DeleteOld removes published messages older than cutoff.
func (r *SQLRepository) DeleteOld(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.conn.Exec(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`,
		database.UTC(cutoff),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanMessage(row database.Row) (*Message, error) {
	var (
		msg                                  Message
		payload, metadata                    []byte
		createdAt                            database.Timestamp
		publishedAt, nextRetryAt, deadLetter database.Timestamp
		lastError, deadReason                sql.NullString
	)

	err := row.Scan(
		&msg.ID,
		&msg.EventID,
		&msg.AggregateType,
		&msg.AggregateID,
		&msg.EventType,
		&msg.RoutingKey,
		&payload,
		&metadata,
		&createdAt,
		&publishedAt,
		&nextRetryAt,
		&msg.RetryCount,
		&lastError,
		&deadLetter,
		&deadReason,
	)
	if err != nil {
		return nil, err
	}

	msg.Payload = payload
	msg.Metadata = metadata
	msg.CreatedAt = createdAt.Time
	msg.PublishedAt = timePtr(publishedAt)
	msg.NextRetryAt = timePtr(nextRetryAt)
	msg.DeadLetteredAt = timePtr(deadLetter)
	msg.LastError = stringPtr(lastError)
	msg.DeadLetterReason = stringPtr(deadReason)
	return &msg, nil
}

func timePtr(ts database.Timestamp) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

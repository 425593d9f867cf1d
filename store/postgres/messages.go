package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cayerbe/gns-core/store"
)

type messageStore struct {
	db *pgxpool.Pool
}

func (m *messageStore) Upsert(ctx context.Context, msg *store.Message) error {
	query := `
		INSERT INTO messages (id, thread_id, from_public_key, from_handle, payload_type,
		                       payload_json, timestamp_ms, direction, status, signature_valid,
		                       reply_to_id, is_starred, forwarded_from_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			thread_id = EXCLUDED.thread_id,
			from_public_key = EXCLUDED.from_public_key,
			from_handle = EXCLUDED.from_handle,
			payload_type = EXCLUDED.payload_type,
			payload_json = EXCLUDED.payload_json,
			timestamp_ms = EXCLUDED.timestamp_ms,
			direction = EXCLUDED.direction,
			status = EXCLUDED.status,
			signature_valid = EXCLUDED.signature_valid,
			reply_to_id = EXCLUDED.reply_to_id,
			is_starred = EXCLUDED.is_starred,
			forwarded_from_id = EXCLUDED.forwarded_from_id
	`
	_, err := m.db.Exec(ctx, query,
		msg.ID, msg.ThreadID, msg.FromPublicKey, msg.FromHandle, msg.PayloadType,
		msg.PayloadJSON, msg.TimestampMs, msg.Direction, msg.Status, msg.SignatureValid,
		msg.ReplyToID, msg.IsStarred, msg.ForwardedFromID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert message: %w", err)
	}
	return nil
}

func (m *messageStore) Get(ctx context.Context, id string) (*store.Message, error) {
	query := `
		SELECT id, thread_id, from_public_key, from_handle, payload_type, payload_json,
		       timestamp_ms, direction, status, signature_valid, reply_to_id, is_starred, forwarded_from_id
		FROM messages WHERE id = $1
	`
	msg, err := scanMessage(m.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return msg, nil
}

func (m *messageStore) ListByThread(ctx context.Context, threadID string, limit int) ([]*store.Message, error) {
	query := `
		SELECT id, thread_id, from_public_key, from_handle, payload_type, payload_json,
		       timestamp_ms, direction, status, signature_valid, reply_to_id, is_starred, forwarded_from_id
		FROM messages WHERE thread_id = $1
		ORDER BY timestamp_ms ASC
		LIMIT NULLIF($2, 0)
	`
	rows, err := m.db.Query(ctx, query, threadID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var out []*store.Message
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(
			&msg.ID, &msg.ThreadID, &msg.FromPublicKey, &msg.FromHandle, &msg.PayloadType,
			&msg.PayloadJSON, &msg.TimestampMs, &msg.Direction, &msg.Status, &msg.SignatureValid,
			&msg.ReplyToID, &msg.IsStarred, &msg.ForwardedFromID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out = append(out, &msg)
	}
	return out, rows.Err()
}

func (m *messageStore) MarkRead(ctx context.Context, id string) error {
	_, err := m.db.Exec(ctx, `UPDATE messages SET status = $1 WHERE id = $2`, store.StatusRead, id)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}

func (m *messageStore) Delete(ctx context.Context, id string) error {
	_, err := m.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func scanMessage(row pgx.Row) (*store.Message, error) {
	var msg store.Message
	err := row.Scan(
		&msg.ID, &msg.ThreadID, &msg.FromPublicKey, &msg.FromHandle, &msg.PayloadType,
		&msg.PayloadJSON, &msg.TimestampMs, &msg.Direction, &msg.Status, &msg.SignatureValid,
		&msg.ReplyToID, &msg.IsStarred, &msg.ForwardedFromID,
	)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

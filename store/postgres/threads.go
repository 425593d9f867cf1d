package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cayerbe/gns-core/store"
)

type threadStore struct {
	db *pgxpool.Pool
}

// GetOrCreate mirrors the original desktop storage layer's upsert:
// participant_handle prefers the freshly observed value, subject prefers
// whatever is already stored.
func (t *threadStore) GetOrCreate(ctx context.Context, threadID, participantPublicKey, participantHandle, subject string, nowMs int64) error {
	query := `
		INSERT INTO threads (id, participant_public_key, participant_handle, subject, last_message_at_ms)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			participant_public_key = COALESCE(NULLIF($2, ''), threads.participant_public_key),
			participant_handle = COALESCE(NULLIF($3, ''), threads.participant_handle),
			subject = COALESCE(NULLIF(threads.subject, ''), $4)
	`
	_, err := t.db.Exec(ctx, query, threadID, participantPublicKey, participantHandle, subject, nowMs)
	if err != nil {
		return fmt.Errorf("failed to upsert thread: %w", err)
	}
	return nil
}

func (t *threadStore) Get(ctx context.Context, threadID string) (*store.Thread, error) {
	query := `
		SELECT id, participant_public_key, participant_handle, last_message_at_ms,
		       unread_count, is_pinned, is_muted, is_archived, subject
		FROM threads WHERE id = $1
	`
	var th store.Thread
	err := t.db.QueryRow(ctx, query, threadID).Scan(
		&th.ID, &th.ParticipantPublicKey, &th.ParticipantHandle, &th.LastMessageAtMs,
		&th.UnreadCount, &th.IsPinned, &th.IsMuted, &th.IsArchived, &th.Subject,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	return &th, nil
}

func (t *threadStore) List(ctx context.Context, includeArchived bool, limit int) ([]*store.Thread, error) {
	query := `
		SELECT id, participant_public_key, participant_handle, last_message_at_ms,
		       unread_count, is_pinned, is_muted, is_archived, subject
		FROM threads
		WHERE is_archived = FALSE OR $1
		ORDER BY last_message_at_ms DESC
		LIMIT NULLIF($2, 0)
	`
	rows, err := t.db.Query(ctx, query, includeArchived, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	defer rows.Close()

	var out []*store.Thread
	for rows.Next() {
		var th store.Thread
		if err := rows.Scan(
			&th.ID, &th.ParticipantPublicKey, &th.ParticipantHandle, &th.LastMessageAtMs,
			&th.UnreadCount, &th.IsPinned, &th.IsMuted, &th.IsArchived, &th.Subject,
		); err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		out = append(out, &th)
	}
	return out, rows.Err()
}

func (t *threadStore) MarkRead(ctx context.Context, threadID string) error {
	_, err := t.db.Exec(ctx, `UPDATE threads SET unread_count = 0 WHERE id = $1`, threadID)
	if err != nil {
		return fmt.Errorf("failed to mark thread read: %w", err)
	}
	return nil
}

func (t *threadStore) Delete(ctx context.Context, threadID string) error {
	_, err := t.db.Exec(ctx, `DELETE FROM threads WHERE id = $1`, threadID)
	if err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	return nil
}

func (t *threadStore) UpdateForMessage(ctx context.Context, threadID string, timestampMs int64, incoming bool) error {
	query := `
		UPDATE threads
		SET last_message_at_ms = $1,
		    unread_count = unread_count + CASE WHEN $2 THEN 1 ELSE 0 END
		WHERE id = $3
	`
	_, err := t.db.Exec(ctx, query, timestampMs, incoming, threadID)
	if err != nil {
		return fmt.Errorf("failed to update thread for message: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cayerbe/gns-core/store"
)

type reactionStore struct {
	db *pgxpool.Pool
}

func (r *reactionStore) Save(ctx context.Context, rx *store.Reaction) error {
	query := `
		INSERT INTO reactions (message_id, from_public_key, emoji, timestamp_ms)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (message_id, from_public_key, emoji) DO UPDATE SET timestamp_ms = EXCLUDED.timestamp_ms
	`
	_, err := r.db.Exec(ctx, query, rx.MessageID, rx.FromPublicKey, rx.Emoji, rx.TimestampMs)
	if err != nil {
		return fmt.Errorf("failed to save reaction: %w", err)
	}
	return nil
}

func (r *reactionStore) ListByMessage(ctx context.Context, messageID string) ([]store.Reaction, error) {
	query := `
		SELECT message_id, from_public_key, emoji, timestamp_ms
		FROM reactions WHERE message_id = $1
		ORDER BY timestamp_ms ASC
	`
	rows, err := r.db.Query(ctx, query, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	defer rows.Close()

	var out []store.Reaction
	for rows.Next() {
		var rx store.Reaction
		if err := rows.Scan(&rx.MessageID, &rx.FromPublicKey, &rx.Emoji, &rx.TimestampMs); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		out = append(out, rx)
	}
	return out, rows.Err()
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cayerbe/gns-core/store"
)

type pendingStore struct {
	db *pgxpool.Pool
}

func (p *pendingStore) Enqueue(ctx context.Context, pm *store.PendingMessage) error {
	query := `
		INSERT INTO pending_messages (id, envelope_json, created_at_ms, retry_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			envelope_json = EXCLUDED.envelope_json,
			retry_count = EXCLUDED.retry_count
	`
	_, err := p.db.Exec(ctx, query, pm.ID, pm.EnvelopeJSON, pm.CreatedAtMs, pm.RetryCount)
	if err != nil {
		return fmt.Errorf("failed to enqueue pending message: %w", err)
	}
	return nil
}

func (p *pendingStore) Count(ctx context.Context) (int, error) {
	var count int
	err := p.db.QueryRow(ctx, `SELECT COUNT(*) FROM pending_messages`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending messages: %w", err)
	}
	return count, nil
}

func (p *pendingStore) List(ctx context.Context, limit int) ([]*store.PendingMessage, error) {
	query := `
		SELECT id, envelope_json, created_at_ms, retry_count
		FROM pending_messages
		ORDER BY created_at_ms ASC
		LIMIT NULLIF($1, 0)
	`
	rows, err := p.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending messages: %w", err)
	}
	defer rows.Close()

	var out []*store.PendingMessage
	for rows.Next() {
		var pm store.PendingMessage
		if err := rows.Scan(&pm.ID, &pm.EnvelopeJSON, &pm.CreatedAtMs, &pm.RetryCount); err != nil {
			return nil, fmt.Errorf("failed to scan pending message: %w", err)
		}
		out = append(out, &pm)
	}
	return out, rows.Err()
}

func (p *pendingStore) Remove(ctx context.Context, id string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM pending_messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove pending message: %w", err)
	}
	return nil
}

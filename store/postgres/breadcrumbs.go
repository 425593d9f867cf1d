package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cayerbe/gns-core/store"
)

type breadcrumbStore struct {
	db *pgxpool.Pool
}

func (b *breadcrumbStore) Save(ctx context.Context, bc *store.StoredBreadcrumb) error {
	query := `
		INSERT INTO breadcrumbs (cell_id, timestamp_s, signature, public_key, resolution, prev_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cell_id, timestamp_s) DO NOTHING
	`
	_, err := b.db.Exec(ctx, query, bc.CellID, bc.TimestampS, bc.Signature, bc.PublicKey, bc.Resolution, bc.PrevHash)
	if err != nil {
		return fmt.Errorf("failed to save breadcrumb: %w", err)
	}
	return nil
}

func (b *breadcrumbStore) Count(ctx context.Context) (int, error) {
	var count int
	err := b.db.QueryRow(ctx, `SELECT COUNT(*) FROM breadcrumbs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count breadcrumbs: %w", err)
	}
	return count, nil
}

func (b *breadcrumbStore) CountUniqueCells(ctx context.Context) (int, error) {
	var count int
	err := b.db.QueryRow(ctx, `SELECT COUNT(DISTINCT cell_id) FROM breadcrumbs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unique cells: %w", err)
	}
	return count, nil
}

func (b *breadcrumbStore) FirstTimestamp(ctx context.Context) (int64, bool, error) {
	return b.extremeTimestamp(ctx, "MIN")
}

func (b *breadcrumbStore) LastTimestamp(ctx context.Context) (int64, bool, error) {
	return b.extremeTimestamp(ctx, "MAX")
}

func (b *breadcrumbStore) extremeTimestamp(ctx context.Context, agg string) (int64, bool, error) {
	query := fmt.Sprintf(`SELECT %s(timestamp_s) FROM breadcrumbs`, agg)
	var ts *int64
	err := b.db.QueryRow(ctx, query).Scan(&ts)
	if err != nil {
		return 0, false, fmt.Errorf("failed to query breadcrumb timestamp: %w", err)
	}
	if ts == nil {
		return 0, false, nil
	}
	return *ts, true, nil
}

func (b *breadcrumbStore) List(ctx context.Context, limit, offset int) ([]*store.StoredBreadcrumb, error) {
	query := `
		SELECT cell_id, timestamp_s, signature, public_key, resolution, prev_hash
		FROM breadcrumbs
		ORDER BY timestamp_s ASC
		LIMIT NULLIF($1, 0) OFFSET $2
	`
	rows, err := b.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list breadcrumbs: %w", err)
	}
	defer rows.Close()

	var out []*store.StoredBreadcrumb
	for rows.Next() {
		var bc store.StoredBreadcrumb
		if err := rows.Scan(&bc.CellID, &bc.TimestampS, &bc.Signature, &bc.PublicKey, &bc.Resolution, &bc.PrevHash); err != nil {
			return nil, fmt.Errorf("failed to scan breadcrumb: %w", err)
		}
		out = append(out, &bc)
	}
	return out, rows.Err()
}

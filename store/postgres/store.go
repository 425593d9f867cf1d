// Package postgres implements store.Store against a shared PostgreSQL
// database using jackc/pgx/v5.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cayerbe/gns-core/store"
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Store implements store.Store for PostgreSQL.
type Store struct {
	pool *pgxpool.Pool

	threads     *threadStore
	messages    *messageStore
	breadcrumbs *breadcrumbStore
	pending     *pendingStore
	syncState   *syncStateStore
	reactions   *reactionStore
}

const schema = `
CREATE TABLE IF NOT EXISTS threads (
	id TEXT PRIMARY KEY,
	participant_public_key TEXT NOT NULL,
	participant_handle TEXT NOT NULL DEFAULT '',
	last_message_at_ms BIGINT NOT NULL DEFAULT 0,
	unread_count INT NOT NULL DEFAULT 0,
	is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
	is_muted BOOLEAN NOT NULL DEFAULT FALSE,
	is_archived BOOLEAN NOT NULL DEFAULT FALSE,
	subject TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	thread_id TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
	from_public_key TEXT NOT NULL,
	from_handle TEXT NOT NULL DEFAULT '',
	payload_type TEXT NOT NULL,
	payload_json TEXT NOT NULL,
	timestamp_ms BIGINT NOT NULL,
	direction TEXT NOT NULL,
	status TEXT NOT NULL,
	signature_valid BOOLEAN NOT NULL DEFAULT FALSE,
	reply_to_id TEXT NOT NULL DEFAULT '',
	is_starred BOOLEAN NOT NULL DEFAULT FALSE,
	forwarded_from_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS messages_thread_id_idx ON messages(thread_id, timestamp_ms);

CREATE TABLE IF NOT EXISTS reactions (
	message_id TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
	from_public_key TEXT NOT NULL,
	emoji TEXT NOT NULL,
	timestamp_ms BIGINT NOT NULL,
	PRIMARY KEY (message_id, from_public_key, emoji)
);

CREATE TABLE IF NOT EXISTS breadcrumbs (
	cell_id TEXT NOT NULL,
	timestamp_s BIGINT NOT NULL,
	signature TEXT NOT NULL,
	public_key TEXT NOT NULL,
	resolution SMALLINT NOT NULL,
	prev_hash TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (cell_id, timestamp_s)
);

CREATE TABLE IF NOT EXISTS pending_messages (
	id TEXT PRIMARY KEY,
	envelope_json TEXT NOT NULL,
	created_at_ms BIGINT NOT NULL,
	retry_count INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS sync_state (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// New creates a PostgreSQL-backed store, pinging the connection and
// applying the schema before returning.
func New(ctx context.Context, cfg *Config) (*Store, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{pool: pool}
	s.threads = &threadStore{db: pool}
	s.messages = &messageStore{db: pool}
	s.breadcrumbs = &breadcrumbStore{db: pool}
	s.pending = &pendingStore{db: pool}
	s.syncState = &syncStateStore{db: pool}
	s.reactions = &reactionStore{db: pool}

	return s, nil
}

func (s *Store) Threads() store.ThreadStore         { return s.threads }
func (s *Store) Messages() store.MessageStore       { return s.messages }
func (s *Store) Breadcrumbs() store.BreadcrumbStore { return s.breadcrumbs }
func (s *Store) Pending() store.PendingStore        { return s.pending }
func (s *Store) Sync() store.SyncStateStore         { return s.syncState }
func (s *Store) Reactions() store.ReactionStore     { return s.reactions }

// Close closes the database connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

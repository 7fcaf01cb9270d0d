// Package sqlite stores key-value entries in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/visit-desk/internal/persistence"
	"github.com/example/visit-desk/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store implements persistence.KeyValueStore over the kv_entries table.
type Store struct {
	pool   *ConnectionPool
	retry  RetryConfig
	now    func() time.Time
	logger *slog.Logger
}

// Open connects to the database described by cfg. Call Migrate before use.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	pool, err := NewConnectionPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		pool:   pool,
		retry:  DefaultRetryConfig(),
		now:    time.Now,
		logger: logger.With("driver", "sqlite"),
	}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	return s.migrations().RunMigrations(ctx)
}

// SchemaStatus reports the applied schema version and any pending migrations.
func (s *Store) SchemaStatus(ctx context.Context) (migration.Status, error) {
	return s.migrations().Status(ctx)
}

func (s *Store) migrations() *migration.Manager {
	return migration.NewManager(
		migration.NewFileScanner(migrationFiles, "migrations"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		s.logger,
	)
}

// Get returns the value stored under key or persistence.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := WithRetry(ctx, s.retry, func() error {
		return s.pool.DB().QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get %s: %w", key, err)
	}
	return []byte(value), nil
}

// Put replaces the value stored under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	const upsert = `
		INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	err := WithRetry(ctx, s.retry, func() error {
		_, err := s.pool.DB().ExecContext(ctx, upsert, key, string(value), s.now().UTC().Format(time.RFC3339Nano))
		return err
	})
	if err != nil {
		return fmt.Errorf("sqlite: put %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.pool.Close()
}

var _ persistence.KeyValueStore = (*Store)(nil)

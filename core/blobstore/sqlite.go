package blobstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DefaultSQLitePath is the default location for the store database.
const DefaultSQLitePath = ".psyche/store.db"

// SQLiteStore is the default persistent backend.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// SQLiteConfig configures the sqlite backend.
type SQLiteConfig struct {
	Path string
}

// NewSQLiteStore opens (creating if needed) a sqlite-backed store.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultSQLitePath
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store database: %w", err)
	}

	// WAL mode for concurrent readers during a write
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS blobs (
		path TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_blobs_prefix ON blobs(path);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put upserts a blob. Last writer wins.
func (s *SQLiteStore) Put(ctx context.Context, path string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (path, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, path, data)
	if err != nil {
		return fmt.Errorf("put %s: %w", path, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, path string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM blobs WHERE path = ?", path).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", path, err)
	}
	return data, true, nil
}

func (s *SQLiteStore) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT path FROM blobs WHERE path LIKE ? || '%' ORDER BY path", prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

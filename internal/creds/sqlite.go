package creds

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the credential database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create credentials directory: %w", err)
	}

	// WAL for concurrent readers while the bot is handling updates.
	dsn := path + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open credentials database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping credentials database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize credentials schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS credentials (
		user_key INTEGER PRIMARY KEY,
		token TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, userKey int64, token string) error {
	query := `
	INSERT INTO credentials (user_key, token, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(user_key) DO UPDATE SET
		token = excluded.token,
		updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, userKey, token, time.Now().Unix()); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, userKey int64) (string, bool, error) {
	var token string
	row := s.db.QueryRowContext(ctx, `SELECT token FROM credentials WHERE user_key = ?`, userKey)
	err := row.Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load credential: %w", err)
	}
	return token, true, nil
}

func (s *SQLiteStore) Clear(ctx context.Context, userKey int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE user_key = ?`, userKey); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close credentials database: %w", err)
	}
	return nil
}

package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    token TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS drafts (
    id TEXT PRIMARY KEY,
    post_id TEXT NOT NULL DEFAULT '',
    mode TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    payload BLOB NOT NULL,
    compression TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

type SQLite struct {
	path string
	conn *sqlx.DB
}

func NewSQLite(path string) *SQLite {
	if path == "" {
		path = MemoryPath
	}
	return &SQLite{path: path}
}

func (s *SQLite) Init(ctx context.Context) error {
	conn, err := sqlx.ConnectContext(ctx, "sqlite3", s.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	if s.path == MemoryPath {
		// Every connection to :memory: is a separate database.
		conn.SetMaxOpenConns(1)
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return fmt.Errorf("create schema: %w", err)
	}
	s.conn = conn
	dbLogger.Info().Str("path", s.path).Msg("Database initialized")
	return nil
}

func (s *SQLite) Get() *sqlx.DB {
	return s.conn
}

func (s *SQLite) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

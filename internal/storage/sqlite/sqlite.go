// Package sqlite implements drink storage on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	_ "modernc.org/sqlite"

	"github.com/xenking/drinks-api/db"
)

// Open opens (creating if needed) the database file at path.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create database dir")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// A single writer avoids SQLITE_BUSY under concurrent requests.
	conn.SetMaxOpenConns(1)
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}
	return conn, nil
}

// Migrate creates the schema if it does not exist.
func Migrate(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, db.SQLiteSchema); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	return nil
}

// Reset drops the drinks table and recreates it.
func Reset(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, `DROP TABLE IF EXISTS drinks`); err != nil {
		return errors.Wrap(err, "drop drinks")
	}
	return Migrate(ctx, conn)
}

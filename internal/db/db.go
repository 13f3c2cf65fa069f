// Package db stores imported chord sheets. Remote databases are reached through
// libsql (Turso); local paths and ":memory:" use SQLite.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

var (
	ErrSongNotFound = errors.New("song not found")
	ErrUserNotFound = errors.New("user not found")
)

// Options configures the database connection
type Options struct {
	URL             string
	AuthToken       string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS songbook (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT,
		link TEXT NOT NULL UNIQUE,
		artist_photo TEXT,
		original_key TEXT,
		content TEXT NOT NULL,
		created_at TEXT NOT NULL,
		counter INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		chat_id INTEGER PRIMARY KEY,
		username TEXT,
		tg_name TEXT,
		added_at TEXT NOT NULL,
		sheets_opened INTEGER NOT NULL DEFAULT 0
	)`,
}

// driverFor picks the sql driver and DSN for a database URL
func driverFor(url, authToken string) (string, string) {
	if strings.HasPrefix(url, "libsql://") || strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "wss://") {
		if authToken == "" {
			return "libsql", url
		}
		return "libsql", fmt.Sprintf("%s?authToken=%s", url, authToken)
	}
	return "sqlite3", url
}

// Open connects to the database described by opts and verifies the connection
func Open(opts Options) (*sql.DB, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("database url is empty")
	}

	driver, dsn := driverFor(opts.URL, opts.AuthToken)
	database, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if opts.MaxOpenConns > 0 {
		database.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		database.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		database.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	// Every connection to ":memory:" is a separate database
	if opts.URL == ":memory:" {
		database.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return database, nil
}

// Migrate creates the tables used by the songbook
func Migrate(ctx context.Context, database *sql.DB) error {
	for _, stmt := range schema {
		if _, err := database.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

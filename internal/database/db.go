// Package database provides database connection and initialization functionality.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the database connection with production-grade configuration
type DB struct {
	conn *sql.DB
	path string
	name string // Database name for logging
}

// Config holds database configuration
type Config struct {
	Path string
	Name string // Friendly name for logging (e.g., "folio")
}

// schema is the single source of truth for the folio database layout.
// Statements are idempotent so Migrate can run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS holdings (
	id              TEXT PRIMARY KEY,
	owner           TEXT NOT NULL,
	platform        TEXT NOT NULL,
	type            TEXT NOT NULL,
	name            TEXT NOT NULL,
	ticker          TEXT,
	quantity        REAL,
	amount_invested REAL NOT NULL,
	current_value   REAL NOT NULL,
	purchase_price  REAL,
	currency        TEXT NOT NULL DEFAULT 'INR',
	status          TEXT NOT NULL DEFAULT 'Active',
	created_at      INTEGER NOT NULL,
	last_updated    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_holdings_owner ON holdings(owner);
CREATE INDEX IF NOT EXISTS idx_holdings_owner_platform ON holdings(owner, platform);

CREATE TABLE IF NOT EXISTS platform_links (
	owner      TEXT NOT NULL,
	platform   TEXT NOT NULL,
	account_id TEXT NOT NULL,
	linked_at  INTEGER NOT NULL,
	PRIMARY KEY (owner, platform, account_id)
);

CREATE TABLE IF NOT EXISTS portfolio_snapshots (
	owner       TEXT NOT NULL,
	day         TEXT NOT NULL,
	total_value REAL NOT NULL,
	created_at  INTEGER NOT NULL,
	PRIMARY KEY (owner, day)
);
`

// New creates a new database connection with WAL mode and a tuned
// connection pool.
func New(cfg Config) (*DB, error) {
	// Handle file: URIs (used for in-memory databases in tests) -
	// skip filepath operations for those.
	if !strings.HasPrefix(cfg.Path, "file:") {
		absPath, err := filepath.Abs(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path to absolute: %w", err)
		}
		dir := filepath.Dir(absPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		cfg.Path = absPath
	}

	conn, err := sql.Open("sqlite", buildConnectionString(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Name, err)
	}

	configureConnectionPool(conn)

	// Test connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Name, err)
	}

	return &DB{
		conn: conn,
		path: cfg.Path,
		name: cfg.Name,
	}, nil
}

// buildConnectionString creates the SQLite connection string with PRAGMAs
func buildConnectionString(path string) string {
	connStr := path + "?_pragma=journal_mode(WAL)"
	connStr += "&_pragma=synchronous(NORMAL)"      // Fsync at checkpoints
	connStr += "&_pragma=auto_vacuum(INCREMENTAL)" // Gradual space reclamation
	connStr += "&_pragma=temp_store(MEMORY)"       // Temp tables in RAM
	connStr += "&_pragma=foreign_keys(1)"
	connStr += "&_pragma=wal_autocheckpoint(1000)" // Checkpoint every 1000 pages
	connStr += "&_pragma=cache_size(-64000)"       // 64MB cache (negative = KB)
	return connStr
}

// configureConnectionPool sets up the connection pool for long-term operation
func configureConnectionPool(conn *sql.DB) {
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(24 * time.Hour)
	conn.SetConnMaxIdleTime(30 * time.Minute)
}

// Migrate applies the database schema. All statements are IF NOT EXISTS so
// this is safe to call on every startup.
func (db *DB) Migrate() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}

	if _, err := tx.Exec(schema); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to apply schema for %s: %w", db.name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema for %s: %w", db.name, err)
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection.
// Used by repositories to execute queries.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Name returns the database name for logging
func (db *DB) Name() string {
	return db.name
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

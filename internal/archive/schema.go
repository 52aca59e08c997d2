// Package archive mirrors the scan store into SQLite so scans survive
// restarts, with optional FTS5 full-text search.
package archive

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS scans (
	id           TEXT PRIMARY KEY,
	seq          INTEGER NOT NULL,
	captured_at  INTEGER NOT NULL,
	summary      TEXT NOT NULL DEFAULT '',
	image_source TEXT NOT NULL DEFAULT '',
	body         TEXT NOT NULL DEFAULT '',
	tags         TEXT NOT NULL DEFAULT '',
	payload      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scans_seq ON scans(seq);
`

// DB wraps a sql.DB with archive operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("archive: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("archive: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("archive: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("archive: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

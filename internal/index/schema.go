// Package index persists todo metadata, list order and the tag catalog in
// SQLite, with optional FTS5 full-text search over titles and content.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS todos (
	id              TEXT PRIMARY KEY,
	uid             TEXT NOT NULL DEFAULT '',
	title           TEXT NOT NULL DEFAULT '',
	time            TEXT NOT NULL DEFAULT '',
	tags            TEXT NOT NULL DEFAULT '[]',
	is_cloud_synced INTEGER NOT NULL DEFAULT 0,
	position        INTEGER NOT NULL DEFAULT 0,
	checksum        TEXT NOT NULL DEFAULT '',
	body            TEXT NOT NULL DEFAULT '',
	updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_todos_position ON todos(position);

CREATE TABLE IF NOT EXISTS tags (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	is_hidden   INTEGER NOT NULL DEFAULT 0,
	icon        TEXT NOT NULL DEFAULT '',
	position    INTEGER NOT NULL DEFAULT 0
);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

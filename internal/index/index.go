// Package index provides the SQLite-backed archive index with optional
// FTS5 full-text search over converted messages.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	path          TEXT PRIMARY KEY,
	channel       TEXT NOT NULL,
	name          TEXT NOT NULL,
	checksum      TEXT NOT NULL DEFAULT '',
	message_count INTEGER NOT NULL DEFAULT 0,
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	doc_path TEXT NOT NULL,
	channel  TEXT NOT NULL,
	ts       TEXT NOT NULL,
	day      TEXT NOT NULL,
	username TEXT NOT NULL DEFAULT '',
	body     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_messages_doc ON messages(doc_path);
CREATE INDEX IF NOT EXISTS idx_documents_channel ON documents(channel);
`

// Archive defines the index operations the converter, API, and MCP layers
// depend on. Consumers should depend on this interface rather than the
// concrete *DB type to facilitate testing with mocks.
type Archive interface {
	UpsertDocument(d DocRow, msgs []MessageRow) error
	GetChecksum(path string) (string, error)
	Channels() ([]ChannelInfo, error)
	Documents(channel string) ([]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies Archive at compile time.
var _ Archive = (*DB)(nil)

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

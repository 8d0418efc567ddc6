package index

import (
	"fmt"
	"time"
)

// DocRow represents a row in the documents table.
type DocRow struct {
	Path      string // channel/group.md, relative to the archive root
	Channel   string
	Name      string // group name: file stem or YYYY-MM-DD
	Checksum  string
	UpdatedAt time.Time
}

// MessageRow represents one indexed message.
type MessageRow struct {
	TS       string
	Day      string
	Username string
	Text     string
}

// ChannelInfo summarises one channel in the archive.
type ChannelInfo struct {
	Name      string `json:"name"`
	Documents int    `json:"documents"`
	Messages  int    `json:"messages"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path     string `json:"path"`
	Channel  string `json:"channel"`
	Username string `json:"username"`
	Snippet  string `json:"snippet"`
}

// UpsertDocument replaces a document row and its messages within a
// transaction. Messages previously indexed for the same document are
// dropped first, so re-conversion never duplicates rows.
func (db *DB) UpsertDocument(d DocRow, msgs []MessageRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO documents (path, channel, name, checksum, message_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			channel       = excluded.channel,
			name          = excluded.name,
			checksum      = excluded.checksum,
			message_count = excluded.message_count,
			updated_at    = excluded.updated_at
	`, d.Path, d.Channel, d.Name, d.Checksum, len(msgs), d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	_, _ = tx.Exec(`DELETE FROM messages WHERE doc_path = ?`, d.Path)
	ftsDelete(tx, d.Path)

	if len(msgs) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO messages (doc_path, channel, ts, day, username, body) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare message insert: %w", err)
		}
		defer stmt.Close()
		for _, m := range msgs {
			if _, err := stmt.Exec(d.Path, d.Channel, m.TS, m.Day, m.Username, m.Text); err != nil {
				return fmt.Errorf("index: insert message: %w", err)
			}
			if err := ftsUpsert(tx, d.Path, d.Channel, m.Username, m.Text); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a document, or empty string
// if the document has never been indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// Channels returns a summary of every channel in the archive, sorted by name.
func (db *DB) Channels() ([]ChannelInfo, error) {
	rows, err := db.conn.Query(`
		SELECT channel, COUNT(*), COALESCE(SUM(message_count), 0)
		FROM documents
		GROUP BY channel
		ORDER BY channel
	`)
	if err != nil {
		return nil, fmt.Errorf("index: channels: %w", err)
	}
	defer rows.Close()

	var out []ChannelInfo
	for rows.Next() {
		var c ChannelInfo
		if err := rows.Scan(&c.Name, &c.Documents, &c.Messages); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Documents returns the document paths for one channel, newest name first.
func (db *DB) Documents(channel string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT path FROM documents WHERE channel = ? ORDER BY name DESC`, channel)
	if err != nil {
		return nil, fmt.Errorf("index: documents: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

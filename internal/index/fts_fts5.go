//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
			doc_path UNINDEXED,
			channel,
			username,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, docPath, channel, username, body string) error {
	_, err := tx.Exec(`INSERT INTO messages_fts (doc_path, channel, username, body) VALUES (?, ?, ?, ?)`,
		docPath, channel, username, body)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, docPath string) {
	_, _ = tx.Exec(`DELETE FROM messages_fts WHERE doc_path = ?`, docPath)
}

// Search performs an FTS5 full-text search over indexed messages and
// returns matching results with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT doc_path,
		       channel,
		       username,
		       snippet(messages_fts, 3, '<b>', '</b>', '...', 64)
		FROM messages_fts
		WHERE messages_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Channel, &r.Username, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

//go:build sqlite_fts5

package archive

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS scans_fts USING fts5(
			id UNINDEXED,
			summary,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, summary, body, tags string) error {
	_, _ = tx.Exec(`DELETE FROM scans_fts WHERE id = ?`, id)
	_, err := tx.Exec(`INSERT INTO scans_fts (id, summary, body, tags) VALUES (?, ?, ?, ?)`,
		id, summary, body, tags)
	if err != nil {
		return fmt.Errorf("archive: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM scans_fts WHERE id = ?`, id)
}

func ftsClear(tx *sql.Tx) {
	_, _ = tx.Exec(`DELETE FROM scans_fts`)
}

// Search performs an FTS5 full-text search and returns hits with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	match := ftsQuery(query)
	if match == "" {
		return []SearchResult{}, nil
	}
	rows, err := db.conn.Query(`
		SELECT f.id,
		       f.summary,
		       snippet(scans_fts, 2, '<b>', '</b>', '...', 64),
		       s.captured_at
		FROM scans_fts f
		JOIN scans s ON s.id = f.id
		WHERE scans_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ScanID, &r.Summary, &r.Snippet, &r.CapturedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ftsQuery turns free text into an FTS5 expression: every whitespace
// separated term becomes a quoted string, so operators and punctuation in
// user input are matched as text. Terms are ANDed.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

package archive

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/starford/scanboard/internal/models"
)

// SearchResult is one archive search hit.
type SearchResult struct {
	ScanID     string `json:"scanId"`
	Summary    string `json:"summary"`
	Snippet    string `json:"snippet"`
	CapturedAt int64  `json:"timestamp"`
}

// UpsertScan stores scan. A new scan is ordered after every existing one;
// re-storing a known scan keeps its position.
func (db *DB) UpsertScan(scan models.ScanResult) error {
	payload, err := json.Marshal(scan)
	if err != nil {
		return fmt.Errorf("archive: encode scan: %w", err)
	}
	body, tags := searchText(scan)

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("archive: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO scans (id, seq, captured_at, summary, image_source, body, tags, payload)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM scans), ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			captured_at  = excluded.captured_at,
			summary      = excluded.summary,
			image_source = excluded.image_source,
			body         = excluded.body,
			tags         = excluded.tags,
			payload      = excluded.payload
	`, scan.ID, scan.Timestamp, scan.Summary, scan.ImageSource, body, tags, string(payload))
	if err != nil {
		return fmt.Errorf("archive: upsert scan: %w", err)
	}

	if err := ftsUpsert(tx, scan.ID, scan.Summary, body, tags); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteScan removes a scan. Unknown ids are ignored.
func (db *DB) DeleteScan(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("archive: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	if _, err := tx.Exec(`DELETE FROM scans WHERE id = ?`, id); err != nil {
		return fmt.Errorf("archive: delete scan: %w", err)
	}
	return tx.Commit()
}

// Clear removes every scan.
func (db *DB) Clear() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("archive: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsClear(tx)
	if _, err := tx.Exec(`DELETE FROM scans`); err != nil {
		return fmt.Errorf("archive: clear: %w", err)
	}
	return tx.Commit()
}

// LoadAll returns every archived scan, newest insertion first.
func (db *DB) LoadAll() ([]models.ScanResult, error) {
	rows, err := db.conn.Query(`SELECT payload FROM scans ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("archive: load: %w", err)
	}
	defer rows.Close()

	out := []models.ScanResult{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var scan models.ScanResult
		if err := json.Unmarshal([]byte(payload), &scan); err != nil {
			return nil, fmt.Errorf("archive: decode scan: %w", err)
		}
		out = append(out, scan)
	}
	return out, rows.Err()
}

// Count returns the number of archived scans.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM scans`).Scan(&n); err != nil {
		return 0, fmt.Errorf("archive: count: %w", err)
	}
	return n, nil
}

// searchText flattens the searchable parts of a scan into a body and a
// space-separated tag list.
func searchText(scan models.ScanResult) (body, tags string) {
	var b strings.Builder
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			b.WriteString(s)
			b.WriteByte('\n')
		}
	}
	for _, t := range scan.Tasks {
		add(t.Title)
	}
	for _, e := range scan.Events {
		add(e.Title)
		add(e.Location)
	}
	var tagList []string
	for _, n := range scan.Notes {
		add(n.Title)
		add(n.Content)
		tagList = append(tagList, n.Tags...)
	}
	for _, it := range scan.ItemsDetected {
		add(it.Name)
	}
	for _, step := range scan.StudyPlan {
		add(step)
	}
	return b.String(), strings.Join(tagList, " ")
}

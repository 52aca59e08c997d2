package archive

import (
	"path/filepath"
	"testing"

	"github.com/starford/scanboard/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "scanboard.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleScan(id, summary string) models.ScanResult {
	return models.ScanResult{
		ID:        id,
		Timestamp: 1700000000000,
		Summary:   summary,
		Tasks:     []models.Task{{ID: id + "-t", Title: "Renew passport", Priority: models.PriorityHigh}},
		Events:    []models.Event{{ID: id + "-e", Title: "Dentist", Date: "2024-03-15", Time: "09:30"}},
		Notes:     []models.Note{{ID: id + "-n", Content: "Bring insurance card", Tags: []string{"health"}}},
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM scans`).Scan(&count); err != nil {
		t.Fatalf("scans table missing: %v", err)
	}
}

func TestUpsertLoadAllOrder(t *testing.T) {
	db := testDB(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := db.UpsertScan(sampleScan(id, "scan "+id)); err != nil {
			t.Fatalf("UpsertScan: %v", err)
		}
	}
	// Re-storing keeps position.
	if err := db.UpsertScan(sampleScan("a", "updated")); err != nil {
		t.Fatalf("UpsertScan: %v", err)
	}

	scans, err := db.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(scans) != 3 {
		t.Fatalf("len = %d, want 3", len(scans))
	}
	if scans[0].ID != "c" || scans[1].ID != "b" || scans[2].ID != "a" {
		t.Errorf("order = %s %s %s", scans[0].ID, scans[1].ID, scans[2].ID)
	}
	if scans[2].Summary != "updated" {
		t.Errorf("summary = %q", scans[2].Summary)
	}
	if scans[0].Events[0].Time != "09:30" || scans[0].Notes[0].Tags[0] != "health" {
		t.Errorf("payload not round-tripped: %+v", scans[0])
	}
}

func TestDeleteAndClear(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertScan(sampleScan("a", "x"))
	_ = db.UpsertScan(sampleScan("b", "y"))

	if err := db.DeleteScan("a"); err != nil {
		t.Fatalf("DeleteScan: %v", err)
	}
	if err := db.DeleteScan("missing"); err != nil {
		t.Fatalf("DeleteScan(missing): %v", err)
	}
	if n, _ := db.Count(); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	if err := db.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n, _ := db.Count(); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertScan(sampleScan("a", "Kitchen whiteboard"))
	_ = db.UpsertScan(models.ScanResult{ID: "b", Summary: "Office desk"})

	results, err := db.Search("passport", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ScanID != "a" {
		t.Errorf("results = %+v", results)
	}

	results, err = db.Search("insurance", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("note content not searchable: %+v", results)
	}

	results, _ = db.Search("nothing-like-this", 10)
	if len(results) != 0 {
		t.Errorf("expected no results, got %+v", results)
	}
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = db.UpsertScan(sampleScan("a", "x"))
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	scans, _ := db.LoadAll()
	if len(scans) != 1 || scans[0].ID != "a" {
		t.Errorf("scans = %+v", scans)
	}
}

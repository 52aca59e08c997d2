//go:build sqlite_fts5

package archive

import "testing"

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM scans_fts`).Scan(&count); err != nil {
		t.Fatalf("scans_fts table missing: %v", err)
	}
}

func TestFTS5_SnippetMarksMatch(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertScan(sampleScan("s1", "Kitchen counter")); err != nil {
		t.Fatalf("UpsertScan: %v", err)
	}

	results, err := db.Search("insurance", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ScanID != "s1" {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertScan(sampleScan("s1", "original summary"))
	_ = db.UpsertScan(sampleScan("s1", "replacement summary"))

	results, _ := db.Search("original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("replacement", 10)
	if len(results) != 1 || results[0].Summary != "replacement summary" {
		t.Errorf("FTS not updated: %+v", results)
	}
}

func TestFTS5_DeleteAndClear(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertScan(sampleScan("s1", "vanishing desk"))
	_ = db.UpsertScan(sampleScan("s2", "vanishing shelf"))

	_ = db.DeleteScan("s1")
	results, _ := db.Search("vanishing", 10)
	if len(results) != 1 || results[0].ScanID != "s2" {
		t.Errorf("after delete: %+v", results)
	}

	_ = db.Clear()
	results, _ = db.Search("vanishing", 10)
	if len(results) != 0 {
		t.Errorf("after clear: %+v", results)
	}
}

func TestFTS5_QueryPunctuationIsText(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertScan(sampleScan("s1", "Kitchen counter")); err != nil {
		t.Fatalf("UpsertScan: %v", err)
	}

	for _, q := range []string{"foo-bar", `"unbalanced`, "AND OR NOT", "kitchen*(", "  "} {
		if _, err := db.Search(q, 10); err != nil {
			t.Errorf("Search(%q): %v", q, err)
		}
	}

	results, err := db.Search("kitchen-counter", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ScanID != "s1" {
		t.Errorf("results = %+v", results)
	}
}

func TestFTSQuery(t *testing.T) {
	cases := map[string]string{
		"desk lamp": `"desk" "lamp"`,
		`say "hi`:   `"say" """hi"`,
		"foo-bar":   `"foo-bar"`,
		"   ":       "",
	}
	for in, want := range cases {
		if got := ftsQuery(in); got != want {
			t.Errorf("ftsQuery(%q) = %s, want %s", in, got, want)
		}
	}
}

// Package testutil provides shared test helpers for services, archives and
// captured images.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/scanboard/internal/archive"
	"github.com/starford/scanboard/internal/capture"
	"github.com/starford/scanboard/internal/storage"
)

// PNG is the smallest byte sequence sniffed as image/png.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

// TestImage returns a small PNG capture.
func TestImage(t *testing.T) capture.Image {
	t.Helper()
	img, err := capture.FromBytes(PNG)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

// TestArchive opens a temporary SQLite archive that is closed on cleanup.
func TestArchive(t *testing.T) *archive.DB {
	t.Helper()
	db, err := archive.Open(filepath.Join(t.TempDir(), "scanboard-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDataDir creates a temporary data directory with a storage.FS.
func TestDataDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestImageFile writes a small PNG into a temporary directory and returns
// its path.
func TestImageFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "capture.png")
	if err := os.WriteFile(p, PNG, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempStore(t)
	content := []byte{0x89, 'P', 'N', 'G'}
	if err := s.Write("images/a.png", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("images/a.png")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestDeleteMissingIsNoError(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("x.csv", []byte("a,b"))
	if err := s.Delete("x.csv"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("x.csv"); err == nil {
		t.Error("expected error reading deleted file")
	}
	if err := s.Delete("x.csv"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestListFiltersByExtension(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("images/a.png", []byte("a"))
	_ = s.Write("images/b.JPG", []byte("b"))
	_ = s.Write("notes/c.md", []byte("c"))

	items, err := s.List("images", ".png", ".jpg")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2", len(items))
	}
	all, _ := s.List("")
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}
	if all[0].Checksum != Checksum([]byte("a")) {
		t.Errorf("checksum = %s", all[0].Checksum)
	}
}

func TestListMissingDir(t *testing.T) {
	s := tempStore(t)
	items, err := s.List("nope")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len = %d", len(items))
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempStore(t)
	for _, p := range []string{"../../etc/passwd", "../outside.png", "/etc/shadow"} {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTemp(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("export.json", []byte("old"))
	if err := s.Write("export.json", []byte("new")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("export.json")
	if string(got) != "new" {
		t.Errorf("got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.Root(), tmpPrefix+"*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "nested")
	if _, err := NewFS(dir); err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("dir not created: %v", err)
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "scanboard-*")
	if err != nil {
		t.Fatal(err)
	}
	_ = f.Close()
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}

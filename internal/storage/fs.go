package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the data directory
}

// NewFS creates a provider rooted at root, creating the directory when it
// does not exist yet.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create root: %w", err)
		}
		return &FS{root: abs}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute root directory.
func (f *FS) Root() string { return f.root }

// safePath resolves a relative path against the root and rejects any
// result that escapes it.
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes data root: %s", rel)
	}
	return abs, nil
}

// List returns metadata for files under dir, filtered by extension when
// exts is non-empty. A missing dir yields an empty list. Temporary files of
// in-flight writes are skipped.
func (f *FS) List(dir string, exts ...string) ([]FileInfo, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		switch {
		case walkErr != nil && p == base && errors.Is(walkErr, fs.ErrNotExist):
			return fs.SkipAll
		case walkErr != nil:
			return walkErr
		case d.IsDir(), strings.HasPrefix(d.Name(), tmpPrefix):
			return nil
		case len(exts) > 0 && !slices.Contains(exts, strings.ToLower(filepath.Ext(d.Name()))):
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", dir, err)
	}

	out := make([]FileInfo, 0, len(paths))
	for _, p := range paths {
		info, err := f.describe(p)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

func (f *FS) describe(abs string) (FileInfo, error) {
	st, err := os.Stat(abs)
	if err != nil {
		return FileInfo{}, fmt.Errorf("storage: stat: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return FileInfo{}, fmt.Errorf("storage: read: %w", err)
	}
	rel, err := filepath.Rel(f.root, abs)
	if err != nil {
		return FileInfo{}, fmt.Errorf("storage: relative path: %w", err)
	}
	return FileInfo{
		Path:      filepath.ToSlash(rel),
		Size:      st.Size(),
		Checksum:  Checksum(data),
		UpdatedAt: st.ModTime(),
	}, nil
}

// Read returns the raw bytes of a stored file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

const tmpPrefix = ".scanboard-tmp-"

// Write replaces path with content. Readers see the old file or the new
// one, never a partial write.
func (f *FS) Write(path string, content []byte) (err error) {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = syncWrite(tmp, content); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), abs); err != nil {
		return fmt.Errorf("storage: commit %s: %w", path, err)
	}
	return nil
}

func syncWrite(fh *os.File, content []byte) error {
	if _, err := fh.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := fh.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := fh.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	return nil
}

// Delete removes a stored file. Deleting a missing file is not an error.
func (f *FS) Delete(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

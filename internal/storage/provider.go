// Package storage defines the data-directory file abstraction used for
// captured images and exports.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// FileInfo describes one stored file.
type FileInfo struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Provider is the interface for data-directory file operations. All paths
// are relative to the provider root.
type Provider interface {
	// List returns every file under dir whose extension is in exts
	// (all files when exts is empty).
	List(dir string, exts ...string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

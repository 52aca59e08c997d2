// Package scanstore holds the ordered collection of analyzed scans.
package scanstore

import (
	"fmt"

	"github.com/starford/scanboard/internal/apperr"
	"github.com/starford/scanboard/internal/models"
)

// Store is an in-memory, newest-first sequence of scans plus the active
// scan reference. It is not safe for concurrent use; callers serialize access.
type Store struct {
	scans    []models.ScanResult
	activeID string
	revision uint64
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Insert prepends scan so the sequence stays newest first.
func (s *Store) Insert(scan models.ScanResult) {
	s.scans = append([]models.ScanResult{scan}, s.scans...)
	s.revision++
}

// Remove deletes the scan with id. Removing an unknown id is a no-op.
// activeCleared reports whether the active reference pointed at the removed scan.
func (s *Store) Remove(id string) (removed, activeCleared bool) {
	for i := range s.scans {
		if s.scans[i].ID != id {
			continue
		}
		s.scans = append(s.scans[:i:i], s.scans[i+1:]...)
		if s.activeID == id {
			s.activeID = ""
			activeCleared = true
		}
		s.revision++
		return true, activeCleared
	}
	return false, false
}

// Clear empties the store and drops the active reference.
func (s *Store) Clear() {
	s.scans = nil
	s.activeID = ""
	s.revision++
}

// FindAll returns a copy of the sequence, newest first.
func (s *Store) FindAll() []models.ScanResult {
	out := make([]models.ScanResult, len(s.scans))
	copy(out, s.scans)
	return out
}

// Len returns the number of stored scans.
func (s *Store) Len() int { return len(s.scans) }

// Find returns the scan with id.
func (s *Store) Find(id string) (models.ScanResult, error) {
	for _, scan := range s.scans {
		if scan.ID == id {
			return scan, nil
		}
	}
	return models.ScanResult{}, fmt.Errorf("scan %q: %w", id, apperr.ErrNotFound)
}

// SetActive points the active reference at an existing scan.
func (s *Store) SetActive(id string) error {
	if _, err := s.Find(id); err != nil {
		return err
	}
	if s.activeID != id {
		s.activeID = id
		s.revision++
	}
	return nil
}

// Active returns the active scan, if any.
func (s *Store) Active() (models.ScanResult, bool) {
	if s.activeID == "" {
		return models.ScanResult{}, false
	}
	scan, err := s.Find(s.activeID)
	if err != nil {
		return models.ScanResult{}, false
	}
	return scan, true
}

// ActiveID returns the active scan id, or "" when none.
func (s *Store) ActiveID() string { return s.activeID }

// ClearActive drops the active reference.
func (s *Store) ClearActive() {
	if s.activeID != "" {
		s.activeID = ""
		s.revision++
	}
}

// Revision increments on every mutation.
func (s *Store) Revision() uint64 { return s.revision }

// Snapshot returns deep copies of all scans, newest first.
func (s *Store) Snapshot() []models.ScanResult {
	out := make([]models.ScanResult, len(s.scans))
	for i, scan := range s.scans {
		out[i] = scan.Clone()
	}
	return out
}

// Restore replaces the contents with scans (newest first) and clears the
// active reference. Duplicate ids are rejected.
func (s *Store) Restore(scans []models.ScanResult) error {
	seen := make(map[string]struct{}, len(scans))
	out := make([]models.ScanResult, 0, len(scans))
	for _, scan := range scans {
		if _, dup := seen[scan.ID]; dup {
			return fmt.Errorf("restore scan %q: %w", scan.ID, apperr.ErrAlreadyExists)
		}
		seen[scan.ID] = struct{}{}
		out = append(out, scan.Clone())
	}
	s.scans = out
	s.activeID = ""
	s.revision++
	return nil
}

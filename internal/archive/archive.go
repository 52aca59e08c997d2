package archive

import "github.com/starford/scanboard/internal/models"

// Mirror is the persistence surface the application service writes through.
type Mirror interface {
	UpsertScan(scan models.ScanResult) error
	DeleteScan(id string) error
	Clear() error
	LoadAll() ([]models.ScanResult, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

var _ Mirror = (*DB)(nil)

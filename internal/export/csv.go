// Package export writes scan data as CSV, JSON and Markdown.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/starford/scanboard/internal/models"
)

// Format is an export format.
type Format string

// Export formats.
const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat parses s, treating "" as FormatJSON.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(s); f {
	case "":
		return FormatJSON, true
	case FormatCSV, FormatJSON, FormatMarkdown:
		return f, true
	case "md":
		return FormatMarkdown, true
	}
	return "", false
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// Write exports scans in format f.
func Write(w io.Writer, f Format, scans []models.ScanResult, now time.Time) error {
	switch f {
	case FormatCSV:
		return CSV(w, scans)
	case FormatMarkdown:
		return Markdown(w, scans)
	}
	return JSON(w, scans, now)
}

// CSV writes one row per task and per event of every scan.
func CSV(w io.Writer, scans []models.ScanResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Kind", "Scan", "Captured", "ID", "Title", "Date", "Time", "Priority", "Completed", "Location"}); err != nil {
		return err
	}

	for _, s := range scans {
		captured := s.CapturedAt().UTC().Format(time.RFC3339)
		for _, t := range s.Tasks {
			row := []string{"task", s.ID, captured, t.ID, t.Title, t.Deadline, "", string(t.Priority), strconv.FormatBool(t.Completed), ""}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("export: write task row: %w", err)
			}
		}
		for _, e := range s.Events {
			row := []string{"event", s.ID, captured, e.ID, e.Title, e.Date, e.Time, "", "", e.Location}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("export: write event row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/starford/scanboard/internal/models"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	ScanCount  int         `json:"scan_count"`
	Tasks      []jsonTask  `json:"tasks"`
	Events     []jsonEvent `json:"events"`
}

type jsonTask struct {
	models.Task
	ScanID string `json:"scan_id"`
}

type jsonEvent struct {
	models.Event
	ScanID string `json:"scan_id"`
}

// JSON writes every task and event of scans as one indented document.
func JSON(w io.Writer, scans []models.ScanResult, now time.Time) error {
	out := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		ScanCount:  len(scans),
		Tasks:      []jsonTask{},
		Events:     []jsonEvent{},
	}
	for _, s := range scans {
		for _, t := range s.Tasks {
			out.Tasks = append(out.Tasks, jsonTask{Task: t, ScanID: s.ID})
		}
		for _, e := range s.Events {
			out.Events = append(out.Events, jsonEvent{Event: e, ScanID: s.ID})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("export: encode json: %w", err)
	}
	return nil
}

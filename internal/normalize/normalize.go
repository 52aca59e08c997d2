// Package normalize converts raw analysis responses into canonical scan records.
package normalize

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/scanboard/internal/models"
)

// DefaultSummary is used when the analysis response carries no summary.
const DefaultSummary = "No summary available."

// IDFunc generates a fresh identifier. It must never derive ids from content.
type IDFunc func() string

// Normalizer applies total defaulting to raw extractions.
type Normalizer struct {
	newID IDFunc
}

// New returns a Normalizer using newID for identifiers, or random UUIDs when nil.
func New(newID IDFunc) *Normalizer {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Normalizer{newID: newID}
}

// Normalize builds a ScanResult from raw. It never fails: absent fields
// become empty slices or documented defaults.
func (n *Normalizer) Normalize(raw *RawExtraction, capturedAt int64, imageSource string) models.ScanResult {
	if raw == nil {
		raw = &RawExtraction{}
	}

	scan := models.ScanResult{
		ID:            n.newID(),
		Timestamp:     capturedAt,
		ImageSource:   imageSource,
		Summary:       DefaultSummary,
		ItemsDetected: make([]models.ItemDetected, 0, len(raw.ItemsDetected)),
		Tasks:         make([]models.Task, 0, len(raw.Tasks)),
		Events:        make([]models.Event, 0, len(raw.Events)),
		Notes:         make([]models.Note, 0, len(raw.Notes)),
		StudyPlan:     make([]string, 0, len(raw.StudyPlan)),
	}
	if raw.Summary != nil && strings.TrimSpace(*raw.Summary) != "" {
		scan.Summary = strings.TrimSpace(*raw.Summary)
	}

	for _, it := range raw.ItemsDetected {
		scan.ItemsDetected = append(scan.ItemsDetected, models.ItemDetected{
			Name:       it.Name,
			Category:   it.Category,
			Confidence: clampConfidence(it.Confidence),
		})
	}

	for _, t := range raw.Tasks {
		scan.Tasks = append(scan.Tasks, models.Task{
			ID:        n.newID(),
			Title:     t.Title,
			Deadline:  strings.TrimSpace(t.Deadline),
			Priority:  ParsePriority(t.Priority),
			Completed: false,
		})
	}

	for _, e := range raw.Events {
		scan.Events = append(scan.Events, models.Event{
			ID:       n.newID(),
			Title:    e.Title,
			Date:     strings.TrimSpace(e.Date),
			Time:     strings.TrimSpace(e.Time),
			Location: e.Location,
		})
	}

	for _, note := range raw.Notes {
		tags := make([]string, 0, len(note.Tags))
		tags = append(tags, note.Tags...)
		scan.Notes = append(scan.Notes, models.Note{
			ID:      n.newID(),
			Title:   note.Title,
			Content: note.Content,
			Tags:    tags,
		})
	}

	scan.StudyPlan = append(scan.StudyPlan, raw.StudyPlan...)
	return scan
}

// ParsePriority maps a raw priority to a known level, defaulting to Medium.
func ParsePriority(s string) models.Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return models.PriorityHigh
	case "low":
		return models.PriorityLow
	}
	return models.PriorityMedium
}

func clampConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

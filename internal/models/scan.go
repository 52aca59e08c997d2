// Package models defines the domain types for scanboard.
package models

import (
	"slices"
	"time"
)

// Priority is the urgency level assigned to an extracted task.
type Priority string

// Known priority levels.
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Weight returns the sort weight of p. Unrecognized values weigh 0.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// ItemDetected is a physical object recognized in a capture.
type ItemDetected struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Task is an actionable item extracted from a capture.
// An empty Deadline means "no due date".
type Task struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Deadline  string   `json:"deadline,omitempty"`
	Priority  Priority `json:"priority"`
	Completed bool     `json:"completed"`
}

// Event is a calendar entry extracted from a capture.
type Event struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time,omitempty"`
	Location string `json:"location,omitempty"`
}

// Note is a free-form note extracted from a capture.
type Note struct {
	ID      string   `json:"id"`
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// ScanResult is one analyzed capture. It owns its tasks, events and notes.
type ScanResult struct {
	ID            string         `json:"id"`
	Timestamp     int64          `json:"timestamp"`
	ImageSource   string         `json:"imageSource"`
	Summary       string         `json:"summary"`
	ItemsDetected []ItemDetected `json:"itemsDetected"`
	Tasks         []Task         `json:"tasks"`
	Events        []Event        `json:"events"`
	Notes         []Note         `json:"notes"`
	StudyPlan     []string       `json:"studyPlan"`
}

// CapturedAt returns the capture instant.
func (s ScanResult) CapturedAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Clone returns a deep copy so callers can hand out records without
// sharing backing arrays with the store.
func (s ScanResult) Clone() ScanResult {
	out := s
	out.ItemsDetected = slices.Clone(s.ItemsDetected)
	out.Tasks = slices.Clone(s.Tasks)
	out.Events = slices.Clone(s.Events)
	out.StudyPlan = slices.Clone(s.StudyPlan)
	out.Notes = make([]Note, len(s.Notes))
	for i, n := range s.Notes {
		n.Tags = slices.Clone(n.Tags)
		out.Notes[i] = n
	}
	return out
}

// Profile is the signed-in user's display information.
type Profile struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

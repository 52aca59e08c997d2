// Package tasks maintains the editable task list of the active scan and
// projects it through filter and sort policies.
package tasks

import (
	"fmt"
	"slices"

	"github.com/starford/scanboard/internal/apperr"
	"github.com/starford/scanboard/internal/models"
)

// DeleteState describes the two-step delete flow. Pending is false when idle.
type DeleteState struct {
	Pending bool   `json:"pending"`
	TaskID  string `json:"taskId,omitempty"`
}

// Overlay is a detached copy of one scan's tasks. Edits made here never
// reach the scan store; re-seeding discards them.
type Overlay struct {
	scanID string
	tasks  []models.Task
	del    DeleteState
}

// NewOverlay returns an empty overlay bound to no scan.
func NewOverlay() *Overlay {
	return &Overlay{}
}

// Seed replaces the local list with a copy of tasks and resets the delete flow.
func (o *Overlay) Seed(scanID string, tasks []models.Task) {
	o.scanID = scanID
	o.tasks = slices.Clone(tasks)
	if o.tasks == nil {
		o.tasks = []models.Task{}
	}
	o.del = DeleteState{}
}

// Reset detaches the overlay from any scan.
func (o *Overlay) Reset() {
	o.Seed("", nil)
}

// ScanID returns the id of the scan the overlay was seeded from.
func (o *Overlay) ScanID() string { return o.scanID }

// Toggle flips completion of the task with id.
func (o *Overlay) Toggle(id string) (models.Task, error) {
	i := o.index(id)
	if i < 0 {
		return models.Task{}, fmt.Errorf("task %q: %w", id, apperr.ErrNotFound)
	}
	o.tasks[i].Completed = !o.tasks[i].Completed
	return o.tasks[i], nil
}

// RequestDelete marks the task with id as pending deletion.
func (o *Overlay) RequestDelete(id string) error {
	if o.index(id) < 0 {
		return fmt.Errorf("task %q: %w", id, apperr.ErrNotFound)
	}
	o.del = DeleteState{Pending: true, TaskID: id}
	return nil
}

// ConfirmDelete removes the pending task and returns to idle.
func (o *Overlay) ConfirmDelete() (models.Task, error) {
	if !o.del.Pending {
		return models.Task{}, fmt.Errorf("no task pending deletion: %w", apperr.ErrConflict)
	}
	id := o.del.TaskID
	o.del = DeleteState{}
	i := o.index(id)
	if i < 0 {
		return models.Task{}, fmt.Errorf("task %q: %w", id, apperr.ErrNotFound)
	}
	removed := o.tasks[i]
	o.tasks = slices.Delete(o.tasks, i, i+1)
	return removed, nil
}

// CancelDelete clears the pending marker without touching the list.
func (o *Overlay) CancelDelete() {
	o.del = DeleteState{}
}

// DeleteState returns the current state of the delete flow.
func (o *Overlay) DeleteState() DeleteState { return o.del }

// Tasks returns a copy of the unfiltered local list.
func (o *Overlay) Tasks() []models.Task {
	return slices.Clone(o.tasks)
}

// TotalCount returns the number of local tasks.
func (o *Overlay) TotalCount() int { return len(o.tasks) }

// CompletedCount returns the number of completed local tasks.
func (o *Overlay) CompletedCount() int {
	n := 0
	for _, t := range o.tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// Project returns the filtered, sorted view of the local list.
func (o *Overlay) Project(f Filter, s Sort) []models.Task {
	return Project(o.tasks, f, s)
}

func (o *Overlay) index(id string) int {
	return slices.IndexFunc(o.tasks, func(t models.Task) bool { return t.ID == id })
}

package tasks

import (
	"errors"
	"testing"

	"github.com/starford/scanboard/internal/apperr"
	"github.com/starford/scanboard/internal/models"
)

func sample() []models.Task {
	return []models.Task{
		{ID: "1", Title: "banana", Deadline: "2024-02-01", Priority: models.PriorityLow},
		{ID: "2", Title: "Apple", Priority: models.PriorityHigh, Completed: true},
		{ID: "3", Title: "cherry", Deadline: "2024-01-10", Priority: models.PriorityMedium},
		{ID: "4", Title: "date", Priority: "Weird"},
		{ID: "5", Title: "Éclair", Deadline: "2024-01-10", Priority: models.PriorityHigh, Completed: true},
	}
}

func taskIDs(list []models.Task) string {
	s := ""
	for _, t := range list {
		s += t.ID
	}
	return s
}

func TestToggleTwiceIsIdentity(t *testing.T) {
	o := NewOverlay()
	o.Seed("scan", sample())
	for _, task := range sample() {
		if _, err := o.Toggle(task.ID); err != nil {
			t.Fatalf("Toggle: %v", err)
		}
		if _, err := o.Toggle(task.ID); err != nil {
			t.Fatalf("Toggle: %v", err)
		}
	}
	for i, task := range o.Tasks() {
		if task.Completed != sample()[i].Completed {
			t.Errorf("task %s completed = %v after double toggle", task.ID, task.Completed)
		}
	}
}

func TestToggleOnlyTouchesOneTask(t *testing.T) {
	o := NewOverlay()
	o.Seed("scan", sample())
	got, err := o.Toggle("1")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !got.Completed {
		t.Error("task 1 should be completed")
	}
	if o.CompletedCount() != 3 || o.TotalCount() != 5 {
		t.Errorf("counts = %d/%d, want 3/5", o.CompletedCount(), o.TotalCount())
	}
	if _, err := o.Toggle("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSeedDetachesFromSource(t *testing.T) {
	src := sample()
	o := NewOverlay()
	o.Seed("scan", src)
	_, _ = o.Toggle("1")
	if src[0].Completed {
		t.Error("toggle leaked into source slice")
	}

	o.Seed("scan", src)
	if o.CompletedCount() != 2 {
		t.Errorf("re-seed should discard local edits, completed = %d", o.CompletedCount())
	}
}

func TestTwoStepDelete(t *testing.T) {
	o := NewOverlay()
	o.Seed("scan", sample())

	if err := o.RequestDelete("3"); err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	if st := o.DeleteState(); !st.Pending || st.TaskID != "3" {
		t.Errorf("state = %+v", st)
	}
	o.CancelDelete()
	if o.DeleteState().Pending || o.TotalCount() != 5 {
		t.Error("cancel should clear marker without removing")
	}

	_ = o.RequestDelete("3")
	removed, err := o.ConfirmDelete()
	if err != nil {
		t.Fatalf("ConfirmDelete: %v", err)
	}
	if removed.ID != "3" || o.TotalCount() != 4 {
		t.Errorf("removed %q, total %d", removed.ID, o.TotalCount())
	}
	if o.DeleteState().Pending {
		t.Error("state should return to idle")
	}

	if _, err := o.ConfirmDelete(); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("confirm while idle err = %v, want ErrConflict", err)
	}
	if err := o.RequestDelete("3"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSeedClearsPendingDelete(t *testing.T) {
	o := NewOverlay()
	o.Seed("a", sample())
	_ = o.RequestDelete("1")
	o.Seed("b", sample())
	if o.DeleteState().Pending {
		t.Error("seed should clear pending delete")
	}
	if o.ScanID() != "b" {
		t.Errorf("scanID = %q", o.ScanID())
	}
}

func TestFilterPartition(t *testing.T) {
	list := sample()
	all := Project(list, FilterAll, SortDeadline)
	pending := Project(list, FilterPending, SortDeadline)
	completed := Project(list, FilterCompleted, SortDeadline)

	if len(pending)+len(completed) != len(all) {
		t.Fatalf("partition sizes %d+%d != %d", len(pending), len(completed), len(all))
	}
	seen := map[string]int{}
	for _, task := range append(pending, completed...) {
		seen[task.ID]++
	}
	for _, task := range all {
		if seen[task.ID] != 1 {
			t.Errorf("task %s seen %d times", task.ID, seen[task.ID])
		}
	}
}

func TestSortDeadline(t *testing.T) {
	got := taskIDs(Project(sample(), FilterAll, SortDeadline))
	// 3 and 5 share a deadline and keep input order; 2 and 4 have none.
	if got != "35124" {
		t.Errorf("order = %s, want 35124", got)
	}
}

func TestSortDeadlineDatedBeforeUndated(t *testing.T) {
	dated := models.Task{ID: "d", Deadline: "2024-01-10", Priority: models.PriorityHigh}
	undated := models.Task{ID: "u", Priority: models.PriorityLow}
	for _, in := range [][]models.Task{{dated, undated}, {undated, dated}} {
		if got := taskIDs(Project(in, FilterAll, SortDeadline)); got != "du" {
			t.Errorf("order = %s, want du", got)
		}
	}
}

func TestSortPriority(t *testing.T) {
	got := taskIDs(Project(sample(), FilterAll, SortPriority))
	if got != "25314" {
		t.Errorf("order = %s, want 25314", got)
	}
}

func TestSortTitleLocaleAware(t *testing.T) {
	got := taskIDs(Project(sample(), FilterAll, SortTitle))
	if got != "21345" {
		t.Errorf("order = %s, want 21345", got)
	}
}

func TestProjectDoesNotMutate(t *testing.T) {
	list := sample()
	_ = Project(list, FilterPending, SortTitle)
	if taskIDs(list) != "12345" {
		t.Errorf("input reordered: %s", taskIDs(list))
	}
}

func TestParseFilterSort(t *testing.T) {
	if f, err := ParseFilter(""); err != nil || f != FilterAll {
		t.Errorf("ParseFilter(\"\") = %q, %v", f, err)
	}
	if f, err := ParseFilter("Pending"); err != nil || f != FilterPending {
		t.Errorf("ParseFilter(Pending) = %q, %v", f, err)
	}
	if _, err := ParseFilter("done"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	if s, err := ParseSort(""); err != nil || s != SortDeadline {
		t.Errorf("ParseSort(\"\") = %q, %v", s, err)
	}
	if _, err := ParseSort("date"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

package tasks

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/scanboard/internal/apperr"
	"github.com/starford/scanboard/internal/models"
)

// Filter selects tasks by completion.
type Filter string

// Known filters.
const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

// Sort orders a projection.
type Sort string

// Known sort keys.
const (
	SortDeadline Sort = "deadline"
	SortPriority Sort = "priority"
	SortTitle    Sort = "title"
)

// ParseFilter parses s, treating "" as FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPending, FilterCompleted:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q: %w", s, apperr.ErrInvalidInput)
}

// ParseSort parses s, treating "" as SortDeadline.
func ParseSort(s string) (Sort, error) {
	switch v := Sort(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return SortDeadline, nil
	case SortDeadline, SortPriority, SortTitle:
		return v, nil
	}
	return "", fmt.Errorf("unknown sort %q: %w", s, apperr.ErrInvalidInput)
}

// Project filters then stably sorts a copy of list. list is never modified.
func Project(list []models.Task, f Filter, s Sort) []models.Task {
	out := make([]models.Task, 0, len(list))
	for _, t := range list {
		switch f {
		case FilterPending:
			if t.Completed {
				continue
			}
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}

	switch s {
	case SortDeadline:
		slices.SortStableFunc(out, compareDeadline)
	case SortPriority:
		slices.SortStableFunc(out, func(a, b models.Task) int {
			return b.Priority.Weight() - a.Priority.Weight()
		})
	case SortTitle:
		c := collate.New(language.Und)
		slices.SortStableFunc(out, func(a, b models.Task) int {
			return c.CompareString(a.Title, b.Title)
		})
	}
	return out
}

// compareDeadline orders dated tasks ascending and undated tasks last.
func compareDeadline(a, b models.Task) int {
	switch {
	case a.Deadline == "" && b.Deadline == "":
		return 0
	case a.Deadline == "":
		return 1
	case b.Deadline == "":
		return -1
	}
	return strings.Compare(a.Deadline, b.Deadline)
}

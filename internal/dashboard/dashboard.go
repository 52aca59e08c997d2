// Package dashboard derives summary figures from the scan store.
package dashboard

import (
	"time"

	"github.com/starford/scanboard/internal/calendar"
	"github.com/starford/scanboard/internal/models"
)

// Stats are the dashboard counters. They are recomputed on every call.
type Stats struct {
	TotalTasks  int `json:"totalTasks"`
	TotalEvents int `json:"totalEvents"`
	ScanCount   int `json:"scanCount"`
}

// Compute sums tasks and events over scans.
func Compute(scans []models.ScanResult) Stats {
	st := Stats{ScanCount: len(scans)}
	for _, s := range scans {
		st.TotalTasks += len(s.Tasks)
		st.TotalEvents += len(s.Events)
	}
	return st
}

// DayActivity is the number of tasks extracted from captures taken on Day.
type DayActivity struct {
	Day   calendar.Date `json:"day"`
	Tasks int           `json:"tasks"`
	Scans int           `json:"scans"`
}

// Activity returns one entry per day for the trailing window of days ending
// at now, oldest first. Capture days are taken in now's location.
func Activity(scans []models.ScanResult, now time.Time, days int) []DayActivity {
	if days <= 0 {
		return []DayActivity{}
	}
	end := calendar.FromTime(now)
	start := end.AddDays(-(days - 1))

	out := make([]DayActivity, days)
	index := make(map[calendar.Date]int, days)
	for i := range out {
		d := start.AddDays(i)
		out[i].Day = d
		index[d] = i
	}
	for _, s := range scans {
		d := calendar.FromTime(s.CapturedAt().In(now.Location()))
		if i, ok := index[d]; ok {
			out[i].Tasks += len(s.Tasks)
			out[i].Scans++
		}
	}
	return out
}

// Recent returns at most n scans from the front of the newest-first sequence.
func Recent(scans []models.ScanResult, n int) []models.ScanResult {
	if n < 0 {
		n = 0
	}
	if n > len(scans) {
		n = len(scans)
	}
	out := make([]models.ScanResult, n)
	copy(out, scans[:n])
	return out
}

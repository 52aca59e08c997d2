package gcal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	calendarapi "google.golang.org/api/calendar/v3"

	"github.com/starford/scanboard/internal/calendar"
)

// EventIDProperty is the private extended property linking a Google event
// to the scan event it was created from.
const EventIDProperty = "scanboard_event_id"

const timedEventLength = 30 * time.Minute

// Result counts what a sync did.
type Result struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Syncer writes scan events into one Google calendar.
type Syncer struct {
	srv        *calendarapi.Service
	calendarID string
	loc        *time.Location
	logger     *slog.Logger
}

// NewSyncer returns a Syncer for calendarID ("primary" when empty). Timed
// events are interpreted in loc.
func NewSyncer(srv *calendarapi.Service, calendarID string, loc *time.Location, logger *slog.Logger) *Syncer {
	if calendarID == "" {
		calendarID = "primary"
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{srv: srv, calendarID: calendarID, loc: loc, logger: logger}
}

// Sync creates or patches one Google event per scan event. Events without a
// usable date are skipped.
func (s *Syncer) Sync(ctx context.Context, events []calendar.EventRef) (Result, error) {
	var res Result
	for _, e := range events {
		ge, ok := s.toGoogle(e)
		if !ok {
			res.Skipped++
			continue
		}

		existing, err := s.find(ctx, e.ID)
		if err != nil {
			return res, err
		}
		if existing != nil {
			if _, err := s.srv.Events.Patch(s.calendarID, existing.Id, ge).Context(ctx).Do(); err != nil {
				return res, fmt.Errorf("gcal: patch event %s: %w", e.ID, err)
			}
			res.Updated++
			continue
		}
		if _, err := s.srv.Events.Insert(s.calendarID, ge).Context(ctx).Do(); err != nil {
			return res, fmt.Errorf("gcal: insert event %s: %w", e.ID, err)
		}
		res.Created++
	}
	s.logger.Info("calendar synced",
		slog.Int("created", res.Created),
		slog.Int("updated", res.Updated),
		slog.Int("skipped", res.Skipped),
	)
	return res, nil
}

func (s *Syncer) find(ctx context.Context, eventID string) (*calendarapi.Event, error) {
	list, err := s.srv.Events.List(s.calendarID).
		PrivateExtendedProperty(EventIDProperty + "=" + eventID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("gcal: find event %s: %w", eventID, err)
	}
	if len(list.Items) == 0 {
		return nil, nil
	}
	return list.Items[0], nil
}

// toGoogle converts e. Events with a parseable "HH:MM" time become 30-minute
// timed events; the rest are all-day.
func (s *Syncer) toGoogle(e calendar.EventRef) (*calendarapi.Event, bool) {
	d, ok := e.ParsedDate()
	if !ok {
		return nil, false
	}
	ge := &calendarapi.Event{
		Summary:  e.Title,
		Location: e.Location,
		ExtendedProperties: &calendarapi.EventExtendedProperties{
			Private: map[string]string{EventIDProperty: e.ID},
		},
	}

	if clock, err := time.Parse("15:04", e.Time); err == nil {
		start := time.Date(d.Year, d.Month, d.Day, clock.Hour(), clock.Minute(), 0, 0, s.loc)
		ge.Start = &calendarapi.EventDateTime{DateTime: start.Format(time.RFC3339)}
		ge.End = &calendarapi.EventDateTime{DateTime: start.Add(timedEventLength).Format(time.RFC3339)}
		return ge, true
	}
	ge.Start = &calendarapi.EventDateTime{Date: d.String()}
	ge.End = &calendarapi.EventDateTime{Date: d.AddDays(1).String()}
	return ge, true
}

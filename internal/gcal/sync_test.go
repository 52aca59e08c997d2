package gcal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/starford/scanboard/internal/calendar"
	"github.com/starford/scanboard/internal/models"
)

// fakeCalendar is a minimal Calendar API holding events in memory.
type fakeCalendar struct {
	mu      sync.Mutex
	events  map[string]*calendarapi.Event
	nextID  int
	patches int
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/events"):
		want := strings.TrimPrefix(r.URL.Query().Get("privateExtendedProperty"), EventIDProperty+"=")
		items := []*calendarapi.Event{}
		for _, e := range f.events {
			if e.ExtendedProperties.Private[EventIDProperty] == want {
				items = append(items, e)
			}
		}
		json.NewEncoder(w).Encode(calendarapi.Events{Items: items})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/events"):
		var e calendarapi.Event
		json.NewDecoder(r.Body).Decode(&e)
		f.nextID++
		e.Id = fmt.Sprintf("g%d", f.nextID)
		f.events[e.Id] = &e
		json.NewEncoder(w).Encode(e)
	case r.Method == http.MethodPatch:
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		e, ok := f.events[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		var patch calendarapi.Event
		json.NewDecoder(r.Body).Decode(&patch)
		e.Summary = patch.Summary
		f.patches++
		json.NewEncoder(w).Encode(e)
	default:
		http.Error(w, "unexpected "+r.Method+" "+r.URL.Path, http.StatusBadRequest)
	}
}

func testSyncer(t *testing.T) (*Syncer, *fakeCalendar) {
	t.Helper()
	fake := &fakeCalendar{events: map[string]*calendarapi.Event{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	api, err := calendarapi.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatal(err)
	}
	return NewSyncer(api, "", time.UTC, nil), fake
}

func ref(id, title, date, clock string) calendar.EventRef {
	return calendar.EventRef{Event: models.Event{ID: id, Title: title, Date: date, Time: clock}, ScanID: "s1"}
}

func TestSyncCreatesThenPatches(t *testing.T) {
	s, fake := testSyncer(t)
	events := []calendar.EventRef{
		ref("e1", "Standup", "2026-03-14", "09:00"),
		ref("e2", "Holiday", "2026-03-20", ""),
		ref("e3", "Someday", "later", ""),
	}

	res, err := s.Sync(context.Background(), events)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res != (Result{Created: 2, Skipped: 1}) {
		t.Errorf("first sync = %+v", res)
	}

	var timed, allDay *calendarapi.Event
	for _, e := range fake.events {
		switch e.Summary {
		case "Standup":
			timed = e
		case "Holiday":
			allDay = e
		}
	}
	if timed == nil || timed.Start.DateTime != "2026-03-14T09:00:00Z" || timed.End.DateTime != "2026-03-14T09:30:00Z" {
		t.Errorf("timed event = %+v", timed)
	}
	if allDay == nil || allDay.Start.Date != "2026-03-20" || allDay.End.Date != "2026-03-21" {
		t.Errorf("all-day event = %+v", allDay)
	}

	events[0].Title = "Standup (moved)"
	res, err = s.Sync(context.Background(), events)
	if err != nil {
		t.Fatal(err)
	}
	if res != (Result{Updated: 2, Skipped: 1}) {
		t.Errorf("second sync = %+v", res)
	}
	if len(fake.events) != 2 || fake.patches != 2 {
		t.Errorf("events = %d, patches = %d", len(fake.events), fake.patches)
	}
}

func TestTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	if _, err := TokenFromFile(path); err == nil {
		t.Fatal("missing token accepted")
	}
	want := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}
	if err := SaveToken(path, want); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Mode().Perm() != 0o600 {
		t.Fatalf("stat = %v, %v", info, err)
	}
	got, err := TokenFromFile(path)
	if err != nil || got.RefreshToken != "r" {
		t.Errorf("token = %+v, %v", got, err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	creds := `{"installed":{"client_id":"cid","client_secret":"sec",
		"auth_uri":"https://accounts.google.com/o/oauth2/auth",
		"token_uri":"https://oauth2.googleapis.com/token",
		"redirect_uris":["http://localhost"]}}`
	if err := os.WriteFile(path, []byte(creds), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ClientID != "cid" || !strings.Contains(AuthURL(cfg), "access_type=offline") {
		t.Errorf("config = %+v", cfg)
	}
}

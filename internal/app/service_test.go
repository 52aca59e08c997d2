package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/scanboard/internal/analyzer"
	"github.com/starford/scanboard/internal/apperr"
	"github.com/starford/scanboard/internal/auth"
	"github.com/starford/scanboard/internal/calendar"
	"github.com/starford/scanboard/internal/capture"
	"github.com/starford/scanboard/internal/models"
	"github.com/starford/scanboard/internal/navigation"
	"github.com/starford/scanboard/internal/scanner"
	"github.com/starford/scanboard/internal/sse"
	"github.com/starford/scanboard/internal/tasks"
	"github.com/starford/scanboard/internal/testutil"
)

var fixedNow = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Publish(e sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.Type)
}

func (r *recorder) PublishStoreChange(e sse.Event, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.Type, sse.TypeDashboardUpdated)
}

func (r *recorder) has(typ string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == typ {
			return true
		}
	}
	return false
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newService(t *testing.T, an analyzer.Analyzer, opts ...Option) *Service {
	t.Helper()
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDFunc(sequentialIDs()),
		WithProgressTick(time.Millisecond),
		WithAuthenticator(auth.New(auth.WithDelay(0))),
	}
	svc, err := New(an, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func scanOnce(t *testing.T, svc *Service) models.ScanResult {
	t.Helper()
	scan, err := svc.Scan(context.Background(), testutil.TestImage(t))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return scan
}

func TestScanStoresAndShowsResults(t *testing.T) {
	rec := &recorder{}
	svc := newService(t, analyzer.Fake{}, WithNotifier(rec))

	scan := scanOnce(t, svc)
	if scan.Timestamp != fixedNow.UnixMilli() {
		t.Errorf("timestamp = %d", scan.Timestamp)
	}
	if !strings.HasPrefix(scan.ImageSource, "data:image/png;base64,") {
		t.Errorf("image source = %.30s", scan.ImageSource)
	}

	vs := svc.ViewState()
	if vs.View != navigation.Results || vs.ActiveScanID != scan.ID {
		t.Fatalf("view = %+v", vs)
	}
	if got := svc.ScanStatus(); got.Status != scanner.StatusDone || got.Progress != 100 {
		t.Errorf("status = %+v", got)
	}

	d := svc.Dashboard()
	if d.Stats.ScanCount != 1 || d.Stats.TotalTasks != 2 || d.Stats.TotalEvents != 1 {
		t.Errorf("stats = %+v", d.Stats)
	}
	if len(d.Activity) != activityDays || d.Activity[activityDays-1].Tasks != 2 {
		t.Errorf("activity = %+v", d.Activity)
	}
	if !rec.has(sse.TypeScanCreated) || !rec.has(sse.TypeScanProgress) {
		t.Errorf("events = %v", rec.events)
	}
}

func TestProcessFailureKeepsPreview(t *testing.T) {
	rec := &recorder{}
	svc := newService(t, analyzer.Fake{Err: errors.New("quota")}, WithNotifier(rec))

	if _, err := svc.StartScan(testutil.TestImage(t)); err != nil {
		t.Fatal(err)
	}
	_, err := svc.ProcessScan(context.Background())
	if !errors.Is(err, apperr.ErrAnalysis) {
		t.Fatalf("err = %v, want ErrAnalysis", err)
	}
	st := svc.ScanStatus()
	if st.Status != scanner.StatusFailed || !st.HasImage {
		t.Errorf("status = %+v", st)
	}
	if svc.ViewState().View != navigation.Scanner {
		t.Errorf("view = %s", svc.ViewState().View)
	}
	if len(svc.ListScans()) != 0 {
		t.Error("failed analysis stored a scan")
	}
	if !rec.has(sse.TypeScanFailed) {
		t.Errorf("events = %v", rec.events)
	}

	vs, err := svc.CancelScan()
	if err != nil || vs.View != navigation.Dashboard {
		t.Errorf("cancel = %+v, %v", vs, err)
	}
}

func TestIngestLeavesPendingCapture(t *testing.T) {
	svc := newService(t, analyzer.Fake{})

	userImg := testutil.TestImage(t)
	if _, err := svc.StartScan(userImg); err != nil {
		t.Fatal(err)
	}
	inboxImg, err := capture.FromBytes(append(append([]byte{}, testutil.PNG...), 0x01))
	if err != nil {
		t.Fatal(err)
	}

	ingested, err := svc.Ingest(context.Background(), inboxImg)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if ingested.ImageSource != inboxImg.DataURI() {
		t.Errorf("ingested image = %.40s", ingested.ImageSource)
	}
	vs := svc.ViewState()
	if vs.View != navigation.Scanner || vs.ActiveScanID != "" {
		t.Errorf("ingest changed view: %+v", vs)
	}
	st := svc.ScanStatus()
	if st.Status != scanner.StatusPreview || st.ImageChecksum != userImg.Checksum {
		t.Errorf("pending capture = %+v", st)
	}

	scan, err := svc.ProcessScan(context.Background())
	if err != nil {
		t.Fatalf("ProcessScan: %v", err)
	}
	if scan.ImageSource != userImg.DataURI() {
		t.Errorf("processed image = %.40s, want user capture", scan.ImageSource)
	}
	if n := len(svc.ListScans()); n != 2 {
		t.Errorf("scans = %d, want 2", n)
	}
	if vs := svc.ViewState(); vs.View != navigation.Results || vs.ActiveScanID != scan.ID {
		t.Errorf("view = %+v", vs)
	}
}

func TestIngestFailureLeavesUserWorkflowIdle(t *testing.T) {
	svc := newService(t, analyzer.Fake{Err: errors.New("quota")})
	if _, err := svc.Ingest(context.Background(), testutil.TestImage(t)); !errors.Is(err, apperr.ErrAnalysis) {
		t.Fatalf("err = %v, want ErrAnalysis", err)
	}
	if st := svc.ScanStatus(); st.Status != scanner.StatusIdle {
		t.Errorf("user workflow = %+v", st)
	}
	if n := len(svc.ListScans()); n != 0 {
		t.Errorf("scans = %d", n)
	}
}

func TestProcessWithoutImage(t *testing.T) {
	svc := newService(t, analyzer.Fake{})
	if _, err := svc.ProcessScan(context.Background()); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestDeleteScan(t *testing.T) {
	svc := newService(t, analyzer.Fake{})
	first := scanOnce(t, svc)
	second := scanOnce(t, svc)

	vs, err := svc.DeleteScan(first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if vs.View != navigation.Results || vs.ActiveScanID != second.ID {
		t.Errorf("deleting inactive scan changed view: %+v", vs)
	}

	vs, err = svc.DeleteScan(second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if vs.View != navigation.Dashboard || vs.ActiveScanID != "" {
		t.Errorf("deleting active scan: %+v", vs)
	}
	if _, err := svc.DeleteScan("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
	if _, err := svc.Tasks(tasks.FilterAll, tasks.SortDeadline); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("tasks without active scan: %v", err)
	}
}

func TestClearData(t *testing.T) {
	rec := &recorder{}
	svc := newService(t, analyzer.Fake{}, WithNotifier(rec))
	scanOnce(t, svc)
	scanOnce(t, svc)

	vs := svc.ClearData()
	if vs.View != navigation.Dashboard || vs.ActiveScanID != "" {
		t.Errorf("view = %+v", vs)
	}
	if got := svc.Dashboard().Stats; got.ScanCount != 0 || got.TotalTasks != 0 {
		t.Errorf("stats = %+v", got)
	}
	if !rec.has(sse.TypeStoreCleared) {
		t.Errorf("events = %v", rec.events)
	}
}

func TestTaskOverlayIsDetached(t *testing.T) {
	svc := newService(t, analyzer.Fake{})
	scan := scanOnce(t, svc)

	view, err := svc.Tasks(tasks.FilterAll, tasks.SortPriority)
	if err != nil {
		t.Fatal(err)
	}
	if view.Total != 2 || view.Completed != 0 || view.Tasks[0].Priority != models.PriorityHigh {
		t.Fatalf("view = %+v", view)
	}

	id := view.Tasks[0].ID
	if _, err := svc.ToggleTask(id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RequestTaskDelete(view.Tasks[1].ID); err != nil {
		t.Fatal(err)
	}
	after, err := svc.ConfirmTaskDelete(tasks.FilterPending, tasks.SortDeadline)
	if err != nil {
		t.Fatal(err)
	}
	if after.Total != 1 || after.Completed != 1 || after.Delete.Pending {
		t.Errorf("after confirm = %+v", after)
	}
	if len(after.Tasks) != 0 {
		t.Errorf("confirm ignored the pending filter: %+v", after.Tasks)
	}

	stored, _ := svc.GetScan(scan.ID)
	if len(stored.Tasks) != 2 || stored.Tasks[0].Completed {
		t.Errorf("overlay edits leaked into store: %+v", stored.Tasks)
	}
	if got := svc.Dashboard().Stats.TotalTasks; got != 2 {
		t.Errorf("dashboard total = %d", got)
	}

	// Viewing the scan again starts from the stored record.
	if _, err := svc.ViewScan(scan.ID); err != nil {
		t.Fatal(err)
	}
	view, _ = svc.Tasks(tasks.FilterCompleted, tasks.SortDeadline)
	if len(view.Tasks) != 0 || view.Total != 2 {
		t.Errorf("reseeded view = %+v", view)
	}
}

func TestTaskDeleteCancel(t *testing.T) {
	svc := newService(t, analyzer.Fake{})
	scanOnce(t, svc)
	view, _ := svc.Tasks(tasks.FilterAll, tasks.SortTitle)

	st, err := svc.RequestTaskDelete(view.Tasks[0].ID)
	if err != nil || !st.Pending || st.TaskID != view.Tasks[0].ID {
		t.Fatalf("request = %+v, %v", st, err)
	}
	if st := svc.CancelTaskDelete(); st.Pending {
		t.Errorf("cancel left pending: %+v", st)
	}
	if _, err := svc.ConfirmTaskDelete(tasks.FilterAll, tasks.SortDeadline); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("confirm when idle: %v", err)
	}
	if _, err := svc.ToggleTask("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("toggle unknown: %v", err)
	}
}

func TestCalendar(t *testing.T) {
	fake := analyzer.Fake{Response: `{"events":[
		{"title":"Standup","date":"2026-03-14","time":"09:00"},
		{"title":"Trip","date":"2026-04-02"},
		{"title":"Someday","date":"soon"}]}`}
	svc := newService(t, fake)
	scanOnce(t, svc)

	cv := svc.Calendar()
	if cv.Current != calendar.DateOf(2026, time.March, 1) || cv.Selected != calendar.DateOf(2026, time.March, 14) {
		t.Fatalf("cursor = %v / %v", cv.Current, cv.Selected)
	}
	if len(cv.SelectedEvents) != 1 || cv.SelectedEvents[0].Title != "Standup" {
		t.Errorf("selected events = %+v", cv.SelectedEvents)
	}

	cv = svc.CalendarMonth(1)
	if cv.Current.Month != time.April {
		t.Errorf("month = %v", cv.Current)
	}

	cv, err := svc.CalendarSelect("2026-04-02")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.SelectedEvents) != 1 || cv.SelectedEvents[0].Title != "Trip" {
		t.Errorf("selected = %+v", cv.SelectedEvents)
	}
	if _, err := svc.CalendarSelect("whenever"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v", err)
	}

	cv = svc.CalendarToday()
	if cv.Current.Month != time.March || cv.Selected.Day != 14 {
		t.Errorf("today = %v / %v", cv.Current, cv.Selected)
	}
	if got := len(svc.AllEvents()); got != 3 {
		t.Errorf("all events = %d, want 3", got)
	}
}

func TestLoginMergesProfile(t *testing.T) {
	svc := newService(t, analyzer.Fake{})
	sess, err := svc.Login(context.Background(), "jane.smith@example.com", "x")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Profile.Name != "Jane Smith" || sess.Profile.Role != DefaultProfile.Role {
		t.Errorf("profile = %+v", sess.Profile)
	}
	if !svc.ValidSessionToken(sess.Token) {
		t.Error("issued token rejected")
	}

	svc.Logout()
	if _, ok := svc.Session(); ok {
		t.Error("session survived logout")
	}
	if svc.ValidSessionToken(sess.Token) {
		t.Error("token valid after logout")
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := newService(t, analyzer.Fake{})
	if _, err := svc.UpdateProfile(models.Profile{Name: " ", Email: "a@b.c"}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("blank name: %v", err)
	}
	if _, err := svc.UpdateProfile(models.Profile{Name: "A", Email: "nope"}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("bad email: %v", err)
	}
	p, err := svc.UpdateProfile(models.Profile{Name: " Ada ", Email: "ada@example.com", Role: "Engineer"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Ada" || svc.Profile().Role != "Engineer" {
		t.Errorf("profile = %+v", p)
	}
}

func TestSettings(t *testing.T) {
	svc := newService(t, analyzer.Fake{})
	st := svc.Settings()
	if st.DarkMode || !st.Preferences[PrefNotifications] || st.Preferences[PrefEmailDigest] || !st.Preferences[PrefCalendarSync] {
		t.Fatalf("defaults = %+v", st)
	}
	if !svc.ToggleDarkMode().DarkMode {
		t.Error("dark mode not toggled")
	}
	st, err := svc.TogglePreference(PrefCalendarSync)
	if err != nil || st.Preferences[PrefCalendarSync] {
		t.Errorf("toggle = %+v, %v", st, err)
	}
	if _, err := svc.TogglePreference("telepathy"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("unknown preference: %v", err)
	}
	st.Preferences[PrefEmailDigest] = true
	if svc.Preference(PrefEmailDigest) {
		t.Error("settings copy aliases internal map")
	}
}

func TestNavigate(t *testing.T) {
	svc := newService(t, analyzer.Fake{})
	vs, err := svc.Navigate(navigation.Results)
	if err != nil || vs.View != navigation.Dashboard {
		t.Errorf("results without scan = %+v, %v", vs, err)
	}
	if _, err := svc.Navigate(navigation.Documents); !errors.Is(err, navigation.ErrUnreachableView) {
		t.Errorf("documents: %v", err)
	}
	svc.Navigate(navigation.AccountSecurity)
	if got := svc.Back().View; got != navigation.Settings {
		t.Errorf("back = %s", got)
	}
}

func TestMirrorAndBlobs(t *testing.T) {
	db := testutil.TestArchive(t)
	_, fs := testutil.TestDataDir(t)
	blobs := capture.NewBlobs(fs)

	svc := newService(t, analyzer.Fake{}, WithMirror(db), WithBlobs(blobs))
	scan := scanOnce(t, svc)
	if scan.ImageSource != "images/"+scan.ID+".png" {
		t.Fatalf("image source = %s", scan.ImageSource)
	}
	img, err := svc.ScanImage(scan.ID)
	if err != nil || img.MIME != "image/png" {
		t.Fatalf("ScanImage = %+v, %v", img.MIME, err)
	}

	hits, err := svc.Search("expense", 0)
	if err != nil || len(hits) != 1 || hits[0].ScanID != scan.ID {
		t.Errorf("search = %+v, %v", hits, err)
	}

	restored := newService(t, analyzer.Fake{}, WithMirror(db), WithBlobs(blobs))
	if got := restored.ListScans(); len(got) != 1 || got[0].ID != scan.ID {
		t.Fatalf("restored = %+v", got)
	}

	if _, err := restored.DeleteScan(scan.ID); err != nil {
		t.Fatal(err)
	}
	if n, _ := db.Count(); n != 0 {
		t.Errorf("archive count = %d", n)
	}
	if _, err := blobs.Load(scan.ImageSource); err == nil {
		t.Error("image blob survived delete")
	}
}

func TestSearchInMemory(t *testing.T) {
	svc := newService(t, analyzer.Fake{})
	scanOnce(t, svc)
	hits, err := svc.Search("PLANTS", 0)
	if err != nil || len(hits) != 1 || hits[0].Snippet != "Water the plants" {
		t.Errorf("search = %+v, %v", hits, err)
	}
	if _, err := svc.Search("  ", 0); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("empty query: %v", err)
	}
}

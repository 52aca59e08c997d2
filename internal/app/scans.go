package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/scanboard/internal/apperr"
	"github.com/starford/scanboard/internal/archive"
	"github.com/starford/scanboard/internal/capture"
	"github.com/starford/scanboard/internal/dashboard"
	"github.com/starford/scanboard/internal/models"
	"github.com/starford/scanboard/internal/navigation"
	"github.com/starford/scanboard/internal/scanner"
	"github.com/starford/scanboard/internal/sse"
)

const (
	recentScans  = 5
	activityDays = 7
	searchLimit  = 20
)

// Dashboard is the dashboard projection.
type Dashboard struct {
	Stats    dashboard.Stats         `json:"stats"`
	Recent   []models.ScanResult     `json:"recent"`
	Activity []dashboard.DayActivity `json:"activity"`
}

// Dashboard derives the dashboard from the current store.
func (s *Service) Dashboard() Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dashboard()
}

func (s *Service) dashboard() Dashboard {
	scans := s.store.FindAll()
	return Dashboard{
		Stats:    dashboard.Compute(scans),
		Recent:   dashboard.Recent(scans, recentScans),
		Activity: dashboard.Activity(scans, s.now(), activityDays),
	}
}

// ListScans returns every scan, newest first.
func (s *Service) ListScans() []models.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.FindAll()
}

// GetScan returns one scan.
func (s *Service) GetScan(id string) (models.ScanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Find(id)
}

// ViewScan makes a stored scan active and shows its results. The task
// overlay is re-seeded from the stored record.
func (s *Service) ViewScan(id string) (ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SetActive(id); err != nil {
		return s.viewState(), err
	}
	s.nav.ViewResult(id)
	s.seedOverlay()
	return s.viewState(), nil
}

// DeleteScan removes a scan. Deleting the active scan returns to the
// dashboard; deleting any other scan leaves the view unchanged.
func (s *Service) DeleteScan(id string) (ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scan, err := s.store.Find(id)
	if err != nil {
		return s.viewState(), err
	}
	_, activeCleared := s.store.Remove(id)
	s.nav.ScanDeleted(id, activeCleared)
	if activeCleared {
		s.overlay.Reset()
	}

	if s.blobs != nil {
		if err := s.blobs.Delete(scan.ImageSource); err != nil {
			s.logger.Warn("delete image blob", slog.String("scan", id), slog.String("error", err.Error()))
		}
	}
	if s.mirror != nil {
		if err := s.mirror.DeleteScan(id); err != nil {
			s.logger.Error("archive delete", slog.String("scan", id), slog.String("error", err.Error()))
		}
	}
	s.publishStoreChange(sse.TypeScanDeleted, map[string]string{"id": id})
	return s.viewState(), nil
}

// ClearData removes every scan and returns to the dashboard.
func (s *Service) ClearData() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Clear()
	s.nav.DataCleared()
	s.overlay.Reset()

	if s.blobs != nil {
		if err := s.blobs.DeleteAll(); err != nil {
			s.logger.Warn("delete image blobs", slog.String("error", err.Error()))
		}
	}
	if s.mirror != nil {
		if err := s.mirror.Clear(); err != nil {
			s.logger.Error("archive clear", slog.String("error", err.Error()))
		}
	}
	s.publishStoreChange(sse.TypeStoreCleared, nil)
	return s.viewState()
}

// StartScan holds img as the pending capture and opens the scanner.
func (s *Service) StartScan(img capture.Image) (scanner.State, error) {
	if err := s.workflow.Preview(img); err != nil {
		return s.workflow.State(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.nav.Navigate(navigation.Scanner); err != nil {
		return s.workflow.State(), err
	}
	return s.workflow.State(), nil
}

// CancelScan drops the pending capture and leaves the scanner.
func (s *Service) CancelScan() (ViewState, error) {
	if err := s.workflow.Discard(); err != nil {
		return s.ViewState(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav.CancelScan()
	return s.viewState(), nil
}

// ScanStatus returns the scanner state.
func (s *Service) ScanStatus() scanner.State {
	return s.workflow.State()
}

// ProcessScan analyzes the pending capture. The analysis call runs outside
// the state lock; the result is then stored, made active and shown.
func (s *Service) ProcessScan(ctx context.Context) (models.ScanResult, error) {
	scan, img, err := s.workflow.Process(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrAnalysis) {
			s.logger.Warn("analysis failed", slog.String("error", err.Error()))
		}
		return models.ScanResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scan = s.storeScan(scan, img)
	if err := s.store.SetActive(scan.ID); err != nil {
		return models.ScanResult{}, err
	}
	s.nav.CompleteScan(scan.ID)
	s.seedOverlay()
	return scan.Clone(), nil
}

// Ingest analyzes img on its own workflow and stores the result. The user's
// pending capture, the active scan and the current view are left alone.
// Calls are serialized.
func (s *Service) Ingest(ctx context.Context, img capture.Image) (models.ScanResult, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()
	if err := s.background.Preview(img); err != nil {
		return models.ScanResult{}, err
	}
	scan, img, err := s.background.Process(ctx)
	if err != nil {
		s.background.Reset()
		return models.ScanResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeScan(scan, img).Clone(), nil
}

// storeScan saves the image blob, inserts scan and announces it. Callers
// hold s.mu.
func (s *Service) storeScan(scan models.ScanResult, img capture.Image) models.ScanResult {
	if s.blobs != nil {
		ref, err := s.blobs.Save(scan.ID, img)
		if err != nil {
			s.logger.Warn("store image blob", slog.String("scan", scan.ID), slog.String("error", err.Error()))
		} else {
			scan.ImageSource = ref
		}
	}

	s.store.Insert(scan)
	if s.mirror != nil {
		if err := s.mirror.UpsertScan(scan); err != nil {
			s.logger.Error("archive upsert", slog.String("scan", scan.ID), slog.String("error", err.Error()))
		}
	}
	s.logger.Info("scan stored",
		slog.String("scan", scan.ID),
		slog.Int("tasks", len(scan.Tasks)),
		slog.Int("events", len(scan.Events)),
		slog.Int("notes", len(scan.Notes)),
	)
	s.publishStoreChange(sse.TypeScanCreated, scan)
	return scan
}

// Scan previews img and analyzes it in one step.
func (s *Service) Scan(ctx context.Context, img capture.Image) (models.ScanResult, error) {
	if _, err := s.StartScan(img); err != nil {
		return models.ScanResult{}, err
	}
	return s.ProcessScan(ctx)
}

// ScanImage returns the image a scan was captured from.
func (s *Service) ScanImage(id string) (capture.Image, error) {
	scan, err := s.GetScan(id)
	if err != nil {
		return capture.Image{}, err
	}
	if capture.IsBlobRef(scan.ImageSource) {
		if s.blobs == nil {
			return capture.Image{}, fmt.Errorf("image blob %s: %w", scan.ImageSource, apperr.ErrNotFound)
		}
		return s.blobs.Load(scan.ImageSource)
	}
	return capture.FromDataURI(scan.ImageSource)
}

// Search finds scans whose text matches query, newest first. The archive is
// used when configured; otherwise the in-memory store is scanned.
func (s *Service) Search(query string, limit int) ([]archive.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query: %w", apperr.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = searchLimit
	}
	if s.mirror != nil {
		return s.mirror.Search(query, limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []archive.SearchResult{}
	for _, scan := range s.store.FindAll() {
		snippet, ok := matchScan(scan, strings.ToLower(query))
		if !ok {
			continue
		}
		out = append(out, archive.SearchResult{
			ScanID:     scan.ID,
			Summary:    scan.Summary,
			Snippet:    snippet,
			CapturedAt: scan.Timestamp,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// matchScan returns the first text field of scan containing q.
func matchScan(scan models.ScanResult, q string) (string, bool) {
	fields := []string{scan.Summary}
	for _, t := range scan.Tasks {
		fields = append(fields, t.Title)
	}
	for _, e := range scan.Events {
		fields = append(fields, e.Title, e.Location)
	}
	for _, n := range scan.Notes {
		fields = append(fields, n.Title, n.Content)
		fields = append(fields, n.Tags...)
	}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return f, true
		}
	}
	return "", false
}

func (s *Service) publishStoreChange(typ string, data any) {
	if s.notifier == nil {
		return
	}
	s.notifier.PublishStoreChange(sse.Event{Type: typ, Data: data}, s.dashboard().Stats)
}

func (s *Service) publish(typ string, data any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(sse.Event{Type: typ, Data: data})
}

func (s *Service) publishProgress(st scanner.State) {
	typ := sse.TypeScanProgress
	if st.Status == scanner.StatusFailed {
		typ = sse.TypeScanFailed
	}
	s.publish(typ, st)
}

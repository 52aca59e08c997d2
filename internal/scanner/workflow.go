// Package scanner runs the capture-and-analyze workflow: one pending image,
// one analysis call at a time, with simulated progress while it runs.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/starford/scanboard/internal/analyzer"
	"github.com/starford/scanboard/internal/apperr"
	"github.com/starford/scanboard/internal/capture"
	"github.com/starford/scanboard/internal/models"
	"github.com/starford/scanboard/internal/normalize"
)

// Status is the workflow phase.
type Status string

// Workflow phases.
const (
	StatusIdle      Status = "idle"
	StatusPreview   Status = "preview"
	StatusAnalyzing Status = "analyzing"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
)

// Stage messages shown while analyzing.
const (
	StageInit     = "Initializing analysis..."
	StageDetect   = "Detecting objects & reading text..."
	StageFinalize = "Finalizing results..."
	StageFailed   = "Error occurred. Please try again."
)

const (
	progressStep = 15
	progressCap  = 90
)

// State is a point-in-time view of the workflow.
type State struct {
	Status        Status `json:"status"`
	Progress      int    `json:"progress"`
	Stage         string `json:"stage,omitempty"`
	Error         string `json:"error,omitempty"`
	HasImage      bool   `json:"hasImage"`
	ImageChecksum string `json:"imageChecksum,omitempty"`
}

// Workflow holds the pending image and runs analyses. It is safe for
// concurrent use.
type Workflow struct {
	analyzer   analyzer.Analyzer
	normalizer *normalize.Normalizer
	tick       time.Duration
	now        func() time.Time
	onChange   func(State)

	mu      sync.Mutex
	state   State
	pending *capture.Image
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithTick sets the progress ticker interval.
func WithTick(d time.Duration) Option {
	return func(w *Workflow) { w.tick = d }
}

// WithClock sets the clock used for capture timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// WithNotify registers a callback invoked after every state change.
func WithNotify(fn func(State)) Option {
	return func(w *Workflow) { w.onChange = fn }
}

// New returns an idle workflow.
func New(a analyzer.Analyzer, n *normalize.Normalizer, opts ...Option) *Workflow {
	w := &Workflow{
		analyzer:   a,
		normalizer: n,
		tick:       500 * time.Millisecond,
		now:        time.Now,
		state:      State{Status: StatusIdle},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Preview holds img as the pending capture, replacing any previous one.
func (w *Workflow) Preview(img capture.Image) error {
	w.mu.Lock()
	if w.state.Status == StatusAnalyzing {
		w.mu.Unlock()
		return apperr.ErrBusy
	}
	w.pending = &img
	w.state = State{Status: StatusPreview, HasImage: true, ImageChecksum: img.Checksum}
	st := w.state
	w.mu.Unlock()
	w.notify(st)
	return nil
}

// Pending returns the pending image, if any.
func (w *Workflow) Pending() (capture.Image, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return capture.Image{}, false
	}
	return *w.pending, true
}

// Discard drops the pending image. It never aborts a running analysis.
func (w *Workflow) Discard() error {
	w.mu.Lock()
	if w.state.Status == StatusAnalyzing {
		w.mu.Unlock()
		return apperr.ErrBusy
	}
	w.pending = nil
	w.state = State{Status: StatusIdle}
	st := w.state
	w.mu.Unlock()
	w.notify(st)
	return nil
}

// Process analyzes the pending image and returns the normalized scan along
// with the image it came from. The image reference of the scan is its data
// URI; callers may replace it after storing the image elsewhere. On failure
// the pending image is kept so the caller can retry.
func (w *Workflow) Process(ctx context.Context) (models.ScanResult, capture.Image, error) {
	w.mu.Lock()
	if w.state.Status == StatusAnalyzing {
		w.mu.Unlock()
		return models.ScanResult{}, capture.Image{}, apperr.ErrBusy
	}
	if w.pending == nil {
		w.mu.Unlock()
		return models.ScanResult{}, capture.Image{}, fmt.Errorf("no image to analyze: %w", apperr.ErrInvalidInput)
	}
	img := *w.pending
	w.state = State{Status: StatusAnalyzing, Stage: StageInit, HasImage: true, ImageChecksum: img.Checksum}
	st := w.state
	w.mu.Unlock()
	w.notify(st)

	stop := w.startProgress()
	defer stop()

	w.update(func(s *State) { s.Stage = StageDetect })

	raw, err := w.analyzer.Analyze(ctx, img)
	stop()
	if err != nil {
		if !errors.Is(err, apperr.ErrAnalysis) {
			err = fmt.Errorf("%w: %v", apperr.ErrAnalysis, err)
		}
		w.update(func(s *State) {
			*s = State{Status: StatusFailed, Stage: StageFailed, Error: StageFailed, HasImage: true, ImageChecksum: img.Checksum}
		})
		return models.ScanResult{}, capture.Image{}, err
	}

	scan := w.normalizer.Normalize(raw, w.now().UnixMilli(), img.DataURI())

	w.mu.Lock()
	w.pending = nil
	w.state = State{Status: StatusDone, Progress: 100, Stage: StageFinalize}
	st = w.state
	w.mu.Unlock()
	w.notify(st)
	return scan, img, nil
}

// Reset returns a finished or failed workflow to idle without touching a
// running analysis.
func (w *Workflow) Reset() {
	w.mu.Lock()
	if w.state.Status == StatusAnalyzing {
		w.mu.Unlock()
		return
	}
	w.pending = nil
	w.state = State{Status: StatusIdle}
	st := w.state
	w.mu.Unlock()
	w.notify(st)
}

// startProgress advances progress every tick until the returned stop
// function is called. stop is idempotent and waits for the ticker goroutine.
func (w *Workflow) startProgress() func() {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(w.tick)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				w.update(func(s *State) {
					if s.Status != StatusAnalyzing {
						return
					}
					s.Progress = min(s.Progress+progressStep, progressCap)
				})
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}

func (w *Workflow) update(fn func(*State)) {
	w.mu.Lock()
	fn(&w.state)
	st := w.state
	w.mu.Unlock()
	w.notify(st)
}

func (w *Workflow) notify(st State) {
	if w.onChange != nil {
		w.onChange(st)
	}
}

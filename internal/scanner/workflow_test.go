package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/starford/scanboard/internal/analyzer"
	"github.com/starford/scanboard/internal/apperr"
	"github.com/starford/scanboard/internal/capture"
	"github.com/starford/scanboard/internal/normalize"
)

func testImage(t *testing.T) capture.Image {
	t.Helper()
	img, err := capture.FromBytes([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	return img
}

// blockingAnalyzer waits for release before answering.
type blockingAnalyzer struct {
	started chan struct{}
	release chan struct{}
	err     error
}

func newBlocking() *blockingAnalyzer {
	return &blockingAnalyzer{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (b *blockingAnalyzer) Analyze(ctx context.Context, img capture.Image) (*normalize.RawExtraction, error) {
	b.started <- struct{}{}
	<-b.release
	if b.err != nil {
		return nil, b.err
	}
	return analyzer.Fake{}.Analyze(ctx, img)
}

func TestProcessSuccess(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	w := New(analyzer.Fake{}, normalize.New(nil), WithClock(func() time.Time { return fixed }))

	if err := w.Preview(testImage(t)); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if st := w.State(); st.Status != StatusPreview || !st.HasImage {
		t.Errorf("state = %+v", st)
	}

	scan, img, err := w.Process(context.Background())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if scan.Timestamp != fixed.UnixMilli() || len(scan.Tasks) != 2 {
		t.Errorf("scan = %+v", scan)
	}
	if scan.ImageSource != img.DataURI() {
		t.Error("image source should be the data URI")
	}
	st := w.State()
	if st.Status != StatusDone || st.Progress != 100 || st.Stage != StageFinalize {
		t.Errorf("state = %+v", st)
	}
	if _, ok := w.Pending(); ok {
		t.Error("pending image should be cleared on success")
	}
}

func TestProcessWithoutImage(t *testing.T) {
	w := New(analyzer.Fake{}, normalize.New(nil))
	if _, _, err := w.Process(context.Background()); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestProcessFailureKeepsImage(t *testing.T) {
	w := New(analyzer.Fake{Err: errors.New("network down")}, normalize.New(nil))
	_ = w.Preview(testImage(t))

	_, _, err := w.Process(context.Background())
	if !errors.Is(err, apperr.ErrAnalysis) {
		t.Fatalf("err = %v, want ErrAnalysis", err)
	}
	st := w.State()
	if st.Status != StatusFailed || st.Error != StageFailed || st.Progress != 0 {
		t.Errorf("state = %+v", st)
	}
	if _, ok := w.Pending(); !ok {
		t.Error("pending image should survive failure")
	}
}

func TestProgressTicksAndBusy(t *testing.T) {
	b := newBlocking()
	var mu sync.Mutex
	var seen []int
	w := New(b, normalize.New(nil),
		WithTick(5*time.Millisecond),
		WithNotify(func(s State) {
			mu.Lock()
			seen = append(seen, s.Progress)
			mu.Unlock()
		}))
	_ = w.Preview(testImage(t))

	done := make(chan error, 1)
	go func() {
		_, _, err := w.Process(context.Background())
		done <- err
	}()
	<-b.started

	if _, _, err := w.Process(context.Background()); !errors.Is(err, apperr.ErrBusy) {
		t.Errorf("second Process err = %v, want ErrBusy", err)
	}
	if err := w.Discard(); !errors.Is(err, apperr.ErrBusy) {
		t.Errorf("Discard err = %v, want ErrBusy", err)
	}
	if err := w.Preview(testImage(t)); !errors.Is(err, apperr.ErrBusy) {
		t.Errorf("Preview err = %v, want ErrBusy", err)
	}

	deadline := time.After(2 * time.Second)
	for w.State().Progress < progressCap {
		select {
		case <-deadline:
			t.Fatalf("progress stuck at %d", w.State().Progress)
		case <-time.After(5 * time.Millisecond):
		}
	}
	time.Sleep(30 * time.Millisecond)
	if p := w.State().Progress; p != progressCap {
		t.Errorf("progress = %d, want capped at %d", p, progressCap)
	}

	close(b.release)
	if err := <-done; err != nil {
		t.Fatalf("Process: %v", err)
	}

	mu.Lock()
	n := len(seen)
	mu.Unlock()
	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != n {
		t.Error("ticker kept running after Process returned")
	}
	if seen[len(seen)-1] != 100 {
		t.Errorf("last progress = %d, want 100", seen[len(seen)-1])
	}
}

func TestDiscardAndReset(t *testing.T) {
	w := New(analyzer.Fake{}, normalize.New(nil))
	_ = w.Preview(testImage(t))
	if err := w.Discard(); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if st := w.State(); st.Status != StatusIdle || st.HasImage {
		t.Errorf("state = %+v", st)
	}
	_ = w.Preview(testImage(t))
	_, _, _ = w.Process(context.Background())
	w.Reset()
	if w.State().Status != StatusIdle {
		t.Errorf("status = %s", w.State().Status)
	}
}

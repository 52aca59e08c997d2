// Package analyzer sends captured images to a multimodal model and returns
// the raw structured extraction.
package analyzer

import (
	"context"
	"fmt"

	"github.com/starford/scanboard/internal/apperr"
	"github.com/starford/scanboard/internal/capture"
	"github.com/starford/scanboard/internal/normalize"
)

// Analyzer turns an image into a raw extraction. Every failure wraps
// apperr.ErrAnalysis.
type Analyzer interface {
	Analyze(ctx context.Context, img capture.Image) (*normalize.RawExtraction, error)
}

// Func adapts a function to the Analyzer interface.
type Func func(ctx context.Context, img capture.Image) (*normalize.RawExtraction, error)

// Analyze calls f.
func (f Func) Analyze(ctx context.Context, img capture.Image) (*normalize.RawExtraction, error) {
	return f(ctx, img)
}

// Fake returns a fixed extraction after decoding it from JSON. It is used
// for offline runs and tests.
type Fake struct {
	Response string
	Err      error
}

// DefaultFakeResponse is what Fake returns when Response is empty.
const DefaultFakeResponse = `{
  "summary": "A desk with a notebook and a wall calendar.",
  "itemsDetected": [{"name": "Notebook", "category": "Stationery", "confidence": 0.93}],
  "tasks": [
    {"title": "Submit expense report", "priority": "High"},
    {"title": "Buy printer paper", "priority": "Low"}
  ],
  "events": [{"title": "Team sync", "time": "10:00"}],
  "notes": [{"title": "Reminder", "content": "Water the plants", "tags": ["home"]}]
}`

// Analyze implements Analyzer.
func (f Fake) Analyze(ctx context.Context, _ capture.Image) (*normalize.RawExtraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrAnalysis, err)
	}
	if f.Err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrAnalysis, f.Err)
	}
	resp := f.Response
	if resp == "" {
		resp = DefaultFakeResponse
	}
	raw, err := normalize.DecodeRaw([]byte(resp))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrAnalysis, err)
	}
	return raw, nil
}

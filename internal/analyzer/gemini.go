package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/starford/scanboard/internal/apperr"
	"github.com/starford/scanboard/internal/capture"
	"github.com/starford/scanboard/internal/normalize"
)

// Gemini defaults.
const (
	DefaultEndpoint    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel       = "gemini-2.5-flash"
	DefaultTemperature = 0.4
)

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	Endpoint    string
	Model       string
	APIKey      string
	Temperature float64
	Timeout     time.Duration
}

// Gemini calls the generateContent REST endpoint with a response schema.
type Gemini struct {
	cfg    GeminiConfig
	client *http.Client
}

// NewGemini returns a Gemini client, filling unset fields with defaults.
func NewGemini(cfg GeminiConfig) *Gemini {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Gemini{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

// Analyze implements Analyzer.
func (g *Gemini) Analyze(ctx context.Context, img capture.Image) (*normalize.RawExtraction, error) {
	text, err := g.generate(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrAnalysis, err)
	}
	raw, err := normalize.DecodeRaw([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrAnalysis, err)
	}
	return raw, nil
}

func (g *Gemini) generate(ctx context.Context, img capture.Image) (string, error) {
	reqBody, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{
			{InlineData: &inlineData{MimeType: img.MIME, Data: img.Base64()}},
			{Text: Prompt},
		}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   ResponseSchema,
			Temperature:      g.cfg.Temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(g.cfg.Endpoint, "/") + "/models/" + g.cfg.Model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request to gemini: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	for _, c := range result.Candidates {
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			return sb.String(), nil
		}
	}
	return "", fmt.Errorf("no response from gemini")
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	ResponseSchema   *schema `json:"responseSchema"`
	Temperature      float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

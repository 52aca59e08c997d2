// Package gcal pushes scan events to Google Calendar.
package gcal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/starford/scanboard/internal/apperr"
)

var scopes = []string{calendarapi.CalendarEventsScope}

// LoadConfig reads OAuth client credentials downloaded from the Google
// Cloud console.
func LoadConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("gcal: read credentials %s: %w", credentialsFile, err)
	}
	cfg, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("gcal: parse credentials: %w", err)
	}
	return cfg, nil
}

// AuthURL returns the consent page URL. The code shown after consent is
// passed to Exchange.
func AuthURL(cfg *oauth2.Config) string {
	return cfg.AuthCodeURL("scanboard", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for a token and saves it.
func Exchange(ctx context.Context, cfg *oauth2.Config, code, tokenFile string) (*oauth2.Token, error) {
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("gcal: exchange code: %w", err)
	}
	if err := SaveToken(tokenFile, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// TokenFromFile reads a token saved by SaveToken. A missing file wraps
// apperr.ErrUnauthorized.
func TokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("gcal: no token at %s: %w", path, apperr.ErrUnauthorized)
		}
		return nil, fmt.Errorf("gcal: open token: %w", err)
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("gcal: decode token %s: %w", path, err)
	}
	return tok, nil
}

// SaveToken writes tok as JSON, readable by the owner only.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("gcal: create token dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("gcal: write token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}

// NewService builds an authenticated Calendar API client. Refreshed tokens
// are handled by the oauth2 transport.
func NewService(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token) (*calendarapi.Service, error) {
	srv, err := calendarapi.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("gcal: calendar service: %w", err)
	}
	return srv, nil
}

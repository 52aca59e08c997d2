// Package auth provides the mock sign-in used by scanboard. Any credentials
// are accepted after a short delay.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/starford/scanboard/internal/apperr"
	"github.com/starford/scanboard/internal/models"
)

// DefaultDelay is how long Login takes when no delay is configured.
const DefaultDelay = 1500 * time.Millisecond

// Mode selects how API requests are authorized.
type Mode string

// Access modes.
const (
	ModeDisabled Mode = "disabled"
	ModeToken    Mode = "token"
	ModeSession  Mode = "session"
)

// ParseMode parses s, treating "" as ModeDisabled.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeDisabled, nil
	case ModeDisabled, ModeToken, ModeSession:
		return m, nil
	}
	return "", fmt.Errorf("unknown auth mode %q: %w", s, apperr.ErrInvalidInput)
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string         `json:"token"`
	Profile   models.Profile `json:"profile"`
	StartedAt time.Time      `json:"startedAt"`
}

// Authenticator signs users in.
type Authenticator struct {
	delay    time.Duration
	newToken func() string
	now      func() time.Time
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithDelay sets the simulated sign-in latency.
func WithDelay(d time.Duration) Option {
	return func(a *Authenticator) { a.delay = d }
}

// WithTokenFunc overrides session token generation.
func WithTokenFunc(fn func() string) Option {
	return func(a *Authenticator) { a.newToken = fn }
}

// New returns an Authenticator.
func New(opts ...Option) *Authenticator {
	a := &Authenticator{
		delay:    DefaultDelay,
		newToken: uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Login accepts any credentials once the configured delay has elapsed.
// Only a blank email or a cancelled context fail.
func (a *Authenticator) Login(ctx context.Context, email, _ string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Session{}, fmt.Errorf("email is required: %w", apperr.ErrInvalidInput)
	}
	if a.delay > 0 {
		t := time.NewTimer(a.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Session{}, ctx.Err()
		case <-t.C:
		}
	}

	return Session{
		Token:     a.newToken(),
		Profile:   models.Profile{Name: DisplayName(email), Email: email},
		StartedAt: a.now(),
	}, nil
}

// DisplayName derives a name from the local part of an email address:
// dot-separated segments are capitalized and joined with spaces.
func DisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	parts := strings.Split(local, ".")
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	name := strings.Join(parts, " ")
	if strings.TrimSpace(name) == "" {
		return "User"
	}
	return name
}

// Initials returns up to two upper-case initials of name.
func Initials(name string) string {
	var b strings.Builder
	for _, w := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
		if utf8.RuneCountInString(b.String()) == 2 {
			break
		}
	}
	return b.String()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

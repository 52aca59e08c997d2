package app

import (
	"log/slog"
	"time"

	"github.com/starford/scanboard/internal/archive"
	"github.com/starford/scanboard/internal/auth"
	"github.com/starford/scanboard/internal/capture"
	"github.com/starford/scanboard/internal/models"
	"github.com/starford/scanboard/internal/normalize"
)

// Option configures a Service.
type Option func(*Service)

// WithAuthenticator sets the sign-in provider.
func WithAuthenticator(a *auth.Authenticator) Option {
	return func(s *Service) { s.auth = a }
}

// WithMirror persists every store mutation to m and restores from it on start.
func WithMirror(m archive.Mirror) Option {
	return func(s *Service) { s.mirror = m }
}

// WithBlobs stores captured images as files instead of inline data URIs.
func WithBlobs(b *capture.Blobs) Option {
	return func(s *Service) { s.blobs = b }
}

// WithNotifier publishes change events to n.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock sets the clock used for capture timestamps and the calendar.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDFunc sets the identifier source used by the normalizer.
func WithIDFunc(fn normalize.IDFunc) Option {
	return func(s *Service) { s.newID = fn }
}

// WithProgressTick sets the analysis progress interval.
func WithProgressTick(d time.Duration) Option {
	return func(s *Service) { s.progressTick = d }
}

// WithProfile sets the initial profile.
func WithProfile(p models.Profile) Option {
	return func(s *Service) { s.profile = p }
}

package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/scanboard/internal/auth"
)

// Analyzer providers.
const (
	ProviderGemini = "gemini"
	ProviderFake   = "fake"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Data     DataConfig        `yaml:"data"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth"`
	Analyzer AnalyzerConfig    `yaml:"analyzer"`
	Inbox    InboxConfig       `yaml:"inbox"`
	SSE      SSEConfig         `yaml:"sse"`
	GCal     GCalConfig        `yaml:"gcal"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return errors.Join(
		c.App.Validate(),
		c.Auth.Validate(),
		c.Analyzer.Validate(),
		c.SSE.Validate(),
		c.GCal.Validate(),
	)
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DataConfig holds the directory for captured images and exported notes.
// Empty keeps images inline in each scan.
type DataConfig struct {
	Dir string `yaml:"dir"`
}

// SQLiteConfig holds the scan archive location. Empty disables the archive
// and scans live in memory only.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether the archive is configured.
func (c *SQLiteConfig) Enabled() bool { return c.Path != "" }

// AuthConfig holds authentication configuration.
//
// Mode controls how API requests are authorized:
//   - "disabled" (default): no checks, suitable for local use.
//   - "token": static Bearer token; Token must be non-empty.
//   - "session": Bearer must equal the token issued by the last sign-in.
type AuthConfig struct {
	Mode       string        `yaml:"mode"`
	Token      string        `yaml:"token"`
	LoginDelay time.Duration `yaml:"login_delay"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	mode, err := auth.ParseMode(c.Mode)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	c.Mode = string(mode)
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LoginDelay, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}
	if mode == auth.ModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", auth.ModeToken)
	}
	return nil
}

// AccessMode returns the parsed mode. Call after Validate.
func (c *AuthConfig) AccessMode() auth.Mode {
	return auth.Mode(c.Mode)
}

// AnalyzerConfig selects and configures the image analysis backend.
type AnalyzerConfig struct {
	Provider    string        `yaml:"provider"`
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	// FakeResponse overrides the canned extraction of the fake provider.
	FakeResponse string `yaml:"fake_response"`
}

// Validate validates the analyzer configuration.
func (c *AnalyzerConfig) Validate() error {
	if c.Provider == "" {
		c.Provider = ProviderGemini
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.In(ProviderGemini, ProviderFake)),
		validation.Field(&c.Temperature, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}
	if c.Provider == ProviderGemini && c.APIKey == "" {
		return fmt.Errorf("analyzer: provider is %q but api_key is empty", ProviderGemini)
	}
	return nil
}

// InboxConfig holds the watched directory for auto-scanning new images.
// Empty disables the watcher.
type InboxConfig struct {
	Path string `yaml:"path"`
}

// SSEConfig holds change notification settings.
type SSEConfig struct {
	Throttle time.Duration `yaml:"throttle"`
}

// Validate validates the SSE configuration.
func (c *SSEConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Min(time.Duration(0))),
	)
}

// GCalConfig configures the Google Calendar export.
type GCalConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Calendar        string `yaml:"calendar"`
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
}

// Validate validates the Google Calendar configuration.
func (c *GCalConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.CredentialsFile, validation.Required),
		validation.Field(&c.TokenFile, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Auth: AuthConfig{
			Mode:       string(auth.ModeDisabled),
			LoginDelay: auth.DefaultDelay,
		},
		Analyzer: AnalyzerConfig{
			Provider: ProviderFake,
			Timeout:  60 * time.Second,
		},
		SSE: SSEConfig{
			Throttle: 2 * time.Second,
		},
		GCal: GCalConfig{
			Calendar: "primary",
		},
	}
}

package capture

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/scanboard/internal/apperr"
)

// Fetcher downloads images over HTTP(S), refusing loopback, private and
// cloud metadata hosts.
type Fetcher struct {
	client    *http.Client
	allowHost func(host string) error
}

// NewFetcher returns a Fetcher with a 30 second timeout and at most five redirects.
func NewFetcher() *Fetcher {
	f := &Fetcher{allowHost: checkBlockedHost}
	f.client = &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			return f.allowHost(req.URL.Hostname())
		},
	}
	return f
}

// Load accepts either a data URI or an http(s) URL.
func (f *Fetcher) Load(ctx context.Context, raw string) (Image, error) {
	if strings.HasPrefix(strings.TrimSpace(raw), "data:") {
		return FromDataURI(raw)
	}
	return f.Fetch(ctx, raw)
}

// Fetch downloads the image at rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Image, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Image{}, fmt.Errorf("capture: invalid URL: %v: %w", err, apperr.ErrInvalidInput)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Image{}, fmt.Errorf("capture: unsupported scheme %q (only http/https): %w", parsed.Scheme, apperr.ErrInvalidInput)
	}
	if err := f.allowHost(parsed.Hostname()); err != nil {
		return Image{}, fmt.Errorf("capture: %v: %w", err, apperr.ErrInvalidInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Image{}, fmt.Errorf("capture: create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("capture: download failed: %v: %w", err, apperr.ErrDeviceAccess)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("capture: download failed: HTTP %d: %w", resp.StatusCode, apperr.ErrDeviceAccess)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageSize+1))
	if err != nil {
		return Image{}, fmt.Errorf("capture: read body: %w", err)
	}
	return FromBytes(data)
}

// checkBlockedHost rejects loopback, private, link-local, unspecified and
// cloud metadata addresses. Every resolved address of a name is checked.
func checkBlockedHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host: %s", host)
	}

	ips := []net.IP{net.ParseIP(host)}
	if ips[0] == nil {
		resolved, lookupErr := net.LookupIP(host)
		if lookupErr != nil || len(resolved) == 0 {
			return nil //nolint:nilerr // let http.Client handle DNS failures
		}
		ips = resolved
	}

	for _, ip := range ips {
		switch {
		case ip.IsLoopback():
			return fmt.Errorf("blocked host: loopback address %s", host)
		case ip.IsPrivate():
			return fmt.Errorf("blocked host: private address %s", host)
		case ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast():
			return fmt.Errorf("blocked host: link-local address %s", host)
		case ip.IsUnspecified():
			return fmt.Errorf("blocked host: unspecified address %s", host)
		}
	}
	return nil
}

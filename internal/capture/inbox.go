package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/scanboard/internal/apperr"
)

// settleDelay is how long a file must stay quiet before it is picked up.
const settleDelay = 300 * time.Millisecond

// HandleFunc receives an image that appeared in the inbox. A file whose
// handler fails is retried on its next event.
type HandleFunc func(ctx context.Context, img Image, path string) error

// Inbox watches a directory and hands every new image file to a callback.
type Inbox struct {
	dir    string
	logger *slog.Logger
}

// NewInbox returns an inbox on dir. An inaccessible directory is a device
// access failure; callers fall back to uploads.
func NewInbox(dir string, logger *slog.Logger) (*Inbox, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("capture: inbox %s: %v: %w", dir, err, apperr.ErrDeviceAccess)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("capture: inbox %s is not a directory: %w", dir, apperr.ErrDeviceAccess)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Inbox{dir: dir, logger: logger}, nil
}

// Dir returns the watched directory.
func (in *Inbox) Dir() string { return in.dir }

// Run watches the inbox until ctx is cancelled. The watcher is released on
// every return path.
func (in *Inbox) Run(ctx context.Context, handle HandleFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("capture: inbox watcher: %v: %w", err, apperr.ErrDeviceAccess)
	}
	defer w.Close()

	if err := w.Add(in.dir); err != nil {
		return fmt.Errorf("capture: watch %s: %v: %w", in.dir, err, apperr.ErrDeviceAccess)
	}
	in.logger.Info("inbox: started", slog.String("dir", in.dir))

	pending := make(map[string]struct{})
	seen := make(map[string]string)

	var settle *time.Timer
	var settleCh <-chan time.Time
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			in.logger.Info("inbox: stopped")
			return nil

		case <-settleCh:
			for p := range pending {
				in.pickUp(ctx, p, seen, handle)
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !isImageName(ev.Name) {
				continue
			}
			pending[ev.Name] = struct{}{}
			if settle == nil {
				settle = time.NewTimer(settleDelay)
				settleCh = settle.C
			} else {
				settle.Reset(settleDelay)
			}

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			in.logger.Error("inbox: watcher error", slog.String("error", werr.Error()))
		}
	}
}

func (in *Inbox) pickUp(ctx context.Context, p string, seen map[string]string, handle HandleFunc) {
	img, err := FromFile(p)
	if err != nil {
		in.logger.Warn("inbox: skip file", slog.String("path", p), slog.String("error", err.Error()))
		return
	}
	if seen[p] == img.Checksum {
		return
	}
	in.logger.Debug("inbox: picked up", slog.String("path", p), slog.String("mime", img.MIME))
	if err := handle(ctx, img, p); err != nil {
		return
	}
	seen[p] = img.Checksum
}

func isImageName(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return true
	}
	return false
}

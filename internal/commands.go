package internal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/scanboard/internal/capture"
	"github.com/starford/scanboard/internal/export"
	"github.com/starford/scanboard/internal/gcal"
	"github.com/starford/scanboard/internal/mcpserver"
	"github.com/starford/scanboard/internal/tui"
)

// RunMCP serves the MCP tools over stdio.
func RunMCP(ctx context.Context, opts ...Option) error {
	c, err := start(ctx, opts)
	if err != nil {
		return err
	}
	defer c.Close()

	c.logger.Info("MCP server starting on stdio")
	return mcpserver.New(c.svc, c.fetcher).ServeStdio()
}

// RunTUI runs the terminal client in-process.
func RunTUI(ctx context.Context, opts ...Option) error {
	c, err := start(ctx, opts)
	if err != nil {
		return err
	}
	defer c.Close()

	m := tui.New(c.svc, tui.WithSyncer(syncFunc(c)))
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func syncFunc(c *components) tui.SyncFunc {
	if c.syncer == nil {
		return nil
	}
	return func(ctx context.Context) (gcal.Result, error) {
		return c.syncer.Sync(ctx, c.svc.AllEvents())
	}
}

// ScanFiles analyzes each image file and prints a one-line summary per scan.
func ScanFiles(ctx context.Context, w io.Writer, paths []string, opts ...Option) error {
	c, err := start(ctx, opts)
	if err != nil {
		return err
	}
	defer c.Close()

	for _, p := range paths {
		img, err := capture.FromFile(p)
		if err != nil {
			return err
		}
		scan, err := c.svc.Scan(ctx, img)
		if err != nil {
			return fmt.Errorf("scan %s: %w", p, err)
		}
		fmt.Fprintf(w, "%s\t%s\t%d tasks\t%d events\t%d notes\t%s\n",
			scan.ID, p, len(scan.Tasks), len(scan.Events), len(scan.Notes), scan.Summary)
	}
	return nil
}

// Export writes every stored scan to w in the given format. The markdown
// format additionally writes one note file per note under the data dir.
func Export(ctx context.Context, w io.Writer, format string, opts ...Option) error {
	f, ok := export.ParseFormat(format)
	if !ok {
		return fmt.Errorf("unknown export format %q", format)
	}
	c, err := start(ctx, opts)
	if err != nil {
		return err
	}
	defer c.Close()

	scans := c.svc.ListScans()
	if f == export.FormatMarkdown && c.data != nil {
		written, err := export.WriteNotes(c.data, scans)
		if err != nil {
			return err
		}
		c.logger.Info("notes exported",
			slog.String("dir", c.data.Root()),
			slog.Int("written", len(written)))
	}
	return export.Write(w, f, scans, time.Now())
}

// AuthorizeCalendar runs the OAuth consent flow in the terminal and stores
// the token where calendar sync expects it.
func AuthorizeCalendar(ctx context.Context, in io.Reader, out io.Writer, opts ...Option) error {
	a, err := setup(opts)
	if err != nil {
		return err
	}
	gc := a.config.GCal
	if gc.CredentialsFile == "" || gc.TokenFile == "" {
		return fmt.Errorf("gcal: credentials_file and token_file must be configured")
	}
	oc, err := gcal.LoadConfig(gc.CredentialsFile)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Open this URL, grant access and paste the code:\n%s\n> ", gcal.AuthURL(oc))

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("gcal: read code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("gcal: empty authorization code")
	}
	if _, err := gcal.Exchange(ctx, oc, code, gc.TokenFile); err != nil {
		return err
	}
	fmt.Fprintf(out, "Token saved to %s\n", gc.TokenFile)
	return nil
}

func start(ctx context.Context, opts []Option) (*components, error) {
	a, err := setup(opts)
	if err != nil {
		return nil, err
	}
	return build(ctx, a.config, newLogger(a.config, a.logOutput))
}


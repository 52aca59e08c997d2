// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes scanboard tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/scanboard/internal/app"
	"github.com/starford/scanboard/internal/calendar"
	"github.com/starford/scanboard/internal/capture"
	"github.com/starford/scanboard/internal/tasks"
)

// Server wraps the MCP server with scanboard tools.
type Server struct {
	mcp     *server.MCPServer
	svc     *app.Service
	fetcher *capture.Fetcher
}

// New creates a new MCP server with all scanboard tools registered.
func New(svc *app.Service, fetcher *capture.Fetcher) *Server {
	if fetcher == nil {
		fetcher = capture.NewFetcher()
	}
	s := &Server{svc: svc, fetcher: fetcher}

	s.mcp = server.NewMCPServer(
		"Scanboard",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_scans",
		mcp.WithDescription("List stored scans, newest first, with their summaries and item counts."),
	), s.listScans)

	s.mcp.AddTool(mcp.NewTool("get_scan",
		mcp.WithDescription("Return one scan with all of its tasks, events, notes and detected items."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Scan identifier")),
	), s.getScan)

	s.mcp.AddTool(mcp.NewTool("dashboard_stats",
		mcp.WithDescription("Total tasks, total events and scan count across all scans, plus recent activity."),
	), s.dashboardStats)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("Tasks of the active scan as shown in the results view."),
		mcp.WithString("filter", mcp.Description("all, pending or completed (default all)")),
		mcp.WithString("sort", mcp.Description("deadline, priority or title (default deadline)")),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("calendar_day",
		mcp.WithDescription("Events of every scan that fall on one day."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day in YYYY-MM-DD format")),
	), s.calendarDay)

	s.mcp.AddTool(mcp.NewTool("scan_image",
		mcp.WithDescription("Analyze an image and store the extracted tasks, events and notes as a new scan. "+
			"Read the scanboard://extraction-schema resource for the shape of the result."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data URI of a png, jpeg, gif or webp image")),
	), s.scanImage)

	s.mcp.AddTool(mcp.NewTool("search_scans",
		mcp.WithDescription("Full-text search through scan summaries, tasks, events and notes."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchScans)

	s.mcp.AddResource(
		mcp.NewResource(ExtractionSchemaURI, "Extraction Contract",
			mcp.WithResourceDescription("Shape of the data extracted from every analyzed image."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readExtractionSchema,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

type scanSummary struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Summary   string `json:"summary"`
	Tasks     int    `json:"tasks"`
	Events    int    `json:"events"`
	Notes     int    `json:"notes"`
}

func (s *Server) listScans(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scans := s.svc.ListScans()
	out := make([]scanSummary, 0, len(scans))
	for _, sc := range scans {
		out = append(out, scanSummary{
			ID:        sc.ID,
			Timestamp: sc.Timestamp,
			Summary:   sc.Summary,
			Tasks:     len(sc.Tasks),
			Events:    len(sc.Events),
			Notes:     len(sc.Notes),
		})
	}
	return jsonResult(out)
}

func (s *Server) getScan(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scan, err := s.svc.GetScan(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	// Inline images are large and of no use to a language model.
	if !capture.IsBlobRef(scan.ImageSource) {
		scan.ImageSource = ""
	}
	return jsonResult(scan)
}

func (s *Server) dashboardStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d := s.svc.Dashboard()
	return jsonResult(map[string]any{
		"stats":    d.Stats,
		"activity": d.Activity,
	})
}

func (s *Server) listTasks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, err := tasks.ParseFilter(req.GetString("filter", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	srt, err := tasks.ParseSort(req.GetString("sort", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.svc.Tasks(f, srt)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(view)
}

func (s *Server) calendarDay(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, ok := calendar.ParseDate(raw)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unparseable date: %s", raw)), nil
	}
	return jsonResult(map[string]any{
		"date":   d,
		"events": s.svc.EventsOn(d),
	})
}

func (s *Server) scanImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	img, err := s.fetcher.Load(ctx, rawURL)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scan, err := s.svc.Scan(ctx, img)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !capture.IsBlobRef(scan.ImageSource) {
		scan.ImageSource = ""
	}
	return jsonResult(scan)
}

func (s *Server) searchScans(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) readExtractionSchema(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ExtractionSchemaURI,
			MIMEType: "text/markdown",
			Text:     extractionContract(),
		},
	}, nil
}

// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the widget for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/dynwidget/internal/present"
	"github.com/starford/dynwidget/internal/widget"
	"github.com/starford/dynwidget/internal/widgetservice"
)

// Render formats accepted by render_widget.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatHTML = "html"
)

// Server wraps the MCP server with widget tools.
type Server struct {
	mcp *server.MCPServer
	svc *widgetservice.Service
}

// New creates a new MCP server with all widget tools registered.
func New(svc *widgetservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"dynwidget",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("render_widget",
		mcp.WithDescription("Render the sidebar for the active note: its classification and the related notes grouped by bucket."),
		mcp.WithString("format",
			mcp.Description("Output format (default text)"),
			mcp.Enum(FormatText, FormatJSON, FormatHTML),
		),
	), s.renderWidget)

	s.mcp.AddTool(mcp.NewTool("set_active_document",
		mcp.WithDescription("Focus a note by vault-relative path and return the re-rendered sidebar. "+
			"An empty path clears the focus."),
		mcp.WithString("path", mcp.Description("Relative path to the note (e.g. Inbox/groceries.md)")),
	), s.setActiveDocument)

	s.mcp.AddTool(mcp.NewTool("find_by_area",
		mcp.WithDescription("List notes whose area or areas frontmatter contains the given area."),
		mcp.WithString("area", mcp.Required(), mcp.Description("Area name, with or without [[ ]]")),
	), s.findByArea)

	s.mcp.AddTool(mcp.NewTool("find_by_day",
		mcp.WithDescription("List notes created or modified on a calendar day, newest first."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day as YYYY-MM-DD")),
		mcp.WithString("by",
			mcp.Description("Timestamp to match (default created)"),
			mcp.Enum(string(widget.ByCreated), string(widget.ByModified)),
		),
	), s.findByDay)

	s.mcp.AddTool(mcp.NewTool("list_buckets",
		mcp.WithDescription("List the configured folder buckets in display order with the notes each one claims."),
	), s.listBuckets)

	s.mcp.AddTool(mcp.NewTool("get_conventions",
		mcp.WithDescription("Returns the frontmatter and naming conventions the sidebar relies on."),
	), s.getConventions)

	s.mcp.AddResource(
		mcp.NewResource(ConventionsURI, "Widget Conventions",
			mcp.WithResourceDescription("How areas, day notes, buckets and titles drive the sidebar."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readConventionsResource,
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

func (s *Server) render(ctx context.Context, format string) (*mcp.CallToolResult, error) {
	switch format {
	case FormatJSON:
		return jsonResult(s.svc.Snapshot(ctx))
	case FormatHTML:
		html, err := s.svc.HTML(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(html), nil
	default:
		return mcp.NewToolResultText(present.Text(s.svc.Snapshot(ctx).Tree, present.PlainTheme())), nil
	}
}

func (s *Server) renderWidget(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.render(ctx, req.GetString("format", FormatText))
}

func (s *Server) setActiveDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if path == "" {
		s.svc.ClearActive(ctx)
		return s.render(ctx, FormatText)
	}
	if _, err := s.svc.SetActive(ctx, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.render(ctx, FormatText)
}

func (s *Server) findByArea(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	area, err := req.RequireString("area")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := s.svc.FindByArea(ctx, area)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items)
}

func (s *Server) findByDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	by := widget.Which(req.GetString("by", string(widget.ByCreated)))
	items, err := s.svc.FindByDay(ctx, date, by)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items)
}

func (s *Server) listBuckets(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Buckets(ctx))
}

func (s *Server) getConventions(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(Conventions), nil
}

func (s *Server) readConventionsResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ConventionsURI,
			MIMEType: "text/markdown",
			Text:     Conventions,
		},
	}, nil
}

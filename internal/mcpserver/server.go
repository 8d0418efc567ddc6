// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the converted archive to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/arlberg/slack2md/internal/index"
	"github.com/arlberg/slack2md/internal/storage"
)

// Server wraps the MCP server with archive tools.
type Server struct {
	mcp     *server.MCPServer
	archive index.Archive
	store   storage.Provider // rooted at the archive output directory
}

// New creates a new MCP server with all archive tools registered.
func New(archive index.Archive, store storage.Provider) *Server {
	s := &Server{archive: archive, store: store}

	s.mcp = server.NewMCPServer(
		"slack2md",
		"1.0.0",
	)

	s.mcp.AddTool(mcp.NewTool("search_messages",
		mcp.WithDescription("Full-text search through archived channel messages."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchMessages)

	s.mcp.AddTool(mcp.NewTool("read_log",
		mcp.WithDescription("Read the full Markdown content of one converted log document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document path (e.g. general/2019-10-31.md)")),
	), s.readLog)

	s.mcp.AddTool(mcp.NewTool("list_channels",
		mcp.WithDescription("List archived channels with document and message counts."),
	), s.listChannels)

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

func (s *Server) searchMessages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.archive.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listChannels(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	channels, err := s.archive.Channels()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(channels, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

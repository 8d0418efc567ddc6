package mcpserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/arlberg/slack2md/internal/index"
	"github.com/arlberg/slack2md/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	db := testutil.TestDB(t)
	dstDir, dst := testutil.TestTree(t)

	testutil.WriteFile(t, dstDir, "general/2019-10-31.md", "# 2019-10-31\n\nrows here\n")
	err := db.UpsertDocument(index.DocRow{
		Path:      "general/2019-10-31.md",
		Channel:   "general",
		Name:      "2019-10-31",
		UpdatedAt: time.Now().UTC(),
	}, []index.MessageRow{
		{TS: "1572480000.000000", Day: "2019-10-31", Username: "alice", Text: "release shipped"},
	})
	if err != nil {
		t.Fatal(err)
	}

	return New(db, dst)
}

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if len(r.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := r.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", r.Content[0])
	}
	return tc.Text
}

func TestListChannelsTool(t *testing.T) {
	srv := testServer(t)
	res, err := srv.listChannels(context.Background(), toolRequest("list_channels", nil))
	if err != nil {
		t.Fatalf("list_channels: %v", err)
	}
	if text := resultText(t, res); !strings.Contains(text, "general") {
		t.Errorf("text = %q", text)
	}
}

func TestSearchMessagesTool(t *testing.T) {
	srv := testServer(t)
	res, err := srv.searchMessages(context.Background(), toolRequest("search_messages", map[string]any{"query": "release"}))
	if err != nil {
		t.Fatalf("search_messages: %v", err)
	}
	if text := resultText(t, res); !strings.Contains(text, "general/2019-10-31.md") {
		t.Errorf("text = %q", text)
	}
}

func TestReadLogTool(t *testing.T) {
	srv := testServer(t)
	res, err := srv.readLog(context.Background(), toolRequest("read_log", map[string]any{"path": "general/2019-10-31.md"}))
	if err != nil {
		t.Fatalf("read_log: %v", err)
	}
	if text := resultText(t, res); !strings.HasPrefix(text, "# 2019-10-31") {
		t.Errorf("text = %q", text)
	}
}

func TestReadLogTool_NotFound(t *testing.T) {
	srv := testServer(t)
	res, err := srv.readLog(context.Background(), toolRequest("read_log", map[string]any{"path": "nope.md"}))
	if err != nil {
		t.Fatalf("read_log: %v", err)
	}
	if !res.IsError {
		t.Error("expected error result for missing document")
	}
}

package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/dynwidget/internal/testutil"
	"github.com/starford/dynwidget/internal/widgetservice"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	v, w := testutil.TestHost(t, map[string]string{
		"Inbox/shoes.md":        "---\ntitle: Buy shoes\narea: Health\n---\n",
		"Goals/marathon.md":     "---\nareas: [\"[[Health]]\"]\n---\n",
		"Archive/old.md":        "---\narea: Health\n---\n",
		"Journal/2025-07-15.md": "day\n",
	}, []string{"Inbox", "Goals"})
	return New(widgetservice.NewService(v, w), "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process "call tool" helper, so handlers are called directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "render_widget":
		result, err = srv.renderWidget(ctx, req)
	case "set_active_document":
		result, err = srv.setActiveDocument(ctx, req)
	case "find_by_area":
		result, err = srv.findByArea(ctx, req)
	case "find_by_day":
		result, err = srv.findByDay(ctx, req)
	case "list_buckets":
		result, err = srv.listBuckets(ctx, req)
	case "get_conventions":
		result, err = srv.getConventions(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestRenderWidget_NoActive(t *testing.T) {
	srv := testServer(t)
	text := resultText(callTool(t, srv, "render_widget", map[string]interface{}{}))
	if text != "No file is currently active\n" {
		t.Errorf("render = %q", text)
	}
}

func TestSetActiveDocument(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "set_active_document", map[string]interface{}{"path": "Goals/marathon.md"})
	if r.IsError {
		t.Fatalf("error: %s", resultText(r))
	}
	want := "Health\n\nInbox\n  - Buy shoes\n\nGoals\n  - marathon (active)\n"
	if got := resultText(r); got != want {
		t.Errorf("render =\n%q\nwant\n%q", got, want)
	}

	r = callTool(t, srv, "render_widget", map[string]interface{}{"format": "json"})
	var snap widgetservice.Snapshot
	if err := json.Unmarshal([]byte(resultText(r)), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Mode != "areas" || snap.Active == nil || snap.Active.Path != "Goals/marathon.md" {
		t.Errorf("snapshot = %+v", snap)
	}

	r = callTool(t, srv, "render_widget", map[string]interface{}{"format": "html"})
	if !strings.Contains(resultText(r), `<h2>Health</h2>`) {
		t.Errorf("html = %s", resultText(r))
	}

	r = callTool(t, srv, "set_active_document", map[string]interface{}{})
	if resultText(r) != "No file is currently active\n" {
		t.Errorf("after clear = %q", resultText(r))
	}
}

func TestSetActiveDocumentMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "set_active_document", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestFindByArea(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "find_by_area", map[string]interface{}{"area": "Health"})
	var items []widgetservice.DocumentItem
	if err := json.Unmarshal([]byte(resultText(r)), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Errorf("items = %+v", items)
	}

	if r := callTool(t, srv, "find_by_area", map[string]interface{}{}); !r.IsError {
		t.Error("expected error without area")
	}
}

func TestFindByDay_InvalidArguments(t *testing.T) {
	srv := testServer(t)
	if r := callTool(t, srv, "find_by_day", map[string]interface{}{"date": "yesterday"}); !r.IsError {
		t.Error("expected error for malformed date")
	}
	if r := callTool(t, srv, "find_by_day", map[string]interface{}{"date": "2025-07-15", "by": "accessed"}); !r.IsError {
		t.Error("expected error for unknown timestamp")
	}
	r := callTool(t, srv, "find_by_day", map[string]interface{}{"date": "1999-01-01"})
	if r.IsError || strings.TrimSpace(resultText(r)) != "[]" {
		t.Errorf("empty day = %q", resultText(r))
	}
}

func TestListBuckets(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "list_buckets", nil)
	var buckets []widgetservice.BucketSummary
	if err := json.Unmarshal([]byte(resultText(r)), &buckets); err != nil {
		t.Fatal(err)
	}
	if len(buckets) != 2 || buckets[0].Bucket != "Inbox" || buckets[1].Documents[0] != "Goals/marathon.md" {
		t.Errorf("buckets = %+v", buckets)
	}
}

func TestGetConventions(t *testing.T) {
	srv := testServer(t)
	if text := resultText(callTool(t, srv, "get_conventions", nil)); !strings.Contains(text, "areas") {
		t.Errorf("conventions = %q", text)
	}
}

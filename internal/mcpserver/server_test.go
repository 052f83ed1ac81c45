package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/laguz/internal/field"
	"github.com/starford/laguz/internal/field/builtin"
	"github.com/starford/laguz/internal/index"
	"github.com/starford/laguz/internal/storage"
)

func testServer(t *testing.T) (*Server, storage.Provider) {
	t.Helper()

	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "laguz-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	fields := field.New(db.Conn(), nil)
	if err := builtin.RegisterAll(fields, nil); err != nil {
		t.Fatal(err)
	}

	srv := New(store, db, fields)
	return srv, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// Find the handler via the MCPServer's tool list. We call the handler directly.
	// Since mcp-go doesn't expose a direct "call tool" test helper, we test
	// through the tool handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "get_backlinks":
		result, err = srv.getBacklinks(ctx, req)
	case "list_fields":
		result, err = srv.listFields(ctx, req)
	case "get_field":
		result, err = srv.getField(ctx, req)
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

func TestCreateAndReadNote(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{
		"path":    "test.md",
		"content": "# Test\nHello",
	})
	text := resultText(r)
	if text != "created: test.md" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "read_note", map[string]interface{}{
		"path": "test.md",
	})
	text = resultText(r)
	if text != "# Test\nHello" {
		t.Errorf("read result = %q", text)
	}
}

func TestListNotes(t *testing.T) {
	srv, store := testServer(t)
	_ = store.Write("a.md", []byte("a"))
	_ = store.Write("b.md", []byte("b"))

	r := callTool(t, srv, "list_notes", map[string]interface{}{})
	text := resultText(r)
	if text == "" {
		t.Error("list returned empty")
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestGetBacklinks(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "create_note", map[string]interface{}{
		"path":    "a.md",
		"content": "links to [[b]]",
	})

	r := callTool(t, srv, "get_backlinks", map[string]interface{}{"path": "b"})
	text := resultText(r)
	if text != "a.md" {
		t.Errorf("backlinks = %q, want a.md", text)
	}
}

func TestListFields(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_fields", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "word_count") {
		t.Errorf("list_fields = %q, want word_count listed", text)
	}
}

func TestGetField(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "create_note", map[string]interface{}{
		"path":    "counted.md",
		"content": "one two three four",
	})

	r := callTool(t, srv, "get_field", map[string]interface{}{
		"path":  "counted.md",
		"field": "word_count",
	})
	if r.IsError {
		t.Fatalf("get_field error: %q", resultText(r))
	}
	var out struct {
		Field  string `json:"field"`
		Values []any  `json:"values"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Field != "word_count" {
		t.Errorf("field = %q", out.Field)
	}
	if len(out.Values) != 1 || out.Values[0] != float64(4) {
		t.Errorf("values = %v, want [4]", out.Values)
	}
}

func TestGetField_Unknown(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "create_note", map[string]interface{}{
		"path":    "x.md",
		"content": "body",
	})
	r := callTool(t, srv, "get_field", map[string]interface{}{
		"path":  "x.md",
		"field": "nonsense",
	})
	if !r.IsError {
		t.Error("expected error for unknown field")
	}
}

func TestGetField_NotIndexed(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_field", map[string]interface{}{
		"path":  "missing.md",
		"field": "word_count",
	})
	if !r.IsError {
		t.Error("expected error for unindexed note")
	}
}

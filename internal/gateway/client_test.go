package gateway

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

// fakeSession scripts ListTools pages and records CallTool requests.
type fakeSession struct {
	pages     []*mcp.ListToolsResult
	pageIndex int
	callReply *mcp.CallToolResult
	callErr   error
	calls     []mcp.CallToolRequest
	closed    bool
}

func (f *fakeSession) Start(ctx context.Context) error { return nil }

func (f *fakeSession) Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error) {
	return &mcp.InitializeResult{}, nil
}

func (f *fakeSession) ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error) {
	if f.pageIndex >= len(f.pages) {
		return nil, fmt.Errorf("no page scripted for cursor %q", req.Params.Cursor)
	}
	page := f.pages[f.pageIndex]
	f.pageIndex++
	return page, nil
}

func (f *fakeSession) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f.calls = append(f.calls, req)
	return f.callReply, f.callErr
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func newTestClient(t *testing.T, sess *fakeSession, maxPages int) *Client {
	t.Helper()
	client, err := New(Config{URL: "https://gateway.test/mcp", Token: "tok", MaxPages: maxPages},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithSessionFactory(func() (rpcSession, error) { return sess, nil }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func listPage(cursor mcp.Cursor, names ...string) *mcp.ListToolsResult {
	res := &mcp.ListToolsResult{}
	res.NextCursor = cursor
	for _, name := range names {
		res.Tools = append(res.Tools, mcp.Tool{Name: name, Description: name + " tool"})
	}
	return res
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "complete", cfg: Config{URL: "https://g", Token: "t"}},
		{name: "missing url", cfg: Config{Token: "t"}, wantErr: true},
		{name: "missing token", cfg: Config{URL: "https://g"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestListToolsSinglePage(t *testing.T) {
	sess := &fakeSession{pages: []*mcp.ListToolsResult{
		listPage("", "requirementsExtractor", "costEstimator"),
	}}
	client := newTestClient(t, sess, 0)

	tools, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("got %d tools", len(tools))
	}
	if tools[0].Name != "requirementsExtractor" {
		t.Errorf("tools[0] = %q", tools[0].Name)
	}
	if !sess.closed {
		t.Errorf("session not closed")
	}
}

func TestListToolsFollowsCursors(t *testing.T) {
	sess := &fakeSession{pages: []*mcp.ListToolsResult{
		listPage("page2", "a"),
		listPage("page3", "b"),
		listPage("", "c"),
	}}
	client := newTestClient(t, sess, 0)

	tools, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(tools) != 3 {
		t.Fatalf("got %d tools, want 3", len(tools))
	}
}

func TestListToolsStopsOnRepeatedCursor(t *testing.T) {
	// a server that keeps handing back the same cursor must not loop
	sess := &fakeSession{pages: []*mcp.ListToolsResult{
		listPage("stuck", "a"),
		listPage("stuck", "b"),
	}}
	client := newTestClient(t, sess, 0)

	tools, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("got %d tools, want 2", len(tools))
	}
	if sess.pageIndex != 2 {
		t.Errorf("fetched %d pages, want 2", sess.pageIndex)
	}
}

func TestListToolsPageCeiling(t *testing.T) {
	pages := make([]*mcp.ListToolsResult, 10)
	for i := range pages {
		pages[i] = listPage(mcp.Cursor(fmt.Sprintf("page%d", i+1)), fmt.Sprintf("tool%d", i))
	}
	sess := &fakeSession{pages: pages}
	client := newTestClient(t, sess, 3)

	_, err := client.ListTools(context.Background())
	if err == nil {
		t.Fatalf("expected page ceiling error")
	}
	if !strings.Contains(err.Error(), "3 pages") {
		t.Errorf("error = %v", err)
	}
}

func TestCallToolManglesNameAndMintsCallID(t *testing.T) {
	sess := &fakeSession{callReply: &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: `{"statusCode": 200, "body": {"ok": true}}`},
		},
	}}
	client := newTestClient(t, sess, 0)

	res1, err := client.CallTool(context.Background(), "requirementsExtractor", map[string]any{"document": "x"})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	res2, err := client.CallTool(context.Background(), "requirementsExtractor", map[string]any{"document": "x"})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}

	if len(sess.calls) != 2 {
		t.Fatalf("recorded %d calls", len(sess.calls))
	}
	if got := sess.calls[0].Params.Name; got != "requirementsExtractor___requirementsExtractor" {
		t.Errorf("wire name = %q", got)
	}

	if !strings.HasPrefix(res1.CallID, "tool_use_") {
		t.Errorf("call id = %q", res1.CallID)
	}
	if res1.CallID == res2.CallID {
		t.Errorf("call ids not unique: %q", res1.CallID)
	}
	if !res1.OK() {
		t.Errorf("result not OK: %+v", res1)
	}
}

func TestCallToolTransportError(t *testing.T) {
	sess := &fakeSession{callErr: fmt.Errorf("connection reset")}
	client := newTestClient(t, sess, 0)

	_, err := client.CallTool(context.Background(), "costEstimator", nil)
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if !strings.Contains(err.Error(), "costEstimator") {
		t.Errorf("error = %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Fatalf("expected config validation error")
	}
}

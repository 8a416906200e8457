package gateway

import (
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestNormalizeTypedContent(t *testing.T) {
	reply := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: `{"statusCode": 200, "body": {"requirements": {"project_summary": "shop"}}}`},
		},
	}

	res := normalize("tool_use_1", reply)

	if res.Kind != ResultPayload {
		t.Fatalf("kind = %s, want payload (message: %s)", res.Kind, res.Message)
	}
	if res.StatusCode != 200 {
		t.Errorf("status = %d", res.StatusCode)
	}
	if !res.OK() {
		t.Errorf("OK() = false")
	}
	if res.CallID != "tool_use_1" {
		t.Errorf("call id = %q", res.CallID)
	}
	if _, ok := res.Body["requirements"]; !ok {
		t.Errorf("body missing requirements: %v", res.Body)
	}
}

func TestNormalizeDoublyEncodedBody(t *testing.T) {
	// body itself is a JSON string holding the real object
	reply := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: `{"statusCode": 200, "body": "{\"requirements\": {\"project_summary\": \"shop\"}}"}`},
		},
	}

	res := normalize("tool_use_2", reply)

	if res.Kind != ResultPayload {
		t.Fatalf("kind = %s, want payload (message: %s)", res.Kind, res.Message)
	}
	if _, ok := res.Body["requirements"]; !ok {
		t.Errorf("body missing requirements: %v", res.Body)
	}
}

func TestNormalizeToolError(t *testing.T) {
	reply := &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: "upstream function timed out"},
		},
	}

	res := normalize("tool_use_3", reply)

	if res.Kind != ResultToolError {
		t.Fatalf("kind = %s, want tool_error", res.Kind)
	}
	if res.OK() {
		t.Errorf("OK() = true for a tool error")
	}
	if err := res.Err(); err == nil || !strings.Contains(err.Error(), "upstream function timed out") {
		t.Errorf("Err() = %v", err)
	}
}

func TestNormalizeToolErrorWithoutText(t *testing.T) {
	tests := []struct {
		name  string
		reply *mcp.CallToolResult
	}{
		{name: "no content", reply: &mcp.CallToolResult{IsError: true}},
		{name: "nil text element", reply: &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{(*mcp.TextContent)(nil)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := normalize("tool_use_10", tt.reply)
			if res.Kind != ResultToolError {
				t.Fatalf("kind = %s, want tool_error", res.Kind)
			}
			if res.Message == "" {
				t.Errorf("message empty")
			}
			if res.Err() == nil {
				t.Errorf("Err() = nil")
			}
		})
	}
}

func TestNormalizeMappingContent(t *testing.T) {
	reply := map[string]any{
		"content": []any{
			map[string]any{"type": "text", "text": `{"statusCode": 200, "body": {"ok": true}}`},
		},
	}

	res := normalize("tool_use_4", reply)

	if res.Kind != ResultPayload {
		t.Fatalf("kind = %s, want payload (message: %s)", res.Kind, res.Message)
	}
	if res.Body["ok"] != true {
		t.Errorf("body = %v", res.Body)
	}
}

func TestNormalizeMappingError(t *testing.T) {
	reply := map[string]any{"error": "access denied"}

	res := normalize("tool_use_5", reply)

	if res.Kind != ResultToolError {
		t.Fatalf("kind = %s, want tool_error", res.Kind)
	}
	if !strings.Contains(res.Message, "access denied") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestNormalizeDecodeError(t *testing.T) {
	reply := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: "this is not json"},
		},
	}

	res := normalize("tool_use_6", reply)

	if res.Kind != ResultDecodeError {
		t.Fatalf("kind = %s, want decode_error", res.Kind)
	}
	if res.Raw != "this is not json" {
		t.Errorf("raw text not retained: %q", res.Raw)
	}
	if res.Err() == nil {
		t.Errorf("Err() = nil for decode error")
	}
}

func TestNormalizeUnexpectedShape(t *testing.T) {
	tests := []struct {
		name  string
		reply any
	}{
		{name: "nil reply", reply: nil},
		{name: "plain string", reply: "hello"},
		{name: "empty content list", reply: &mcp.CallToolResult{}},
		{name: "mapping without content or error", reply: map[string]any{"foo": "bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := normalize("tool_use_7", tt.reply)
			if res.Kind != ResultUnexpected {
				t.Errorf("kind = %s, want unexpected_shape", res.Kind)
			}
			if res.Err() == nil {
				t.Errorf("Err() = nil")
			}
		})
	}
}

func TestNormalizeDirectPayload(t *testing.T) {
	// some tools skip the {statusCode, body} envelope entirely
	reply := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: `{"requirements": {"project_summary": "shop"}}`},
		},
	}

	res := normalize("tool_use_8", reply)

	if res.Kind != ResultPayload {
		t.Fatalf("kind = %s, want payload (message: %s)", res.Kind, res.Message)
	}
	if res.StatusCode != 200 {
		t.Errorf("status = %d, want 200 for enveloped-less payload", res.StatusCode)
	}
	if _, ok := res.Body["requirements"]; !ok {
		t.Errorf("body = %v", res.Body)
	}
}

func TestNormalizeNonSuccessStatus(t *testing.T) {
	reply := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: `{"statusCode": 502, "body": {"message": "bad gateway"}}`},
		},
	}

	res := normalize("tool_use_9", reply)

	if res.Kind != ResultPayload {
		t.Fatalf("kind = %s", res.Kind)
	}
	if res.OK() {
		t.Errorf("OK() = true for status 502")
	}
	if err := res.Err(); err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("Err() = %v", err)
	}
}

func TestWireToolName(t *testing.T) {
	if got := WireToolName("requirementsExtractor"); got != "requirementsExtractor___requirementsExtractor" {
		t.Errorf("WireToolName = %q", got)
	}
}

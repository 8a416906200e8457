package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// normalize collapses the gateway's reply envelopes into one Result.
//
// The gateway has produced two historical transport encodings (typed
// content-list objects and generic mappings) plus bare error mappings, so
// the shapes are handled in priority order:
//
//  1. a typed tool result whose first content element carries text
//  2. a mapping with a content list of the same shape
//  3. a mapping carrying an "error" key
//  4. anything else, wrapped as an unexpected-shape result
//
// The carried text is itself a JSON document {statusCode, body}; a parse
// failure there yields a decode-error result retaining the raw text.
func normalize(callID string, reply any) Result {
	switch v := reply.(type) {
	case *mcp.CallToolResult:
		if v == nil {
			break
		}
		text, ok := firstContentText(v.Content)
		if v.IsError {
			// the error flag wins even when no text is attached
			if !ok {
				return Result{
					Kind:    ResultToolError,
					CallID:  callID,
					Message: "tool reported an error without details",
					Raw:     stringify(v),
				}
			}
			return Result{Kind: ResultToolError, CallID: callID, Message: text, Raw: text}
		}
		if ok {
			return decodePayload(callID, text)
		}
	case mcp.CallToolResult:
		return normalize(callID, &v)
	case map[string]any:
		if text, ok := mappingContentText(v); ok {
			return decodePayload(callID, text)
		}
		if errVal, ok := v["error"]; ok {
			return Result{
				Kind:    ResultToolError,
				CallID:  callID,
				Message: fmt.Sprintf("%v", errVal),
				Raw:     stringify(v),
			}
		}
	}

	return Result{
		Kind:    ResultUnexpected,
		CallID:  callID,
		Message: fmt.Sprintf("unrecognized reply type %T", reply),
		Raw:     stringify(reply),
	}
}

// decodePayload parses the unwrapped envelope text into {statusCode, body}.
// The body arrives either as an embedded object or as a doubly-encoded JSON
// string; both end up as the same mapping.
func decodePayload(callID, text string) Result {
	var envelope struct {
		StatusCode int             `json:"statusCode"`
		Body       json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return Result{
			Kind:    ResultDecodeError,
			CallID:  callID,
			Message: err.Error(),
			Raw:     text,
		}
	}

	body := map[string]any{}
	if len(envelope.Body) > 0 {
		raw := envelope.Body
		var inner string
		if json.Unmarshal(raw, &inner) == nil {
			// doubly-wrapped: body is a JSON string holding the real object
			raw = json.RawMessage(inner)
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return Result{
				Kind:    ResultDecodeError,
				CallID:  callID,
				Message: fmt.Sprintf("body: %v", err),
				Raw:     text,
			}
		}
	}

	if envelope.StatusCode == 0 {
		// no envelope at all: the text was already the payload object
		var direct map[string]any
		if err := json.Unmarshal([]byte(text), &direct); err == nil && len(body) == 0 {
			return Result{Kind: ResultPayload, CallID: callID, StatusCode: 200, Body: direct}
		}
	}

	return Result{
		Kind:       ResultPayload,
		CallID:     callID,
		StatusCode: envelope.StatusCode,
		Body:       body,
	}
}

// firstContentText extracts the raw text of the first content element.
func firstContentText(content []mcp.Content) (string, bool) {
	if len(content) == 0 {
		return "", false
	}
	switch c := content[0].(type) {
	case mcp.TextContent:
		return c.Text, true
	case *mcp.TextContent:
		if c != nil {
			return c.Text, true
		}
	}
	return "", false
}

// mappingContentText extracts text from the generic-mapping encoding:
// {"content": [{"text": "..."}], ...}.
func mappingContentText(m map[string]any) (string, bool) {
	list, ok := m["content"].([]any)
	if !ok || len(list) == 0 {
		return "", false
	}
	item, ok := list[0].(map[string]any)
	if !ok {
		return "", false
	}
	text, ok := item["text"].(string)
	return text, ok
}

func stringify(v any) string {
	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", v)
}

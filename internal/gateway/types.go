// Package gateway is the client for the remote tool gateway: an MCP
// registry/dispatcher reachable over streamable HTTP that exposes named
// Lambda-backed tools behind a bearer-token boundary.
package gateway

import "fmt"

// ToolDescriptor describes one callable tool discovered from the gateway.
// Immutable for the lifetime of one client connection.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ResultKind tags the closed set of normalized reply variants. Exactly one
// parsing function produces these; call sites never branch on raw shapes.
type ResultKind string

const (
	// ResultPayload is a successfully unwrapped tool payload.
	ResultPayload ResultKind = "payload"
	// ResultToolError is an error reported by the gateway or tool itself.
	ResultToolError ResultKind = "tool_error"
	// ResultDecodeError means the unwrapped reply text was not valid JSON.
	ResultDecodeError ResultKind = "decode_error"
	// ResultUnexpected means the reply envelope had none of the known shapes.
	ResultUnexpected ResultKind = "unexpected_shape"
)

// Result is the canonical decoded outcome of one tool invocation.
// StatusCode follows HTTP conventions (200 = success) even though the
// transport is not HTTP at that layer. Raw retains the offending input for
// the error variants so nothing is silently discarded.
type Result struct {
	Kind       ResultKind
	CallID     string
	StatusCode int
	Body       map[string]any
	Message    string
	Raw        string
}

// OK reports whether the invocation produced a successful payload.
func (r Result) OK() bool {
	return r.Kind == ResultPayload && r.StatusCode == 200
}

// Err converts an error-variant result into a Go error, or nil for payloads.
func (r Result) Err() error {
	switch r.Kind {
	case ResultPayload:
		if r.StatusCode != 200 {
			return fmt.Errorf("gateway: tool returned status %d", r.StatusCode)
		}
		return nil
	case ResultToolError:
		return fmt.Errorf("gateway: tool error: %s", r.Message)
	case ResultDecodeError:
		return fmt.Errorf("gateway: undecodable tool reply: %s", r.Message)
	default:
		return fmt.Errorf("gateway: unexpected reply shape: %s", r.Message)
	}
}

// WireToolName derives the gateway registry identifier from a logical tool
// name. The registry registers every tool as "{name}___{name}"; callers
// always use the logical name and the client mangles it on the way out.
func WireToolName(logical string) string {
	return logical + "___" + logical
}

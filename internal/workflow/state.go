// Package workflow drives the multi-stage design pipeline: a fixed graph
// of steps that extract requirements, generate and compare candidate
// designs, apply user refinements, and produce a diagram and staffing
// plan. All step outputs live in the session store; the graph state below
// carries only identifiers and control flags.
package workflow

import "fmt"

// State is the transient per-run state. One instance exists per Run call
// and is never persisted as a whole.
type State struct {
	SessionID string
	ActorID   string
	MemoryID  string

	// CurrentStep is the most recently attempted step, even when that
	// step failed. It never rewinds.
	CurrentStep string

	// Messages collects human-readable progress notes, append-only.
	Messages []string

	// Errors collects step failure descriptions, append-only. Step
	// failures are non-fatal: the engine records them and moves on.
	Errors []string

	// Degraded is set once any downstream step runs after an upstream
	// failure, so callers can tell a best-effort result from a clean one.
	Degraded bool

	UserSelectionMade   bool
	RefinementRequested bool
}

func (s *State) appendMessage(msg string) {
	s.Messages = append(s.Messages, msg)
}

func (s *State) appendError(step string, err error) {
	s.Errors = append(s.Errors, fmt.Sprintf("%s failed: %v", step, err))
}

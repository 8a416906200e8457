// Package session provides key-value persistence for pipeline runs.
//
// Every workflow step reads its inputs from and writes its outputs to a
// Store scoped by (memory_id, session_id, actor_id). The store is the only
// hand-off mechanism between steps, which is what makes a run resumable.
package session

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound signals that a key was never written in the given scope.
// Distinct from a stored empty value.
var ErrNotFound = errors.New("session: key not found")

// Scope identifies one isolated pipeline run's persisted state.
// No two concurrent runs may share a scope; the store does no locking.
type Scope struct {
	MemoryID  string
	SessionID string
	ActorID   string
}

func (s Scope) String() string {
	return fmt.Sprintf("%s/%s/%s", s.MemoryID, s.SessionID, s.ActorID)
}

// Validate reports a configuration error when any scope component is empty.
func (s Scope) Validate() error {
	if s.MemoryID == "" || s.SessionID == "" || s.ActorID == "" {
		return fmt.Errorf("session: incomplete scope %q", s.String())
	}
	return nil
}

// The fixed key vocabulary written and read by workflow steps.
const (
	KeyRequirements         = "requirements"
	KeyRequirementsMarkdown = "requirements_markdown"
	KeyDesignOptions        = "design_options"
	KeyDesignOptionsJSON    = "design_options_json"
	KeyComparisonResults    = "comparison_results"
	KeyRecommendedOption    = "recommended_option"
	KeySelectedOption       = "selected_option"
	KeySelectedOptionData   = "selected_option_data"
	KeyRefinementRequest    = "refinement_request"
	KeyRefinementResult     = "refinement_result"
	KeyDiagramCode          = "diagram_code"
	KeyDiagramPath          = "diagram_path"
	KeyStaffingPlan         = "staffing_plan"
)

// Store persists run artifacts. Writes are last-write-wins per key.
// Load returns ErrNotFound for keys that were never written; any other
// error is an I/O failure and fatal to the calling step.
type Store interface {
	Save(ctx context.Context, scope Scope, key string, value any) error
	Load(ctx context.Context, scope Scope, key string, out any) error
}

package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/manno/archflow/internal/session"
)

// DefaultMaxRefinePasses bounds the wait_for_selection/apply_refinements
// cycle against a caller that keeps re-arming the refinement flag.
const DefaultMaxRefinePasses = 8

// Engine executes the design pipeline graph. One Engine may serve many
// runs, but no two concurrent runs may share a scope: the session store
// does no locking, so overlapping runs on one scope interleave
// unpredictably.
type Engine struct {
	store           session.Store
	handlers        *Handlers
	memoryID        string
	maxRefinePasses int
	logger          *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithMaxRefinePasses overrides the refinement cycle ceiling.
func WithMaxRefinePasses(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRefinePasses = n
		}
	}
}

// New wires the engine to its store and step handlers. The memory id
// scopes every run this engine executes; a missing one is a configuration
// error raised here, before any graph runs.
func New(store session.Store, handlers *Handlers, memoryID string, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("workflow: session store is required")
	}
	if handlers == nil {
		return nil, fmt.Errorf("workflow: step handlers are required")
	}
	if memoryID == "" {
		return nil, fmt.Errorf("workflow: memory id is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		store:           store,
		handlers:        handlers,
		memoryID:        memoryID,
		maxRefinePasses: DefaultMaxRefinePasses,
		logger:          logger,
	}
	if handlers.Logger == nil {
		handlers.Logger = logger
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run executes the pipeline for one scope and returns the terminal state.
// Optional document metadata is forwarded to the extraction tool. Step
// failures never abort the run: they are logged, recorded in State.Errors,
// and the engine follows the next edge so later steps can still attempt
// whatever inputs exist. Re-running with the same scope resumes: completed
// steps short-circuit on their stored outputs.
func (e *Engine) Run(ctx context.Context, documentText, sessionID, actorID string, metadata map[string]string) *State {
	state := &State{
		SessionID:   sessionID,
		ActorID:     actorID,
		MemoryID:    e.memoryID,
		CurrentStep: "start",
	}
	scope := session.Scope{
		MemoryID:  e.memoryID,
		SessionID: sessionID,
		ActorID:   actorID,
	}
	sess := session.New(e.store, scope)

	refinePasses := 0
	for step := StepExtractRequirements; step != stepDone; {
		if len(state.Errors) > 0 {
			// a later step is about to run on best-effort upstream data
			state.Degraded = true
		}
		state.CurrentStep = step
		e.logger.Info("workflow step", "step", step, "scope", scope.String())

		message, err := e.dispatch(ctx, step, sess, state, documentText, metadata)
		if err != nil {
			e.logger.Error("workflow step failed", "step", step, "error", err)
			state.appendError(step, err)
		} else if message != "" {
			state.appendMessage(message)
		}

		if step == StepApplyRefinements {
			refinePasses++
		}
		// the guard sits after wait_for_selection because that step re-arms
		// the flag from any stored unprocessed request
		if step == StepWaitForSelection && state.RefinementRequested && refinePasses >= e.maxRefinePasses {
			state.appendError(step, fmt.Errorf("refinement cycle exceeded %d passes", e.maxRefinePasses))
			state.RefinementRequested = false
		}

		step = nextStep(step, state)
	}

	return state
}

func (e *Engine) dispatch(ctx context.Context, step string, sess *session.Session, state *State, documentText string, metadata map[string]string) (string, error) {
	switch step {
	case StepExtractRequirements:
		return e.handlers.extractRequirements(ctx, sess, state, documentText, metadata)
	case StepGenerateDesigns:
		return e.handlers.generateDesigns(ctx, sess)
	case StepCompareOptions:
		return e.handlers.compareOptions(ctx, sess)
	case StepWaitForSelection:
		return e.handlers.waitForSelection(ctx, sess, state)
	case StepApplyRefinements:
		return e.handlers.applyRefinements(ctx, sess, state)
	case StepGenerateDiagram:
		return e.handlers.generateDiagram(ctx, sess)
	case StepGenerateStaffing:
		return e.handlers.generateStaffing(ctx, sess)
	case StepFinalize:
		if state.Degraded || len(state.Errors) > 0 {
			return fmt.Sprintf("Workflow completed with %d step errors", len(state.Errors)), nil
		}
		return "Workflow completed successfully", nil
	default:
		return "", fmt.Errorf("unknown step %q", step)
	}
}

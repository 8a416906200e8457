package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/manno/archflow/internal/design"
	"github.com/manno/archflow/internal/gateway"
	"github.com/manno/archflow/internal/session"
)

// requirementsTool is the logical gateway tool for requirements extraction.
const requirementsTool = "requirementsExtractor"

// ToolCaller invokes a gateway tool by logical name.
type ToolCaller interface {
	CallTool(ctx context.Context, logicalName string, arguments map[string]any) (gateway.Result, error)
}

// DesignProducer generates candidate architecture options.
type DesignProducer interface {
	GenerateOptions(ctx context.Context, requirementsMarkdown string) (design.DesignOutput, error)
}

// Comparator scores options and recommends one.
type Comparator interface {
	CompareOptions(ctx context.Context, optionsJSON string) (design.Comparison, error)
}

// DiagramRenderer produces diagram source for an architecture.
type DiagramRenderer interface {
	GenerateDiagram(ctx context.Context, architectureJSON string) (string, error)
}

// StaffingPlanner produces a staffing plan for an architecture.
type StaffingPlanner interface {
	GeneratePlan(ctx context.Context, architectureJSON string) (design.StaffingPlan, error)
}

// RefinementEngine applies user feedback to an architecture option.
type RefinementEngine interface {
	Refine(ctx context.Context, current design.ArchitectureOption, feedback, focusArea string) (design.RefinementResult, error)
}

// Handlers glues each step to its collaborators. Handlers keep no state of
// their own; all continuity flows through the session store so a run can
// be resumed mid-pipeline with the same scope.
type Handlers struct {
	Gateway  ToolCaller
	Design   DesignProducer
	Compare  Comparator
	Diagram  DiagramRenderer
	Staffing StaffingPlanner
	Refiner  RefinementEngine

	// ArtifactDir is where diagram files are written; empty disables the
	// file artifact (diagram_code is still stored).
	ArtifactDir string

	Logger *slog.Logger
}

// extractRequirements calls the gateway's extraction tool and stores the
// structured requirements plus their markdown rendering.
func (h *Handlers) extractRequirements(ctx context.Context, sess *session.Session, state *State, documentText string, metadata map[string]string) (string, error) {
	args := map[string]any{
		"document_text": documentText,
		"session_id":    state.SessionID,
	}
	if len(metadata) > 0 {
		args["document_metadata"] = metadata
	}
	result, err := h.Gateway.CallTool(ctx, requirementsTool, args)
	if err != nil {
		return "", err
	}
	if err := result.Err(); err != nil {
		return "", err
	}

	rawReqs, ok := result.Body["requirements"]
	if !ok {
		return "", fmt.Errorf("tool reply missing requirements field")
	}
	data, err := json.Marshal(rawReqs)
	if err != nil {
		return "", fmt.Errorf("re-encode requirements: %w", err)
	}
	var reqs design.SystemRequirements
	if err := json.Unmarshal(data, &reqs); err != nil {
		return "", fmt.Errorf("decode requirements: %w", err)
	}

	if err := sess.SaveRequirements(ctx, reqs); err != nil {
		return "", err
	}
	if err := sess.SaveRequirementsMarkdown(ctx, reqs.Markdown()); err != nil {
		return "", err
	}

	return "Requirements extracted via gateway and saved to session", nil
}

// generateDesigns reads the requirements markdown and stores the options
// both typed and as pretty JSON for the comparison prompt.
func (h *Handlers) generateDesigns(ctx context.Context, sess *session.Session) (string, error) {
	markdown, err := sess.LoadRequirementsMarkdown(ctx)
	if err != nil {
		return "", err
	}

	out, err := h.Design.GenerateOptions(ctx, markdown)
	if err != nil {
		return "", err
	}

	if err := sess.SaveDesignOptions(ctx, out.Options); err != nil {
		return "", err
	}
	optionsJSON, err := json.MarshalIndent(out.Options, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode options: %w", err)
	}
	if err := sess.SaveDesignOptionsJSON(ctx, string(optionsJSON)); err != nil {
		return "", err
	}

	return fmt.Sprintf("Generated %d architecture options", len(out.Options)), nil
}

// compareOptions stores the comparison and the recommended option name.
func (h *Handlers) compareOptions(ctx context.Context, sess *session.Session) (string, error) {
	optionsJSON, err := sess.LoadDesignOptionsJSON(ctx)
	if err != nil {
		return "", err
	}

	comparison, err := h.Compare.CompareOptions(ctx, optionsJSON)
	if err != nil {
		return "", err
	}

	if err := sess.SaveComparison(ctx, comparison); err != nil {
		return "", err
	}
	if err := sess.SaveRecommendedOption(ctx, comparison.RecommendedOption); err != nil {
		return "", err
	}

	return fmt.Sprintf("Recommended: %s", comparison.RecommendedOption), nil
}

// waitForSelection defaults to the recommended option when the user has
// not chosen, then pins the full option payload for the remaining steps.
// The auto-selection message is the only one this step ever appends.
func (h *Handlers) waitForSelection(ctx context.Context, sess *session.Session, state *State) (string, error) {
	var message string

	selected, err := sess.LoadSelectedOption(ctx)
	if err != nil {
		return "", err
	}
	if selected == "" {
		recommended, err := sess.LoadRecommendedOption(ctx)
		if err != nil {
			return "", err
		}
		if err := sess.SaveSelectedOption(ctx, recommended); err != nil {
			return "", err
		}
		selected = recommended
		message = fmt.Sprintf("Auto-selected recommended option: %s", selected)
	}

	// pin the full option payload once; a later pass must not clobber a
	// refined payload with the original option
	pinned, err := sess.Exists(ctx, session.KeySelectedOptionData)
	if err != nil {
		return "", err
	}
	if !pinned {
		options, err := sess.LoadDesignOptions(ctx)
		if err != nil {
			return "", err
		}
		if opt, ok := design.FindOption(options, selected); ok {
			if err := sess.SaveSelectedOptionData(ctx, opt); err != nil {
				return "", err
			}
		} else {
			h.Logger.Warn("selected option not found among design options",
				"selected", selected)
		}
	}

	state.UserSelectionMade = true

	// an unprocessed refinement request in the store arms the refine
	// edge; apply_refinements disarms it after a successful application.
	// Load only reports real I/O failures here, a missing request is
	// (exists=false, nil).
	request, exists, err := sess.LoadRefinementRequest(ctx)
	if err != nil {
		return "", err
	}
	if exists && !request.Processed {
		state.RefinementRequested = true
	}

	return message, nil
}

// applyRefinements applies one unprocessed refinement request, overwrites
// the selected option payload, and marks the request processed so a
// re-entered run does not apply it twice.
func (h *Handlers) applyRefinements(ctx context.Context, sess *session.Session, state *State) (string, error) {
	request, exists, err := sess.LoadRefinementRequest(ctx)
	if err != nil {
		return "", err
	}
	if !exists || request.Processed {
		// nothing to apply; clear the flag so the loop exits
		state.RefinementRequested = false
		return "", nil
	}

	current, err := sess.LoadSelectedOptionData(ctx)
	if err != nil {
		return "", err
	}

	result, err := h.Refiner.Refine(ctx, current, request.Feedback, request.FocusArea)
	if err != nil {
		return "", err
	}

	if err := sess.SaveSelectedOptionData(ctx, result.RefinedArchitecture); err != nil {
		return "", err
	}
	if err := sess.SaveRefinementResult(ctx, result); err != nil {
		return "", err
	}

	request.Processed = true
	if err := sess.SaveRefinementRequest(ctx, request); err != nil {
		return "", err
	}

	state.RefinementRequested = false
	return fmt.Sprintf("Refinement applied: %s", result.Summary), nil
}

// generateDiagram stores the diagram source and, when an artifact
// directory is configured, writes it to disk. A failed file write degrades
// to a warning; the stored diagram_code is the source of truth.
func (h *Handlers) generateDiagram(ctx context.Context, sess *session.Session) (string, error) {
	selectedData, err := sess.LoadSelectedOptionData(ctx)
	if err != nil {
		return "", err
	}
	archJSON, err := json.Marshal(selectedData)
	if err != nil {
		return "", fmt.Errorf("encode architecture: %w", err)
	}

	code, err := h.Diagram.GenerateDiagram(ctx, string(archJSON))
	if err != nil {
		return "", err
	}
	if err := sess.SaveDiagramCode(ctx, code); err != nil {
		return "", err
	}

	if h.ArtifactDir != "" {
		path := filepath.Join(h.ArtifactDir, diagramFileName(selectedData.Name))
		if err := writeDiagramFile(path, code); err != nil {
			h.Logger.Warn("diagram artifact write failed", "path", path, "error", err)
		} else if err := sess.SaveDiagramPath(ctx, path); err != nil {
			return "", err
		}
	}

	return "Diagram generated", nil
}

// generateStaffing stores the staffing plan for the selected option.
func (h *Handlers) generateStaffing(ctx context.Context, sess *session.Session) (string, error) {
	selectedData, err := sess.LoadSelectedOptionData(ctx)
	if err != nil {
		return "", err
	}
	archJSON, err := json.Marshal(selectedData)
	if err != nil {
		return "", fmt.Errorf("encode architecture: %w", err)
	}

	plan, err := h.Staffing.GeneratePlan(ctx, string(archJSON))
	if err != nil {
		return "", err
	}
	if err := sess.SaveStaffingPlan(ctx, plan); err != nil {
		return "", err
	}

	return "Staffing plan generated", nil
}

func diagramFileName(optionName string) string {
	slug := strings.ToLower(strings.ReplaceAll(optionName, " ", "_"))
	if slug == "" {
		slug = "architecture"
	}
	return slug + "_diagram.mmd"
}

func writeDiagramFile(path, code string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(code), 0o644)
}

package workflow

// Step names. The graph is fixed: extract_requirements through finalize,
// with one conditional cycle between wait_for_selection and
// apply_refinements.
const (
	StepExtractRequirements = "extract_requirements"
	StepGenerateDesigns     = "generate_designs"
	StepCompareOptions      = "compare_options"
	StepWaitForSelection    = "wait_for_selection"
	StepApplyRefinements    = "apply_refinements"
	StepGenerateDiagram     = "generate_diagram"
	StepGenerateStaffing    = "generate_staffing"
	StepFinalize            = "finalize"
)

// stepDone marks the terminal edge.
const stepDone = ""

// nextStep returns the outgoing edge for a step. wait_for_selection is the
// only conditional edge and is resolved by the engine from the state's
// RefinementRequested flag.
func nextStep(step string, state *State) string {
	switch step {
	case StepExtractRequirements:
		return StepGenerateDesigns
	case StepGenerateDesigns:
		return StepCompareOptions
	case StepCompareOptions:
		return StepWaitForSelection
	case StepWaitForSelection:
		if state.RefinementRequested {
			return StepApplyRefinements
		}
		return StepGenerateDiagram
	case StepApplyRefinements:
		return StepWaitForSelection
	case StepGenerateDiagram:
		return StepGenerateStaffing
	case StepGenerateStaffing:
		return StepFinalize
	default:
		return stepDone
	}
}

package design

// RefinementRequest is a user's request to change the selected option before
// diagram and staffing generation. Processed flips to true once the request
// has been applied, so a re-entered workflow does not apply it twice.
type RefinementRequest struct {
	Feedback  string `json:"feedback"`
	FocusArea string `json:"focus_area,omitempty"` // cost, performance, security, reliability
	Processed bool   `json:"processed"`
}

// RefinementResult captures one applied refinement pass.
type RefinementResult struct {
	RefinedArchitecture ArchitectureOption `json:"refined_architecture"`
	Changes             []string           `json:"changes"`
	Summary             string             `json:"summary"`
}

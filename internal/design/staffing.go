package design

// Role is one team role in a staffing plan.
type Role struct {
	Title            string   `json:"title"`
	Count            int      `json:"count"`
	Skills           []string `json:"skills"`
	Responsibilities string   `json:"responsibilities"`
}

// Phase is one project phase with its activities and deliverables.
type Phase struct {
	Name          string   `json:"name"`
	DurationWeeks int      `json:"duration_weeks"`
	Activities    []string `json:"activities"`
	Deliverables  []string `json:"deliverables"`
}

// StaffingPlan is the staffing agent's reply: team composition and timeline
// for implementing the selected architecture.
type StaffingPlan struct {
	TeamSize           int     `json:"team_size"`
	Roles              []Role  `json:"roles"`
	Phases             []Phase `json:"phases"`
	TotalDurationWeeks int     `json:"total_duration_weeks"`
	EstimatedCost      string  `json:"estimated_cost"`
}

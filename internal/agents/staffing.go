package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/manno/archflow/internal/design"
)

const staffingInstructions = `You are a technical delivery manager. Given an
architecture design as JSON, produce a staffing and timeline plan: team
size, roles with counts, skills and responsibilities, project phases with
durations, activities and deliverables, total duration and estimated cost.
Reply with a single JSON object matching the documented staffing plan
schema. Reply with JSON only.`

// StaffingAgent produces a staffing plan for the selected architecture.
type StaffingAgent struct {
	gen    Generator
	logger *slog.Logger
}

// NewStaffingAgent builds a staffing agent on top of a generator.
func NewStaffingAgent(gen Generator, logger *slog.Logger) *StaffingAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &StaffingAgent{gen: gen, logger: logger}
}

// GeneratePlan produces the staffing plan for the architecture JSON.
func (a *StaffingAgent) GeneratePlan(ctx context.Context, architectureJSON string) (design.StaffingPlan, error) {
	prompt := fmt.Sprintf("Create a staffing plan for this architecture:\n\n%s", architectureJSON)

	reply, err := a.gen.Generate(ctx, staffingInstructions, prompt)
	if err != nil {
		return design.StaffingPlan{}, fmt.Errorf("staffing agent: %w", err)
	}

	var plan design.StaffingPlan
	if err := json.Unmarshal([]byte(stripFences(reply)), &plan); err != nil {
		return design.StaffingPlan{}, fmt.Errorf("staffing agent: decode reply: %w", err)
	}

	a.logger.Info("staffing plan generated",
		"team_size", plan.TeamSize,
		"phases", len(plan.Phases))
	return plan, nil
}

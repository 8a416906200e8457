package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/manno/archflow/internal/design"
)

const designInstructions = `You are a cloud solutions architect. Given a set of
system requirements, produce exactly three distinct architecture options with
different optimization priorities (for example cost-optimized, performance-
optimized, balanced). Reply with a single JSON object of the form
{"options": [ ... ]} where each option fills every field of the documented
architecture option schema. Reply with JSON only, no commentary.`

// DesignAgent generates candidate architecture options from requirements.
type DesignAgent struct {
	gen    Generator
	logger *slog.Logger
}

// NewDesignAgent builds a design agent on top of a generator.
func NewDesignAgent(gen Generator, logger *slog.Logger) *DesignAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &DesignAgent{gen: gen, logger: logger}
}

// GenerateOptions produces the candidate designs for the given requirements
// markdown. A reply that does not decode into the expected schema is an
// error; the workflow records it and continues.
func (a *DesignAgent) GenerateOptions(ctx context.Context, requirementsMarkdown string) (design.DesignOutput, error) {
	prompt := fmt.Sprintf("Generate three architecture options for the following requirements:\n\n%s",
		requirementsMarkdown)

	reply, err := a.gen.Generate(ctx, designInstructions, prompt)
	if err != nil {
		return design.DesignOutput{}, fmt.Errorf("design agent: %w", err)
	}

	var out design.DesignOutput
	if err := json.Unmarshal([]byte(stripFences(reply)), &out); err != nil {
		return design.DesignOutput{}, fmt.Errorf("design agent: decode reply: %w", err)
	}
	if len(out.Options) == 0 {
		return design.DesignOutput{}, fmt.Errorf("design agent: reply contained no options")
	}

	a.logger.Info("design options generated", "count", len(out.Options))
	return out, nil
}

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/manno/archflow/internal/design"
)

const refineInstructions = `You are a cloud solutions architect. Refine the
given architecture according to the user's feedback while keeping it
compatible with the original requirements. Reply with a single JSON object
of the form {"refined_architecture": {...}, "changes": ["..."],
"summary": "..."} where refined_architecture follows the documented
architecture option schema. Reply with JSON only.`

// focusGuidance steers a refinement pass toward one concern.
var focusGuidance = map[string]string{
	"cost":        "Focus on reducing costs while maintaining functionality.",
	"performance": "Focus on improving performance: caching, CDN, managed services.",
	"security":    "Focus on enhancing security: encryption, WAF, IAM policies.",
	"reliability": "Focus on reliability: multi-AZ, auto-scaling, disaster recovery.",
}

// Refiner applies user feedback to the selected architecture option.
type Refiner struct {
	gen    Generator
	logger *slog.Logger
}

// NewRefiner builds a refiner on top of a generator.
func NewRefiner(gen Generator, logger *slog.Logger) *Refiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refiner{gen: gen, logger: logger}
}

// Refine produces a refined version of the architecture for the feedback.
func (r *Refiner) Refine(ctx context.Context, current design.ArchitectureOption, feedback, focusArea string) (design.RefinementResult, error) {
	currentJSON, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return design.RefinementResult{}, fmt.Errorf("refiner: encode architecture: %w", err)
	}

	prompt := fmt.Sprintf("CURRENT ARCHITECTURE:\n%s\n\nUSER FEEDBACK:\n%s\n",
		currentJSON, feedback)
	if guidance, ok := focusGuidance[focusArea]; ok {
		prompt += "\nPRIORITY FOCUS: " + guidance + "\n"
	}

	reply, err := r.gen.Generate(ctx, refineInstructions, prompt)
	if err != nil {
		return design.RefinementResult{}, fmt.Errorf("refiner: %w", err)
	}

	var result design.RefinementResult
	if err := json.Unmarshal([]byte(stripFences(reply)), &result); err != nil {
		return design.RefinementResult{}, fmt.Errorf("refiner: decode reply: %w", err)
	}
	if result.RefinedArchitecture.Name == "" {
		// keep the option addressable under its original name
		result.RefinedArchitecture.Name = current.Name
	}

	r.logger.Info("architecture refined",
		"option", result.RefinedArchitecture.Name,
		"changes", len(result.Changes))
	return result, nil
}

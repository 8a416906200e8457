package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/manno/archflow/internal/design"
)

const compareInstructions = `You are a cloud solutions architect specializing
in comparative architecture evaluation. You will receive several design
options as JSON. Score the options against each other per Well-Architected
pillar (0-100), list strengths, weaknesses and risks for each, and recommend
exactly one option by name. Reply with a single JSON object of the form
{"comparisons": [...], "recommended_option": "...",
"recommendation_rationale": "..."}. Reply with JSON only.`

// CompareAgent scores design options against each other and recommends one.
type CompareAgent struct {
	gen    Generator
	logger *slog.Logger
}

// NewCompareAgent builds a compare agent on top of a generator.
func NewCompareAgent(gen Generator, logger *slog.Logger) *CompareAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompareAgent{gen: gen, logger: logger}
}

// CompareOptions evaluates the serialized design options. When the reply
// does not decode, a documented fallback naming the first option is
// returned instead of an error, so the pipeline can still proceed to a
// selection.
func (a *CompareAgent) CompareOptions(ctx context.Context, optionsJSON string) (design.Comparison, error) {
	prompt := fmt.Sprintf("Compare the following architecture options:\n\n%s", optionsJSON)

	reply, err := a.gen.Generate(ctx, compareInstructions, prompt)
	if err != nil {
		return design.Comparison{}, fmt.Errorf("compare agent: %w", err)
	}

	var out design.Comparison
	if err := json.Unmarshal([]byte(stripFences(reply)), &out); err != nil {
		a.logger.Warn("compare reply undecodable, using fallback", "error", err)
		return a.fallback(optionsJSON, err.Error())
	}
	if out.RecommendedOption == "" {
		return a.fallback(optionsJSON, "reply omitted recommended_option")
	}

	a.logger.Info("options compared", "recommended", out.RecommendedOption)
	return out, nil
}

// fallback recommends the first option when the comparison itself failed.
func (a *CompareAgent) fallback(optionsJSON, reason string) (design.Comparison, error) {
	var options []design.ArchitectureOption
	if err := json.Unmarshal([]byte(optionsJSON), &options); err != nil || len(options) == 0 {
		return design.Comparison{}, fmt.Errorf("compare agent: %s, and no options to fall back to", reason)
	}

	return design.Comparison{
		RecommendedOption: options[0].Name,
		RecommendationRationale: fmt.Sprintf(
			"Comparison unavailable (%s); defaulting to the first option.", reason),
	}, nil
}

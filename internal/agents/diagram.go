package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const diagramInstructions = `You are a cloud solutions architect. Produce a
mermaid diagram (graph TB) of the given architecture. Group services into
compute, storage, database, networking, security and monitoring subgraphs
and show the main data flow between them. Reply with the mermaid source
only, no commentary and no code fences.`

// DiagramAgent renders a selected architecture as mermaid diagram source.
type DiagramAgent struct {
	gen    Generator
	logger *slog.Logger
}

// NewDiagramAgent builds a diagram agent on top of a generator.
func NewDiagramAgent(gen Generator, logger *slog.Logger) *DiagramAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiagramAgent{gen: gen, logger: logger}
}

// GenerateDiagram returns mermaid source for the architecture JSON.
func (a *DiagramAgent) GenerateDiagram(ctx context.Context, architectureJSON string) (string, error) {
	prompt := fmt.Sprintf("Draw this architecture:\n\n%s", architectureJSON)

	reply, err := a.gen.Generate(ctx, diagramInstructions, prompt)
	if err != nil {
		return "", fmt.Errorf("diagram agent: %w", err)
	}

	code := stripFences(reply)
	if !strings.Contains(code, "graph") {
		return "", fmt.Errorf("diagram agent: reply is not a mermaid graph")
	}

	a.logger.Info("diagram generated", "bytes", len(code))
	return code, nil
}

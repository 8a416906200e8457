package design

import (
	"fmt"
	"strings"
)

// SystemRequirements is the structured output of requirements extraction.
// The gateway's requirementsExtractor tool returns JSON matching this shape.
type SystemRequirements struct {
	FunctionalRequirements   []string          `json:"functional_requirements"`
	PerformanceRequirements  map[string]string `json:"performance_requirements,omitempty"`
	ScalabilityRequirements  map[string]string `json:"scalability_requirements,omitempty"`
	SecurityRequirements     []string          `json:"security_requirements,omitempty"`
	AvailabilityRequirements map[string]string `json:"availability_requirements,omitempty"`
	TechnicalConstraints     []string          `json:"technical_constraints,omitempty"`
	BudgetConstraints        string            `json:"budget_constraints,omitempty"`
	IntegrationRequirements  []string          `json:"integration_requirements,omitempty"`
	DataRequirements         map[string]string `json:"data_requirements,omitempty"`
	ComplianceRequirements   []string          `json:"compliance_requirements,omitempty"`
	ProjectSummary           string            `json:"project_summary"`
}

// Markdown renders the requirements as a human-readable markdown document.
// Downstream agents consume this rendering rather than the raw struct.
func (r SystemRequirements) Markdown() string {
	var b strings.Builder

	b.WriteString("# System Requirements\n\n")
	b.WriteString("## Project Summary\n")
	b.WriteString(r.ProjectSummary)
	b.WriteString("\n\n## Functional Requirements\n")
	for i, req := range r.FunctionalRequirements {
		fmt.Fprintf(&b, "%d. %s\n", i+1, req)
	}

	writeKVSection(&b, "Performance Requirements", r.PerformanceRequirements,
		"_No specific performance requirements specified._")
	writeKVSection(&b, "Scalability Requirements", r.ScalabilityRequirements,
		"_No specific scalability requirements specified._")

	if len(r.SecurityRequirements) > 0 {
		b.WriteString("\n## Security Requirements\n")
		for i, req := range r.SecurityRequirements {
			fmt.Fprintf(&b, "%d. %s\n", i+1, req)
		}
	}

	writeKVSection(&b, "Availability Requirements", r.AvailabilityRequirements,
		"_No specific availability requirements specified._")

	if len(r.TechnicalConstraints) > 0 {
		b.WriteString("\n## Technical Constraints\n")
		for _, c := range r.TechnicalConstraints {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	if r.BudgetConstraints != "" {
		b.WriteString("\n## Budget Constraints\n")
		b.WriteString(r.BudgetConstraints)
		b.WriteString("\n")
	}

	if len(r.IntegrationRequirements) > 0 {
		b.WriteString("\n## Integration Requirements\n")
		for _, req := range r.IntegrationRequirements {
			fmt.Fprintf(&b, "- %s\n", req)
		}
	}

	writeKVSection(&b, "Data Requirements", r.DataRequirements, "")

	if len(r.ComplianceRequirements) > 0 {
		b.WriteString("\n## Compliance Requirements\n")
		for _, req := range r.ComplianceRequirements {
			fmt.Fprintf(&b, "- %s\n", req)
		}
	}

	return b.String()
}

func writeKVSection(b *strings.Builder, title string, kv map[string]string, empty string) {
	if len(kv) == 0 && empty == "" {
		return
	}
	fmt.Fprintf(b, "\n## %s\n", title)
	if len(kv) == 0 {
		b.WriteString(empty)
		b.WriteString("\n")
		return
	}
	for _, key := range sortedKeys(kv) {
		fmt.Fprintf(b, "- **%s**: %s\n", key, kv[key])
	}
}

package design

import "sort"

// ArchitectureOption is one candidate solution design produced by the
// design agent. Three options are generated per run, each with a distinct
// optimization focus (e.g. cost, performance, balanced).
type ArchitectureOption struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	ComputeServices    []string `json:"compute_services"`
	StorageServices    []string `json:"storage_services"`
	DatabaseServices   []string `json:"database_services"`
	NetworkingServices []string `json:"networking_services"`
	SecurityServices   []string `json:"security_services"`
	MonitoringServices []string `json:"monitoring_services"`
	OtherServices      []string `json:"other_services,omitempty"`

	ArchitectureDescription string `json:"architecture_description"`
	DataFlow                string `json:"data_flow"`

	EstimatedMonthlyCost string            `json:"estimated_monthly_cost"`
	CostBreakdown        map[string]string `json:"cost_breakdown,omitempty"`

	Pros []string `json:"pros"`
	Cons []string `json:"cons"`

	OperationalExcellenceNotes string `json:"operational_excellence_notes,omitempty"`
	SecurityNotes              string `json:"security_notes,omitempty"`
	ReliabilityNotes           string `json:"reliability_notes,omitempty"`
	PerformanceNotes           string `json:"performance_notes,omitempty"`
	CostOptimizationNotes      string `json:"cost_optimization_notes,omitempty"`
	SustainabilityNotes        string `json:"sustainability_notes,omitempty"`
}

// DesignOutput is the design agent's full reply.
type DesignOutput struct {
	Options []ArchitectureOption `json:"options"`
}

// FindOption returns the option with the given name, or false when absent.
func FindOption(options []ArchitectureOption, name string) (ArchitectureOption, bool) {
	for _, opt := range options {
		if opt.Name == name {
			return opt, true
		}
	}
	return ArchitectureOption{}, false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package design

// PillarScore is a single Well-Architected pillar score for one option.
type PillarScore struct {
	Pillar string `json:"pillar"`
	Score  int    `json:"score"`
	Notes  string `json:"notes"`
}

// OptionComparison holds the evaluation of one architecture option.
type OptionComparison struct {
	OptionName     string        `json:"option_name"`
	OverallScore   int           `json:"overall_score"`
	PillarScores   []PillarScore `json:"pillar_scores"`
	Strengths      []string      `json:"strengths"`
	Weaknesses     []string      `json:"weaknesses"`
	RiskAssessment string        `json:"risk_assessment"`
}

// Comparison is the compare agent's full reply: per-option scores plus a
// single recommendation.
type Comparison struct {
	Comparisons             []OptionComparison `json:"comparisons"`
	RecommendedOption       string             `json:"recommended_option"`
	RecommendationRationale string             `json:"recommendation_rationale"`
}

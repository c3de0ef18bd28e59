package models

// Prediction is a rule-based outcome forecast for a session
type Prediction struct {
	Outcome     string  `json:"outcome"`
	Probability float64 `json:"probability"`
	Reasoning   string  `json:"reasoning,omitempty"`
}

// Summary is the condensed, caller-facing projection of a session
type Summary struct {
	Domain          Domain       `json:"domain"`
	Stage           Stage        `json:"stage"`
	InsightCount    int          `json:"insightCount"`
	ProblemCount    int          `json:"problemCount"`
	SolutionCount   int          `json:"solutionCount"`
	Recommendations []string     `json:"recommendations"`
	Predictions     []Prediction `json:"predictions"`
}

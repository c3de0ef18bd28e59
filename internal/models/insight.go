package models

import "time"

// InsightType classifies an observation attached to a session
type InsightType string

const (
	InsightAssumption  InsightType = "assumption"
	InsightOpportunity InsightType = "opportunity"
	InsightRisk        InsightType = "risk"
	InsightPattern     InsightType = "pattern"
	InsightPrediction  InsightType = "prediction"
)

// InsightSource records who produced an insight
type InsightSource string

const (
	SourceUser     InsightSource = "user"
	SourceAI       InsightSource = "ai"
	SourceExternal InsightSource = "external"
)

// Insight is a discrete observation attached to a session
type Insight struct {
	ID         string        `json:"id"`
	Type       InsightType   `json:"type"`
	Content    string        `json:"content"`
	Confidence float64       `json:"confidence"`
	Source     InsightSource `json:"source"`
	Framework  string        `json:"framework"`
	Tags       []string      `json:"tags"`
	CreatedAt  time.Time     `json:"created_at"`
}

// InsightData holds the caller-supplied fields of a new insight
type InsightData struct {
	Type       InsightType
	Content    string
	Confidence float64
	Source     InsightSource
	Framework  string
	Tags       []string
}

func (i Insight) clone() Insight {
	i.Tags = append([]string{}, i.Tags...)
	return i
}

// Learning is a reusable pattern observed across sessions
type Learning struct {
	ID            string    `json:"id"`
	Pattern       string    `json:"pattern"`
	Evidence      []string  `json:"evidence"`
	Applicability []Domain  `json:"applicability"`
	Confidence    float64   `json:"confidence"`
	CreatedAt     time.Time `json:"created_at"`
}

// LearningData holds the caller-supplied fields of a new learning
type LearningData struct {
	Pattern       string
	Evidence      []string
	Applicability []Domain
	Confidence    float64
}

func (l Learning) clone() Learning {
	l.Evidence = append([]string{}, l.Evidence...)
	l.Applicability = append([]Domain{}, l.Applicability...)
	return l
}

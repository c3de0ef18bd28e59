package models

import (
	"fmt"
	"time"
)

// Outcome is the observed result of a decision. The empty value means no outcome was recorded.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeMixed   Outcome = "mixed"
	OutcomePending Outcome = "pending"
	OutcomeAbsent  Outcome = ""
)

// Decision is a choice recorded during a session
type Decision struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Decision   string    `json:"decision"`
	Reasoning  string    `json:"reasoning"`
	Confidence float64   `json:"confidence"`
	Outcome    Outcome   `json:"outcome,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DecisionData holds the caller-supplied fields of a new decision
type DecisionData struct {
	Question   string
	Decision   string
	Reasoning  string
	Confidence float64
	Outcome    Outcome
}

// ParseOutcome validates an outcome name. The empty string is OutcomeAbsent.
func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(s); o {
	case OutcomeSuccess, OutcomeFailure, OutcomeMixed, OutcomePending, OutcomeAbsent:
		return o, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOutcome, s)
	}
}

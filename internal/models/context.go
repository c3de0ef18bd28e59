package models

import (
	"fmt"
	"time"
)

// Domain is a coarse topical tag for a session
type Domain string

const (
	DomainFintech        Domain = "fintech"
	DomainHealthcare     Domain = "healthcare"
	DomainEcommerce      Domain = "ecommerce"
	DomainEducation      Domain = "education"
	DomainTransportation Domain = "transportation"
	DomainGeneral        Domain = "general"
)

// Domains lists the closed domain tag set in classification order
var Domains = []Domain{
	DomainFintech,
	DomainHealthcare,
	DomainEcommerce,
	DomainEducation,
	DomainTransportation,
	DomainGeneral,
}

// ParseDomain validates a domain tag
func ParseDomain(s string) (Domain, error) {
	for _, d := range Domains {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
}

// Stage is a session's position in the discovery-to-execution progression
type Stage string

const (
	StageDiscovery  Stage = "discovery"
	StageIdeation   Stage = "ideation"
	StageValidation Stage = "validation"
	StagePlanning   Stage = "planning"
	StageExecution  Stage = "execution"
)

// Stages lists every stage in progression order
var Stages = []Stage{StageDiscovery, StageIdeation, StageValidation, StagePlanning, StageExecution}

// Rank returns the position of the stage in the progression, or -1 if unknown
func (s Stage) Rank() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// ParseStage validates a stage name
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	if st.Rank() < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
	}
	return st, nil
}

// SessionContext is the mutable record of one brainstorming session
type SessionContext struct {
	ID          string     `json:"id"`
	Domain      Domain     `json:"domain"`
	Stage       Stage      `json:"stage"`
	Problems    []string   `json:"problems"`
	Solutions   []string   `json:"solutions"`
	Assumptions []string   `json:"assumptions"`
	Insights    []Insight  `json:"insights"`
	Decisions   []Decision `json:"decisions"`
	Learnings   []Learning `json:"learnings"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewSessionContext creates a session context in the discovery stage
func NewSessionContext(id string, domain Domain, now time.Time) *SessionContext {
	if domain == "" {
		domain = DomainGeneral
	}
	return &SessionContext{
		ID:          id,
		Domain:      domain,
		Stage:       StageDiscovery,
		Problems:    []string{},
		Solutions:   []string{},
		Assumptions: []string{},
		Insights:    []Insight{},
		Decisions:   []Decision{},
		Learnings:   []Learning{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy that shares no slices with the receiver
func (c *SessionContext) Clone() *SessionContext {
	if c == nil {
		return nil
	}
	out := *c
	out.Problems = append([]string{}, c.Problems...)
	out.Solutions = append([]string{}, c.Solutions...)
	out.Assumptions = append([]string{}, c.Assumptions...)

	out.Insights = make([]Insight, len(c.Insights))
	for i, in := range c.Insights {
		out.Insights[i] = in.clone()
	}
	out.Decisions = append([]Decision{}, c.Decisions...)
	out.Learnings = make([]Learning, len(c.Learnings))
	for i, l := range c.Learnings {
		out.Learnings[i] = l.clone()
	}
	return &out
}

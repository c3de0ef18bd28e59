// Package intelligence tracks an evolving brainstorming session and derives
// recommendations and predictions from what has accumulated in it.
package intelligence

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shubh-37/prosora/internal/models"
)

// ErrStageRegression is returned when an explicit stage change would move backwards.
var ErrStageRegression = errors.New("stage cannot move backwards")

var stageRecommendations = map[models.Stage][]string{
	models.StageDiscovery: {
		"Consider first principles analysis to question fundamental assumptions",
		"Explore user pain points using empathy mapping",
	},
	models.StageIdeation: {
		"Apply SCAMPER framework to generate more solution variants",
		"Use 'How Might We' questions to reframe problems",
	},
	models.StageValidation: {
		"Create testable hypotheses for your key assumptions",
		"Design lean experiments to validate core value propositions",
	},
}

var fintechRecommendations = []string{
	"Consider regulatory compliance early in design",
	"Explore trust and security as core value propositions",
}

const (
	prioritizeTestingRecommendation = "You have many assumptions - consider prioritizing which to test first"
	assumptionOverloadThreshold     = 5
	paralysisAssumptionThreshold    = 10
	fitInsightThreshold             = 3
)

var (
	fitPrediction = models.Prediction{
		Outcome:     "High likelihood of finding product-market fit",
		Probability: 0.75,
		Reasoning:   "Strong problem definition with multiple solutions and deep insights",
	}
	paralysisPrediction = models.Prediction{
		Outcome:     "Risk of analysis paralysis",
		Probability: 0.6,
		Reasoning:   "Many unvalidated assumptions may slow decision making",
	}
)

// Engine is the sole mutator of one SessionContext.
type Engine struct {
	mu  sync.RWMutex
	ctx *models.SessionContext
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine binds an engine to ctx. The engine takes ownership of ctx.
func NewEngine(ctx *models.SessionContext, opts ...Option) *Engine {
	e := &Engine{ctx: ctx, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SessionID returns the id of the bound context.
func (e *Engine) SessionID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ctx.ID
}

// AddInsight appends a new insight and re-evaluates the stage.
func (e *Engine) AddInsight(data models.InsightData) models.Insight {
	e.mu.Lock()
	defer e.mu.Unlock()

	insight := models.Insight{
		ID:         newID("insight"),
		Type:       data.Type,
		Content:    data.Content,
		Confidence: data.Confidence,
		Source:     data.Source,
		Framework:  data.Framework,
		Tags:       append([]string{}, data.Tags...),
		CreatedAt:  e.now(),
	}

	e.ctx.Insights = append(e.ctx.Insights, insight)
	e.touch()

	return insight
}

// RecordDecision appends a new decision and re-evaluates the stage.
func (e *Engine) RecordDecision(data models.DecisionData) models.Decision {
	e.mu.Lock()
	defer e.mu.Unlock()

	decision := models.Decision{
		ID:         newID("decision"),
		Question:   data.Question,
		Decision:   data.Decision,
		Reasoning:  data.Reasoning,
		Confidence: data.Confidence,
		Outcome:    data.Outcome,
		CreatedAt:  e.now(),
	}

	e.ctx.Decisions = append(e.ctx.Decisions, decision)
	e.touch()

	return decision
}

// AddLearning appends a learning to the session.
func (e *Engine) AddLearning(data models.LearningData) models.Learning {
	e.mu.Lock()
	defer e.mu.Unlock()

	learning := models.Learning{
		ID:            newID("learning"),
		Pattern:       data.Pattern,
		Evidence:      append([]string{}, data.Evidence...),
		Applicability: append([]models.Domain{}, data.Applicability...),
		Confidence:    data.Confidence,
		CreatedAt:     e.now(),
	}

	e.ctx.Learnings = append(e.ctx.Learnings, learning)
	e.touch()

	return learning
}

// AddProblem appends text to the problem list unless it is already present.
// It reports whether the text was appended.
func (e *Engine) AddProblem(text string) bool {
	return e.appendUnique(&e.ctx.Problems, text)
}

// AddSolution appends text to the solution list unless it is already present.
func (e *Engine) AddSolution(text string) bool {
	return e.appendUnique(&e.ctx.Solutions, text)
}

// AddAssumption appends text to the assumption list unless it is already present.
func (e *Engine) AddAssumption(text string) bool {
	return e.appendUnique(&e.ctx.Assumptions, text)
}

func (e *Engine) appendUnique(list *[]string, text string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, existing := range *list {
		if existing == text {
			return false
		}
	}

	*list = append(*list, text)
	e.touch()
	return true
}

// SetStage moves the session to stage. Planning and execution are only reachable this way.
func (e *Engine) SetStage(stage models.Stage) error {
	if stage.Rank() < 0 {
		return fmt.Errorf("%w: %q", models.ErrUnknownStage, stage)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if stage.Rank() < e.ctx.Stage.Rank() {
		return fmt.Errorf("%w: %s -> %s", ErrStageRegression, e.ctx.Stage, stage)
	}

	e.ctx.Stage = stage
	e.ctx.UpdatedAt = e.now()
	return nil
}

// SetDomain overrides the classified domain.
func (e *Engine) SetDomain(domain models.Domain) error {
	if _, err := models.ParseDomain(string(domain)); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.ctx.Domain = domain
	e.ctx.UpdatedAt = e.now()
	return nil
}

// touch refreshes updatedAt and applies the automatic stage transitions.
// Callers must hold the write lock.
func (e *Engine) touch() {
	e.ctx.UpdatedAt = e.now()

	if e.ctx.Stage == models.StageDiscovery && len(e.ctx.Problems) > 0 {
		e.ctx.Stage = models.StageIdeation
	}
	if e.ctx.Stage == models.StageIdeation && len(e.ctx.Solutions) > 0 {
		e.ctx.Stage = models.StageValidation
	}
}

// GenerateRecommendations returns stage, domain and pattern based suggestions in that order.
// The list is neither deduplicated nor capped.
func (e *Engine) GenerateRecommendations() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.recommendations()
}

func (e *Engine) recommendations() []string {
	recommendations := []string{}
	recommendations = append(recommendations, stageRecommendations[e.ctx.Stage]...)

	if e.ctx.Domain == models.DomainFintech {
		recommendations = append(recommendations, fintechRecommendations...)
	}

	assumptions := 0
	for _, insight := range e.ctx.Insights {
		if insight.Type == models.InsightAssumption {
			assumptions++
		}
	}
	if assumptions > assumptionOverloadThreshold {
		recommendations = append(recommendations, prioritizeTestingRecommendation)
	}

	return recommendations
}

// PredictOutcomes evaluates the fit and paralysis rules independently, fit first.
func (e *Engine) PredictOutcomes() []models.Prediction {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.predictions()
}

func (e *Engine) predictions() []models.Prediction {
	predictions := []models.Prediction{}

	if len(e.ctx.Problems) > 0 && len(e.ctx.Solutions) > 0 && len(e.ctx.Insights) > fitInsightThreshold {
		predictions = append(predictions, fitPrediction)
	}

	if len(e.ctx.Assumptions) > paralysisAssumptionThreshold {
		predictions = append(predictions, paralysisPrediction)
	}

	return predictions
}

// GetRelevantLearnings returns learnings that apply to the session's domain or whose
// pattern mentions topic.
func (e *Engine) GetRelevantLearnings(topic string) []models.Learning {
	e.mu.RLock()
	defer e.mu.RUnlock()

	topic = strings.ToLower(topic)
	relevant := []models.Learning{}

	for _, learning := range e.ctx.Learnings {
		if appliesTo(learning, e.ctx.Domain) || strings.Contains(strings.ToLower(learning.Pattern), topic) {
			relevant = append(relevant, learning)
		}
	}

	return relevant
}

func appliesTo(learning models.Learning, domain models.Domain) bool {
	for _, d := range learning.Applicability {
		if d == domain {
			return true
		}
	}
	return false
}

// ExportContext returns an independent deep copy of the session context.
func (e *Engine) ExportContext() *models.SessionContext {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ctx.Clone()
}

// Snapshot returns a copy of the context together with the recommendations and
// predictions derived from that same state.
func (e *Engine) Snapshot() (*models.SessionContext, []string, []models.Prediction) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ctx.Clone(), e.recommendations(), e.predictions()
}

// Fork returns an independent engine over a copy of the context. Changes made
// through the fork are invisible to the receiver until the fork is saved.
func (e *Engine) Fork() *Engine {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &Engine{ctx: e.ctx.Clone(), now: e.now}
}

// newID returns a prefixed, time-ordered identifier.
func newID(prefix string) string {
	return prefix + "_" + uuid.Must(uuid.NewV7()).String()
}

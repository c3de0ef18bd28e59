package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shubh-37/prosora/internal/linear"
	"github.com/shubh-37/prosora/internal/models"
	"github.com/shubh-37/prosora/internal/store"
)

// ErrSessionNotFound is returned when an operation names a session that does not exist.
var ErrSessionNotFound = errors.New("session not found")

// IssueCreator files issues in a tracker.
type IssueCreator interface {
	CreateIssue(ctx context.Context, title, description string) (*linear.Issue, error)
}

// Exporter turns a session into a tracker issue.
type Exporter struct {
	store   *store.ContextStore
	tracker IssueCreator
	logger  *zap.Logger
}

func NewExporter(st *store.ContextStore, tracker IssueCreator, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{store: st, tracker: tracker, logger: logger}
}

// Export creates an issue summarising the session's state.
func (e *Exporter) Export(ctx context.Context, sessionID string) (*linear.Issue, error) {
	engine, ok, err := e.store.Engine(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	sessionCtx := engine.ExportContext()
	summary := store.Summarize(engine)

	title := fmt.Sprintf("Brainstorm: %s (%s)", sessionCtx.Domain, sessionCtx.Stage)
	issue, err := e.tracker.CreateIssue(ctx, title, RenderIssueDescription(sessionCtx, summary))
	if err != nil {
		return nil, fmt.Errorf("failed to export session %s: %w", sessionID, err)
	}

	e.logger.Info("📤 session exported",
		zap.String("session_id", sessionID),
		zap.String("issue", issue.Identifier))

	return issue, nil
}

// RenderIssueDescription renders the session as markdown.
func RenderIssueDescription(c *models.SessionContext, s models.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Session:** `%s`\n", c.ID)
	fmt.Fprintf(&b, "**Domain:** %s  \n**Stage:** %s  \n**Insights:** %d\n", s.Domain, s.Stage, s.InsightCount)

	writeList(&b, "Problems", c.Problems)
	writeList(&b, "Solutions", c.Solutions)
	writeList(&b, "Assumptions", c.Assumptions)

	if len(c.Decisions) > 0 {
		b.WriteString("\n## Decisions\n")
		for _, d := range c.Decisions {
			fmt.Fprintf(&b, "- **%s** → %s", d.Question, d.Decision)
			if d.Reasoning != "" {
				fmt.Fprintf(&b, " (%s)", d.Reasoning)
			}
			if d.Outcome != models.OutcomeAbsent {
				fmt.Fprintf(&b, " [%s]", d.Outcome)
			}
			b.WriteString("\n")
		}
	}

	writeList(&b, "Recommendations", s.Recommendations)

	if len(s.Predictions) > 0 {
		b.WriteString("\n## Predictions\n")
		for _, p := range s.Predictions {
			fmt.Fprintf(&b, "- %s (%.0f%%)\n", p.Outcome, p.Probability*100)
		}
	}

	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubh-37/prosora/internal/linear"
	"github.com/shubh-37/prosora/internal/models"
	"github.com/shubh-37/prosora/internal/store"
)

type fakeTracker struct {
	title       string
	description string
	err         error
}

func (f *fakeTracker) CreateIssue(ctx context.Context, title, description string) (*linear.Issue, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.title, f.description = title, description
	return &linear.Issue{ID: "1", Identifier: "PRO-1", Title: title}, nil
}

func TestExporter_Export(t *testing.T) {
	st := store.New(store.NewMemoryBackend())
	ctx := context.Background()

	engine, err := st.GetOrCreate(ctx, "s1", &store.InitialData{Domain: models.DomainFintech})
	require.NoError(t, err)
	engine.AddProblem("fees are hidden")
	engine.RecordDecision(models.DecisionData{
		Question:  "Launch market?",
		Decision:  "EU",
		Reasoning: "open banking",
		Outcome:   models.OutcomePending,
	})

	tracker := &fakeTracker{}
	issue, err := NewExporter(st, tracker, nil).Export(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, "PRO-1", issue.Identifier)
	assert.Equal(t, "Brainstorm: fintech (ideation)", tracker.title)
	assert.Contains(t, tracker.description, "## Problems\n- fees are hidden\n")
	assert.Contains(t, tracker.description, "- **Launch market?** → EU (open banking) [pending]")
	assert.Contains(t, tracker.description, "## Recommendations")
	assert.NotContains(t, tracker.description, "## Solutions")
}

func TestExporter_MissingSession(t *testing.T) {
	st := store.New(store.NewMemoryBackend())

	_, err := NewExporter(st, &fakeTracker{}, nil).Export(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestExporter_TrackerFailure(t *testing.T) {
	st := store.New(store.NewMemoryBackend())
	ctx := context.Background()
	_, err := st.GetOrCreate(ctx, "s1", nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = NewExporter(st, &fakeTracker{err: boom}, nil).Export(ctx, "s1")
	assert.ErrorIs(t, err, boom)
}

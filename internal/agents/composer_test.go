package agents

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubh-37/prosora/internal/models"
)

func TestCompose_Layout(t *testing.T) {
	summary := models.Summary{
		Domain:          models.DomainHealthcare,
		Stage:           models.StageValidation,
		InsightCount:    4,
		ProblemCount:    1,
		SolutionCount:   1,
		Recommendations: []string{"r1", "r2"},
		Predictions:     []models.Prediction{{Outcome: "High likelihood of finding product-market fit", Probability: 0.75}},
	}
	framework := &models.FrameworkTemplate{Name: "Empathy Map", Description: "Understand users"}

	prompt := Compose(summary, ModeDesignThinking, []Message{{Role: "user", Content: "earlier"}}, "now", framework)

	sections := []string{
		"You are a Product Idea Assistant",
		"Thinking mode: design thinking.",
		"Intelligence context:",
		"- Domain: healthcare",
		"- Stage: validation",
		"- Insights so far: 4 (problems: 1, solutions: 1)",
		"  - r1",
		"  - High likelihood of finding product-market fit (75%)",
		"Suggested framework: Empathy Map - Understand users",
		"Previous conversation context:\nUser: earlier",
		"User: now\n\nAssistant:",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(prompt, s)
		require.GreaterOrEqual(t, idx, 0, "missing %q", s)
		assert.Greater(t, idx, last, "%q out of order", s)
		last = idx
	}
}

func TestCompose_NoFrameworkNoHistory(t *testing.T) {
	prompt := Compose(models.Summary{Domain: models.DomainGeneral, Stage: models.StageDiscovery}, "", nil, "hi", nil)

	assert.NotContains(t, prompt, "Suggested framework")
	assert.NotContains(t, prompt, "- Predictions:")
	assert.Contains(t, prompt, "Thinking mode: idea generation.")
	assert.True(t, strings.HasSuffix(prompt, "Previous conversation context:\n\nUser: hi\n\nAssistant:"))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeIdeas, m)

	m, err = ParseMode("frameworks")
	require.NoError(t, err)
	assert.Equal(t, ModeFrameworks, m)
	assert.Equal(t, "🧠", m.Emoji())

	_, err = ParseMode("vibes")
	assert.Error(t, err)
}

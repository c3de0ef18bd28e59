package slack

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/slack-go/slack/slackevents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubh-37/prosora/internal/agents"
	"github.com/shubh-37/prosora/internal/linear"
	"github.com/shubh-37/prosora/internal/llm"
	"github.com/shubh-37/prosora/internal/models"
)

func message(text string) *slackevents.MessageEvent {
	return &slackevents.MessageEvent{Channel: "C1", User: "U1", Text: text, TimeStamp: "100.1"}
}

func TestSessionID(t *testing.T) {
	assert.Equal(t, "slack_C1", SessionID("C1", ""))
	assert.Equal(t, "slack_C1_123.456", SessionID("C1", "123.456"))
}

func TestHandleMessage_RunsTurn(t *testing.T) {
	h := newHarness(nil)
	h.messenger.history = []agents.Message{{Role: "user", Content: "earlier thought"}}
	ctx := context.Background()

	require.NoError(t, h.messages.HandleMessage(ctx, message("Invoicing is a problem for freelancers")))

	reply := h.messenger.last()
	assert.Equal(t, "C1", reply.channel)
	assert.Empty(t, reply.threadTS)
	assert.True(t, strings.HasPrefix(reply.text, "1. Invoice autopilot"))
	assert.Contains(t, reply.text, "stage *ideation*")
	assert.Contains(t, reply.text, "`framework five-whys`")

	assert.Contains(t, h.llm.prompts[0], "User: earlier thought")

	summary, ok, err := h.store.GetSummary(ctx, "slack_C1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, summary.ProblemCount)
}

func TestHandleMessage_ThreadIsItsOwnSession(t *testing.T) {
	h := newHarness(nil)
	ev := message("hello there")
	ev.ThreadTimeStamp = "50.5"

	require.NoError(t, h.messages.HandleMessage(context.Background(), ev))

	assert.Equal(t, "50.5", h.messenger.last().threadTS)
	_, ok, err := h.store.GetSummary(context.Background(), "slack_C1_50.5")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHandleMessage_Ignored(t *testing.T) {
	h := newHarness(nil)
	ctx := context.Background()

	bot := message("hi")
	bot.BotID = "B1"
	self := message("hi")
	self.User = "UBOT"
	edited := message("hi")
	edited.SubType = "message_changed"

	for _, ev := range []*slackevents.MessageEvent{bot, self, edited, message("   "), message("<@UBOT> hi")} {
		require.NoError(t, h.messages.HandleMessage(ctx, ev))
	}
	assert.Zero(t, h.messenger.count())
}

func TestHandleAppMention_StripsMention(t *testing.T) {
	h := newHarness(nil)
	ctx := context.Background()

	err := h.messages.HandleAppMention(ctx, &slackevents.AppMentionEvent{
		Channel: "C1", User: "U1", Text: "<@UBOT> summary", TimeStamp: "1.1",
	})
	require.NoError(t, err)
	assert.Equal(t, noSessionMessage, h.messenger.last().text)

	err = h.messages.HandleAppMention(ctx, &slackevents.AppMentionEvent{Channel: "C1", User: "U1", Text: "<@UBOT>", TimeStamp: "1.2"})
	require.NoError(t, err)
	assert.Contains(t, h.messenger.last().text, "*Commands:*")
}

func TestHandleMessage_LLMFailureReportsAndLeavesNoSession(t *testing.T) {
	h := newHarness(nil)
	h.llm.err = fmt.Errorf("%w: 429", llm.ErrQuota)

	err := h.messages.HandleMessage(context.Background(), message("ideas please"))
	assert.ErrorIs(t, err, llm.ErrQuota)
	assert.Equal(t, "⏳ API quota exceeded. Please try again later.", h.messenger.last().text)

	_, ok, err := h.store.GetSummary(context.Background(), "slack_C1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCommands(t *testing.T) {
	h := newHarness(nil)
	ctx := context.Background()
	send := func(text string) string {
		t.Helper()
		require.NoError(t, h.messages.HandleMessage(ctx, message(text)))
		return h.messenger.last().text
	}

	assert.Equal(t, noSessionMessage, send("assume people pay"))

	send("fintech app for payments")
	assert.Equal(t, "📝 Assumption recorded.", send("assume people pay"))
	assert.Equal(t, "ℹ️ That assumption is already recorded.", send("assume people pay"))

	assert.Contains(t, send("decide pricing? => freemium because adoption"), "Decision recorded: *pricing?* → freemium")
	assert.Equal(t, "✅ Stage set to *planning*.", send("stage planning"))
	assert.Contains(t, send("stage discovery"), "only move forward")
	assert.Equal(t, "❌ Unknown stage 'launch'.", send("stage launch"))

	engine, ok, err := h.store.Engine(ctx, "slack_C1")
	require.NoError(t, err)
	require.True(t, ok)
	exported := engine.ExportContext()
	assert.Equal(t, []string{"people pay"}, exported.Assumptions)
	require.Len(t, exported.Decisions, 1)
	assert.Equal(t, "adoption", exported.Decisions[0].Reasoning)
	assert.Equal(t, models.StagePlanning, exported.Stage)

	assert.Contains(t, send("summary"), "stage *planning*")
	assert.Contains(t, send("frameworks validation"), "`lean-canvas`")
	assert.Contains(t, send("framework scamper"), "*SCAMPER Ideation*")
	assert.Contains(t, send("framework nope"), "Unknown framework")
	assert.Equal(t, "⚠️ Linear export is not configured.", send("export linear"))

	assert.Contains(t, send("reset"), "Session cleared")
	_, ok, err = h.store.GetSummary(ctx, "slack_C1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCommands_ShapeMismatchFallsThroughToTurn(t *testing.T) {
	h := newHarness(nil)

	require.NoError(t, h.messages.HandleMessage(context.Background(), message("summary of the lending market")))
	assert.Len(t, h.llm.prompts, 1)
}

type fakeExporter struct{ err error }

func (f fakeExporter) Export(ctx context.Context, sessionID string) (*linear.Issue, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &linear.Issue{Identifier: "PRO-9", URL: "https://linear.app/i/PRO-9"}, nil
}

func TestCommands_ExportLinear(t *testing.T) {
	h := newHarness(fakeExporter{})
	require.NoError(t, h.messages.HandleMessage(context.Background(), message("export linear")))
	assert.Equal(t, "📤 Exported as *PRO-9*: https://linear.app/i/PRO-9", h.messenger.last().text)

	h = newHarness(fakeExporter{err: errors.New("down")})
	require.NoError(t, h.messages.HandleMessage(context.Background(), message("export linear")))
	assert.Equal(t, "❌ Failed to export to Linear.", h.messenger.last().text)
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		in   string
		want models.DecisionData
		ok   bool
	}{
		{"pricing => freemium", models.DecisionData{Question: "pricing", Decision: "freemium", Confidence: 0.7, Outcome: models.OutcomePending}, true},
		{"who first? => SMBs Because they churn less", models.DecisionData{Question: "who first?", Decision: "SMBs", Reasoning: "they churn less", Confidence: 0.7, Outcome: models.OutcomePending}, true},
		{" => nothing", models.DecisionData{}, false},
		{"no arrow", models.DecisionData{}, false},
	}

	for _, tt := range tests {
		got, ok := parseDecision(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"

	"github.com/shubh-37/prosora/internal/agents"
	"github.com/shubh-37/prosora/internal/models"
)

const historyLimit = 10

// SessionID names the session for a channel, or for one thread inside it.
func SessionID(channelID, threadTS string) string {
	if threadTS == "" {
		return "slack_" + channelID
	}
	return "slack_" + channelID + "_" + threadTS
}

// TurnRunner runs one brainstorming turn.
type TurnRunner interface {
	ProcessTurn(ctx context.Context, req agents.TurnRequest) (*agents.TurnResult, error)
}

type MessageHandler struct {
	messenger       Messenger
	turns           TurnRunner
	commandHandler  *CommandHandler
	approvalHandler *ApprovalHandler
	logger          *zap.Logger
}

func NewMessageHandler(
	messenger Messenger,
	turns TurnRunner,
	commandHandler *CommandHandler,
	approvalHandler *ApprovalHandler,
	logger *zap.Logger,
) *MessageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageHandler{
		messenger:       messenger,
		turns:           turns,
		commandHandler:  commandHandler,
		approvalHandler: approvalHandler,
		logger:          logger,
	}
}

func (h *MessageHandler) HandleMessage(ctx context.Context, event *slackevents.MessageEvent) error {
	if event.BotID != "" {
		return nil
	}

	if event.User == h.messenger.BotID() {
		return nil
	}

	if event.SubType != "" {
		return nil
	}

	if strings.TrimSpace(event.Text) == "" {
		return nil
	}

	// mentions arrive again as app_mention events
	if strings.HasPrefix(strings.TrimSpace(event.Text), "<@") {
		return nil
	}

	return h.handle(ctx, event.Channel, event.ThreadTimeStamp, event.TimeStamp, strings.TrimSpace(event.Text))
}

func (h *MessageHandler) HandleAppMention(ctx context.Context, event *slackevents.AppMentionEvent) error {
	if event.BotID != "" {
		return nil
	}

	text := strings.TrimSpace(strings.Replace(event.Text, "<@"+h.messenger.BotID()+">", "", 1))
	if text == "" {
		return h.commandHandler.sendHelp(ctx, event.Channel, event.ThreadTimeStamp)
	}

	return h.handle(ctx, event.Channel, event.ThreadTimeStamp, event.TimeStamp, text)
}

func (h *MessageHandler) handle(ctx context.Context, channelID, threadTS, messageTS, text string) error {
	sessionID := SessionID(channelID, threadTS)

	handled, err := h.commandHandler.Handle(ctx, sessionID, channelID, threadTS, text)
	if handled || err != nil {
		return err
	}

	history, err := h.messenger.History(ctx, channelID, threadTS, messageTS, historyLimit)
	if err != nil {
		h.logger.Warn("⚠️ could not load history", zap.String("channel", channelID), zap.Error(err))
		history = nil
	}

	result, err := h.turns.ProcessTurn(ctx, agents.TurnRequest{
		SessionID: sessionID,
		Message:   text,
		History:   history,
	})
	if err != nil {
		h.logger.Error("❌ turn failed", zap.String("session_id", sessionID), zap.Error(err))
		_, postErr := h.messenger.Post(ctx, channelID, threadTS, turnErrorMessage(err))
		if postErr != nil {
			return postErr
		}
		return err
	}

	replyTS, err := h.messenger.Post(ctx, channelID, threadTS, FormatReply(result))
	if err != nil {
		return err
	}

	h.approvalHandler.TrackReply(replyTS, sessionID, threadTS, text)
	return nil
}

// FormatReply renders a turn result followed by a compact summary line.
func FormatReply(result *agents.TurnResult) string {
	var b strings.Builder
	b.WriteString(result.ResponseText)
	b.WriteString("\n\n")
	b.WriteString(formatSummary(result.Summary))
	if result.Framework != nil {
		fmt.Fprintf(&b, "\n🧠 Try the *%s* framework: `framework %s`", result.Framework.Name, result.Framework.ID)
	}
	b.WriteString("\n_React with ✅ to accept this direction or ❌ to reject it._")
	return b.String()
}

func formatSummary(s models.Summary) string {
	line := fmt.Sprintf("📊 *%s* · stage *%s* · %d insights · %d problems · %d solutions",
		s.Domain, s.Stage, s.InsightCount, s.ProblemCount, s.SolutionCount)
	if len(s.Recommendations) > 0 {
		line += "\n💡 " + s.Recommendations[0]
	}
	for _, p := range s.Predictions {
		line += fmt.Sprintf("\n🔮 %s (%.0f%%)", p.Outcome, p.Probability*100)
	}
	return line
}

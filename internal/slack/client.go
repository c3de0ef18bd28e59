package slack

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/shubh-37/prosora/internal/agents"
)

// Messenger is the part of the Slack Web API the handlers need.
type Messenger interface {
	BotID() string
	Post(ctx context.Context, channelID, threadTS, text string) (string, error)
	// History returns up to limit messages older than beforeTS, oldest first.
	History(ctx context.Context, channelID, threadTS, beforeTS string, limit int) ([]agents.Message, error)
}

type Client struct {
	api    *slack.Client
	botID  string
	logger *zap.Logger
}

func NewClient(ctx context.Context, token string, logger *zap.Logger, opts ...slack.Option) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	api := slack.New(token, opts...)

	authTest, err := api.AuthTestContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with Slack: %w", err)
	}

	logger.Info("💬 slack client authenticated",
		zap.String("team", authTest.Team),
		zap.String("bot_user", authTest.UserID))

	return &Client{
		api:    api,
		botID:  authTest.UserID,
		logger: logger,
	}, nil
}

func (c *Client) BotID() string {
	return c.botID
}

// Post sends text to the channel, inside threadTS when it is set, and returns
// the new message's timestamp.
func (c *Client) Post(ctx context.Context, channelID, threadTS, text string) (string, error) {
	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}

	_, timestamp, err := c.api.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to post message: %w", err)
	}
	return timestamp, nil
}

func (c *Client) History(ctx context.Context, channelID, threadTS, beforeTS string, limit int) ([]agents.Message, error) {
	var messages []slack.Message

	if threadTS != "" {
		replies, _, _, err := c.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
			ChannelID: channelID,
			Timestamp: threadTS,
			Latest:    beforeTS,
			Limit:     limit,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch thread replies: %w", err)
		}
		messages = replies
	} else {
		history, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
			ChannelID: channelID,
			Latest:    beforeTS,
			Limit:     limit,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch channel history: %w", err)
		}
		// conversations.history is newest first
		for i := len(history.Messages) - 1; i >= 0; i-- {
			messages = append(messages, history.Messages[i])
		}
	}

	out := make([]agents.Message, 0, len(messages))
	for _, m := range messages {
		if m.Timestamp == beforeTS || m.Text == "" {
			continue
		}
		role := "user"
		if m.BotID != "" || m.User == c.botID {
			role = "assistant"
		}
		out = append(out, agents.Message{Role: role, Content: m.Text})
	}
	return out, nil
}

package slack

import (
	"context"
	"fmt"
	"sync"

	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"

	"github.com/shubh-37/prosora/internal/models"
	"github.com/shubh-37/prosora/internal/store"
)

const maxTrackedReplies = 1000

type trackedReply struct {
	sessionID string
	threadTS  string
	question  string
}

// ApprovalHandler turns reactions on bot replies into recorded decisions.
type ApprovalHandler struct {
	messenger Messenger
	store     *store.ContextStore
	logger    *zap.Logger

	mu      sync.Mutex
	replies map[string]trackedReply // reply ts -> turn
	order   []string
}

func NewApprovalHandler(messenger Messenger, st *store.ContextStore, logger *zap.Logger) *ApprovalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalHandler{
		messenger: messenger,
		store:     st,
		logger:    logger,
		replies:   make(map[string]trackedReply),
	}
}

// TrackReply remembers which session and user message a bot reply belongs to.
func (h *ApprovalHandler) TrackReply(replyTS, sessionID, threadTS, question string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.replies[replyTS]; !exists {
		h.order = append(h.order, replyTS)
	}
	h.replies[replyTS] = trackedReply{sessionID: sessionID, threadTS: threadTS, question: question}

	for len(h.order) > maxTrackedReplies {
		delete(h.replies, h.order[0])
		h.order = h.order[1:]
	}

	h.logger.Debug("📌 tracking reply", zap.String("ts", replyTS), zap.String("session_id", sessionID))
}

func (h *ApprovalHandler) lookup(ts string) (trackedReply, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	reply, ok := h.replies[ts]
	return reply, ok
}

// HandleReaction processes reactions added to messages
func (h *ApprovalHandler) HandleReaction(ctx context.Context, event *slackevents.ReactionAddedEvent) error {
	if event.User == h.messenger.BotID() {
		return nil
	}

	reply, ok := h.lookup(event.Item.Timestamp)
	if !ok {
		return nil
	}

	switch event.Reaction {
	case "white_check_mark", "heavy_check_mark":
		return h.record(ctx, event, reply, models.DecisionData{
			Question:   reply.question,
			Decision:   "accepted",
			Reasoning:  "Approved via Slack reaction",
			Confidence: 0.8,
			Outcome:    models.OutcomePending,
		})
	case "x":
		return h.record(ctx, event, reply, models.DecisionData{
			Question:   reply.question,
			Decision:   "rejected",
			Reasoning:  "Rejected via Slack reaction",
			Confidence: 0.8,
		})
	}

	return nil
}

func (h *ApprovalHandler) record(ctx context.Context, event *slackevents.ReactionAddedEvent, reply trackedReply, data models.DecisionData) error {
	unlock := h.store.Lock(reply.sessionID)
	defer unlock()

	current, ok, err := h.store.Engine(ctx, reply.sessionID)
	if err != nil {
		return err
	}
	if !ok {
		h.logger.Info("reaction on a reply from a removed session", zap.String("session_id", reply.sessionID))
		return nil
	}

	engine := current.Fork()
	decision := engine.RecordDecision(data)
	if err := h.store.Save(ctx, reply.sessionID, engine); err != nil {
		return err
	}

	h.logger.Info("⚖️ decision recorded from reaction",
		zap.String("session_id", reply.sessionID),
		zap.String("decision", decision.Decision))

	_, err = h.messenger.Post(ctx, event.Item.Channel, reply.threadTS, fmt.Sprintf("⚖️ Marked as *%s*.", decision.Decision))
	return err
}

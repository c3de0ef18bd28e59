package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"
)

const eventTimeout = 2 * time.Minute

// Server receives Slack Events API callbacks. Events are acknowledged at once
// and handled in the background, since a turn can outlast Slack's 3s deadline.
type Server struct {
	messageHandler  *MessageHandler
	approvalHandler *ApprovalHandler
	signingSecret   string
	logger          *zap.Logger

	wg sync.WaitGroup
}

func NewServer(messageHandler *MessageHandler, approvalHandler *ApprovalHandler, signingSecret string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("🔐 slack signing secret configured", zap.Int("length", len(signingSecret)))
	return &Server{
		messageHandler:  messageHandler,
		approvalHandler: approvalHandler,
		signingSecret:   signingSecret,
		logger:          logger,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Warn("❌ error reading body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	sv, err := slack.NewSecretsVerifier(r.Header, s.signingSecret)
	if err != nil {
		s.logger.Warn("❌ error creating secrets verifier", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if _, err := sv.Write(body); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := sv.Ensure(); err != nil {
		s.logger.Warn("❌ error verifying signature", zap.Error(err))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	eventsAPIEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		s.logger.Warn("❌ error parsing event", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if eventsAPIEvent.Type == slackevents.URLVerification {
		var challenge *slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		s.logger.Info("✅ responding to URL verification challenge")
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(challenge.Challenge))
		return
	}

	// Slack redelivers events it thinks timed out; the first delivery is already being handled.
	if r.Header.Get("X-Slack-Retry-Num") != "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	if eventsAPIEvent.Type == slackevents.CallbackEvent {
		innerEvent := eventsAPIEvent.InnerEvent
		s.logger.Debug("📬 inner event", zap.String("type", innerEvent.Type))

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
			defer cancel()
			s.dispatch(ctx, innerEvent)
		}()
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) dispatch(ctx context.Context, innerEvent slackevents.EventsAPIInnerEvent) {
	var err error
	switch ev := innerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		err = s.messageHandler.HandleMessage(ctx, ev)
	case *slackevents.AppMentionEvent:
		err = s.messageHandler.HandleAppMention(ctx, ev)
	case *slackevents.ReactionAddedEvent:
		err = s.approvalHandler.HandleReaction(ctx, ev)
	default:
		s.logger.Debug("⚠️ unsupported event type", zap.String("type", innerEvent.Type))
		return
	}

	if err != nil {
		s.logger.Error("❌ error handling event", zap.String("type", innerEvent.Type), zap.Error(err))
	}
}

// Wait blocks until every in-flight event has been handled.
func (s *Server) Wait() {
	s.wg.Wait()
}

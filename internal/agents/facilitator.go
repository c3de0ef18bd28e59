package agents

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shubh-37/prosora/internal/frameworks"
	"github.com/shubh-37/prosora/internal/intelligence"
	"github.com/shubh-37/prosora/internal/llm"
	"github.com/shubh-37/prosora/internal/models"
	"github.com/shubh-37/prosora/internal/store"
)

// ErrEmptyMessage is returned when a turn carries no message text.
var ErrEmptyMessage = errors.New("message is required")

// Facilitator runs brainstorming turns: it feeds the session's intelligence
// context into the prompt and folds what the exchange revealed back into it.
type Facilitator struct {
	store   *store.ContextStore
	llm     llm.Client
	catalog *frameworks.Catalog
	logger  *zap.Logger
	now     func() time.Time
}

func NewFacilitator(st *store.ContextStore, client llm.Client, catalog *frameworks.Catalog, logger *zap.Logger) *Facilitator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = frameworks.Default()
	}
	return &Facilitator{
		store:   st,
		llm:     client,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// TurnRequest is one inbound user message.
type TurnRequest struct {
	SessionID  string // generated when empty
	Message    string
	History    []Message
	DomainHint models.Domain // used only when the session is new
	Mode       Mode
}

// TurnResult is the reply to a turn plus the post-turn session summary.
type TurnResult struct {
	SessionID    string                    `json:"sessionId"`
	ResponseText string                    `json:"response"`
	Summary      models.Summary            `json:"summary"`
	Framework    *models.FrameworkTemplate `json:"framework,omitempty"`
	Insights     []models.Insight          `json:"insights"`
}

// ProcessTurn runs one turn under the session lock. The context is only
// mutated after the LLM answers, so a failed or cancelled call leaves the
// session exactly as it was.
func (f *Facilitator) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeIdeas
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = NewSessionID(f.now())
	}

	unlock := f.store.Lock(sessionID)
	defer unlock()

	summary, exists, err := f.store.GetSummary(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	domain := summary.Domain
	if !exists {
		domain = req.DomainHint
		if domain == "" {
			domain = intelligence.Classify(message)
		}
		preview := intelligence.NewEngine(models.NewSessionContext(sessionID, domain, f.now()))
		summary = store.Summarize(preview)
	}

	var framework *models.FrameworkTemplate
	if tpl, ok := f.catalog.Suggest(message, domain); ok {
		framework = &tpl
	}

	prompt := Compose(summary, mode, req.History, message, framework)

	start := time.Now()
	response, err := f.llm.Generate(ctx, prompt)
	if err != nil {
		f.logger.Warn("❌ turn failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	current, err := f.store.GetOrCreate(ctx, sessionID, &store.InitialData{Domain: domain})
	if err != nil {
		return nil, err
	}
	engine := current.Fork()

	insights := []models.Insight{}
	for _, candidate := range intelligence.ExtractInsights(message+" "+response, string(mode)) {
		candidate.Source = models.SourceAI
		insights = append(insights, engine.AddInsight(candidate))
	}

	lower := strings.ToLower(message)
	if strings.Contains(lower, "problem") {
		engine.AddProblem(message)
	}
	if strings.Contains(lower, "solution") {
		engine.AddSolution(message)
	}

	if err := f.store.Save(ctx, sessionID, engine); err != nil {
		return nil, err
	}

	after := store.Summarize(engine)

	f.logger.Info("✅ turn processed",
		zap.String("session_id", sessionID),
		zap.String("domain", string(after.Domain)),
		zap.String("stage", string(after.Stage)),
		zap.Int("new_insights", len(insights)),
		zap.Duration("llm_latency", time.Since(start)))

	return &TurnResult{
		SessionID:    sessionID,
		ResponseText: response,
		Summary:      after,
		Framework:    framework,
		Insights:     insights,
	}, nil
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewSessionID returns session_<unix millis>_<9 random base36 chars>.
func NewSessionID(now time.Time) string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	return "session_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix)
}

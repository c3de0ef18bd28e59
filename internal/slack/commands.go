package slack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shubh-37/prosora/internal/frameworks"
	"github.com/shubh-37/prosora/internal/intelligence"
	"github.com/shubh-37/prosora/internal/linear"
	"github.com/shubh-37/prosora/internal/models"
	"github.com/shubh-37/prosora/internal/store"
)

// Exporter exports a session to the issue tracker.
type Exporter interface {
	Export(ctx context.Context, sessionID string) (*linear.Issue, error)
}

type CommandHandler struct {
	messenger Messenger
	store     *store.ContextStore
	catalog   *frameworks.Catalog
	exporter  Exporter // nil when Linear is not configured
	logger    *zap.Logger
}

func NewCommandHandler(messenger Messenger, st *store.ContextStore, catalog *frameworks.Catalog, exporter Exporter, logger *zap.Logger) *CommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = frameworks.Default()
	}
	return &CommandHandler{
		messenger: messenger,
		store:     st,
		catalog:   catalog,
		exporter:  exporter,
		logger:    logger,
	}
}

// Handle runs text as a command if it is one. Text that does not match a
// command's exact shape is left for the brainstorming turn.
func (h *CommandHandler) Handle(ctx context.Context, sessionID, channelID, threadTS, text string) (bool, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false, nil
	}
	cmd := strings.ToLower(fields[0])
	rest := strings.TrimSpace(text[len(fields[0]):])

	reply := func(msg string) (bool, error) {
		_, err := h.messenger.Post(ctx, channelID, threadTS, msg)
		return true, err
	}

	switch {
	case cmd == "help" && len(fields) == 1:
		return true, h.sendHelp(ctx, channelID, threadTS)

	case cmd == "summary" && len(fields) == 1:
		return reply(h.summary(ctx, sessionID))

	case cmd == "frameworks" && len(fields) <= 2:
		return reply(h.listFrameworks(rest))

	case cmd == "framework" && len(fields) == 2:
		return reply(h.showFramework(fields[1]))

	case cmd == "stage" && len(fields) == 2:
		return reply(h.setStage(ctx, sessionID, strings.ToLower(fields[1])))

	case cmd == "assume" && rest != "":
		return reply(h.addAssumption(ctx, sessionID, rest))

	case cmd == "decide" && strings.Contains(rest, "=>"):
		return reply(h.decide(ctx, sessionID, rest))

	case cmd == "reset" && len(fields) == 1:
		return reply(h.reset(ctx, sessionID))

	case cmd == "export" && len(fields) == 2 && strings.EqualFold(fields[1], "linear"):
		return reply(h.export(ctx, sessionID))
	}

	return false, nil
}

func (h *CommandHandler) sendHelp(ctx context.Context, channelID, threadTS string) error {
	helpText := `*Prosora Brainstorming Bot*

Talk to me about a product idea and I'll brainstorm with you, keeping track of what we learn.
Each channel is one session; each thread is its own session.

*Commands:*
- ` + "`summary`" + ` - Show the session's domain, stage, recommendations and predictions
- ` + "`frameworks [category]`" + ` - List thinking frameworks
- ` + "`framework <id>`" + ` - Show a framework template
- ` + "`stage <discovery|ideation|validation|planning|execution>`" + ` - Move the session forward
- ` + "`assume <text>`" + ` - Record an assumption
- ` + "`decide <question> => <decision> [because <reasoning>]`" + ` - Record a decision
- ` + "`export linear`" + ` - Create a Linear issue from this session
- ` + "`reset`" + ` - Forget this session
- ` + "`help`" + ` - Show this help

*Reactions:*
React to my replies with ✅ to accept the direction or ❌ to reject it.`

	_, err := h.messenger.Post(ctx, channelID, threadTS, helpText)
	return err
}

func (h *CommandHandler) summary(ctx context.Context, sessionID string) string {
	summary, ok, err := h.store.GetSummary(ctx, sessionID)
	if err != nil {
		h.logger.Error("failed to load summary", zap.String("session_id", sessionID), zap.Error(err))
		return "❌ Failed to load the session."
	}
	if !ok {
		return noSessionMessage
	}

	msg := "*Session Summary*\n\n" + formatSummary(summary)
	if len(summary.Recommendations) > 1 {
		msg += "\n\n*Recommendations:*\n"
		for _, r := range summary.Recommendations {
			msg += fmt.Sprintf("• %s\n", r)
		}
	}
	return msg
}

func (h *CommandHandler) listFrameworks(category string) string {
	templates := h.catalog.All()
	if category != "" {
		templates = h.catalog.ByCategory(models.FrameworkCategory(strings.ToLower(category)))
	}
	if len(templates) == 0 {
		return fmt.Sprintf("📭 No frameworks in category '%s'.", category)
	}

	msg := "*Thinking Frameworks*\n\n"
	for _, tpl := range templates {
		msg += fmt.Sprintf("• *%s* (`%s`, %s) - %s\n", tpl.Name, tpl.ID, tpl.Category, tpl.Description)
	}
	msg += "\nUse `framework <id>` to see the template."
	return msg
}

func (h *CommandHandler) showFramework(id string) string {
	tpl, ok := h.catalog.Get(strings.ToLower(id))
	if !ok {
		return fmt.Sprintf("❌ Unknown framework '%s'. Use `frameworks` to list them.", id)
	}
	return fmt.Sprintf("*%s* · %s · %s\n_%s_\n\n```%s```", tpl.Name, tpl.Category, tpl.Difficulty, tpl.Description, tpl.Template)
}

func (h *CommandHandler) setStage(ctx context.Context, sessionID, raw string) string {
	stage, err := models.ParseStage(raw)
	if err != nil {
		return fmt.Sprintf("❌ Unknown stage '%s'.", raw)
	}

	return h.mutate(ctx, sessionID, func(engine *intelligence.Engine) string {
		if err := engine.SetStage(stage); err != nil {
			if errors.Is(err, intelligence.ErrStageRegression) {
				return fmt.Sprintf("❌ Sessions only move forward; this one is already past *%s*.", stage)
			}
			return "❌ " + err.Error()
		}
		return fmt.Sprintf("✅ Stage set to *%s*.", stage)
	})
}

func (h *CommandHandler) addAssumption(ctx context.Context, sessionID, text string) string {
	return h.mutate(ctx, sessionID, func(engine *intelligence.Engine) string {
		if !engine.AddAssumption(text) {
			return "ℹ️ That assumption is already recorded."
		}
		return "📝 Assumption recorded."
	})
}

func (h *CommandHandler) decide(ctx context.Context, sessionID, rest string) string {
	data, ok := parseDecision(rest)
	if !ok {
		return "❌ Use `decide <question> => <decision> [because <reasoning>]`."
	}

	return h.mutate(ctx, sessionID, func(engine *intelligence.Engine) string {
		engine.RecordDecision(data)
		return fmt.Sprintf("⚖️ Decision recorded: *%s* → %s", data.Question, data.Decision)
	})
}

// parseDecision splits "question => decision [because reasoning]".
func parseDecision(s string) (models.DecisionData, bool) {
	question, decision, found := strings.Cut(s, "=>")
	if !found {
		return models.DecisionData{}, false
	}

	var reasoning string
	lower := strings.ToLower(decision)
	if idx := strings.Index(lower, " because "); idx >= 0 {
		reasoning = strings.TrimSpace(decision[idx+len(" because "):])
		decision = decision[:idx]
	}

	data := models.DecisionData{
		Question:   strings.TrimSpace(question),
		Decision:   strings.TrimSpace(decision),
		Reasoning:  reasoning,
		Confidence: 0.7,
		Outcome:    models.OutcomePending,
	}
	if data.Question == "" || data.Decision == "" {
		return models.DecisionData{}, false
	}
	return data, true
}

func (h *CommandHandler) reset(ctx context.Context, sessionID string) string {
	unlock := h.store.Lock(sessionID)
	defer unlock()

	if err := h.store.Delete(ctx, sessionID); err != nil {
		h.logger.Error("failed to reset session", zap.String("session_id", sessionID), zap.Error(err))
		return "❌ Failed to reset the session."
	}
	return "🧹 Session cleared. Start a new brainstorm whenever you're ready."
}

func (h *CommandHandler) export(ctx context.Context, sessionID string) string {
	if h.exporter == nil {
		return "⚠️ Linear export is not configured."
	}

	issue, err := h.exporter.Export(ctx, sessionID)
	if err != nil {
		h.logger.Error("linear export failed", zap.String("session_id", sessionID), zap.Error(err))
		return "❌ Failed to export to Linear."
	}
	return fmt.Sprintf("📤 Exported as *%s*: %s", issue.Identifier, issue.URL)
}

const noSessionMessage = "📭 No session here yet. Say something to start brainstorming!"

// mutate runs fn under the session lock and saves the session afterwards.
func (h *CommandHandler) mutate(ctx context.Context, sessionID string, fn func(*intelligence.Engine) string) string {
	unlock := h.store.Lock(sessionID)
	defer unlock()

	current, ok, err := h.store.Engine(ctx, sessionID)
	if err != nil {
		h.logger.Error("failed to load session", zap.String("session_id", sessionID), zap.Error(err))
		return "❌ Failed to load the session."
	}
	if !ok {
		return noSessionMessage
	}

	engine := current.Fork()
	msg := fn(engine)
	if err := h.store.Save(ctx, sessionID, engine); err != nil {
		h.logger.Error("failed to save session", zap.String("session_id", sessionID), zap.Error(err))
		return "❌ Failed to save the session."
	}
	return msg
}

package agents

import (
	"fmt"
	"strings"

	"github.com/shubh-37/prosora/internal/models"
)

// Mode selects the thinking style the assistant is asked to use.
type Mode string

const (
	ModeIdeas           Mode = "ideas"
	ModeFirstPrinciples Mode = "first-principles"
	ModeDesignThinking  Mode = "design-thinking"
	ModeFrameworks      Mode = "frameworks"
)

const (
	historyWindow         = 4
	summaryRecommendLimit = 3
)

// Modes lists the supported thinking modes, default first.
var Modes = []Mode{ModeIdeas, ModeFirstPrinciples, ModeDesignThinking, ModeFrameworks}

// ParseMode returns the mode named s. The empty string selects ModeIdeas.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeIdeas, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Emoji is the marker shown next to replies produced in this mode.
func (m Mode) Emoji() string {
	switch m {
	case ModeFirstPrinciples:
		return "🔬"
	case ModeDesignThinking:
		return "🎯"
	case ModeFrameworks:
		return "🧠"
	default:
		return "💡"
	}
}

// Message is one entry of the conversation history.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

const preamble = `You are a Product Idea Assistant, an AI expert in product management and innovation. Your role is to generate creative, practical, and market-viable product ideas based on user inputs.

Guidelines:
- Generate 3-5 specific product ideas per request
- Include brief explanations of the value proposition
- Consider current market trends and technology capabilities
- Focus on problems that genuinely need solving
- Be creative but realistic about implementation
- Format responses clearly with numbered ideas
- Ask follow-up questions to refine ideas when appropriate`

var modeInstructions = map[Mode]string{
	ModeIdeas: `Thinking mode: idea generation.
Go wide first. Offer distinct ideas rather than variations of one.`,
	ModeFirstPrinciples: `Thinking mode: first principles.
Break the problem down to its fundamental truths. Question every assumption the user states and rebuild the solution from what is known to be true.`,
	ModeDesignThinking: `Thinking mode: design thinking.
Start from the people affected. Describe what they say, think, do and feel, then define the problem from their point of view before proposing ideas.`,
	ModeFrameworks: `Thinking mode: structured frameworks.
Apply an established product framework explicitly and walk through each of its sections.`,
}

// Compose builds the prompt for one turn. summary is the session state before
// the turn; framework is the template suggested for the message, if any.
func Compose(summary models.Summary, mode Mode, history []Message, message string, framework *models.FrameworkTemplate) string {
	var b strings.Builder

	b.WriteString(preamble)
	b.WriteString("\n\n")

	instructions, ok := modeInstructions[mode]
	if !ok {
		instructions = modeInstructions[ModeIdeas]
	}
	b.WriteString(instructions)
	b.WriteString("\n\n")

	writeIntelligenceContext(&b, summary)

	if framework != nil {
		fmt.Fprintf(&b, "Suggested framework: %s - %s\n\n", framework.Name, framework.Description)
	}

	b.WriteString("Previous conversation context:")
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, msg := range history {
		role := "User"
		if msg.Role == "assistant" {
			role = "Assistant"
		}
		fmt.Fprintf(&b, "\n%s: %s", role, msg.Content)
	}

	fmt.Fprintf(&b, "\n\nUser: %s\n\nAssistant:", message)
	return b.String()
}

func writeIntelligenceContext(b *strings.Builder, s models.Summary) {
	b.WriteString("Intelligence context:\n")
	fmt.Fprintf(b, "- Domain: %s\n", s.Domain)
	fmt.Fprintf(b, "- Stage: %s\n", s.Stage)
	fmt.Fprintf(b, "- Insights so far: %d (problems: %d, solutions: %d)\n", s.InsightCount, s.ProblemCount, s.SolutionCount)

	recommendations := s.Recommendations
	if len(recommendations) > summaryRecommendLimit {
		recommendations = recommendations[:summaryRecommendLimit]
	}
	if len(recommendations) > 0 {
		b.WriteString("- Recommendations:\n")
		for _, r := range recommendations {
			fmt.Fprintf(b, "  - %s\n", r)
		}
	}
	if len(s.Predictions) > 0 {
		b.WriteString("- Predictions:\n")
		for _, p := range s.Predictions {
			fmt.Fprintf(b, "  - %s (%.0f%%)\n", p.Outcome, p.Probability*100)
		}
	}
	b.WriteString("\n")
}

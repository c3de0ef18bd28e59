package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/shubh-37/prosora/internal/agents"
	"github.com/shubh-37/prosora/internal/models"
)

var (
	colorAccent = lipgloss.Color("#83a598")
	colorDim    = lipgloss.Color("#928374")
	colorHeader = lipgloss.Color("#fe8019")

	styleHeader = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleBox    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
)

func newMarkdownRenderer(width int) *glamour.TermRenderer {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return renderer
}

// renderResponse renders the model's markdown, falling back to plain text.
func renderResponse(renderer *glamour.TermRenderer, mode agents.Mode, text string) string {
	header := styleHeader.Render(mode.Emoji() + " " + string(mode))
	if renderer == nil {
		return header + "\n" + text + "\n"
	}
	out, err := renderer.Render(text)
	if err != nil {
		return header + "\n" + text + "\n"
	}
	return header + "\n" + out
}

func summaryLines(s models.Summary) []string {
	lines := []string{
		fmt.Sprintf("domain  %s", s.Domain),
		fmt.Sprintf("stage   %s", s.Stage),
		fmt.Sprintf("counts  %d insights · %d problems · %d solutions", s.InsightCount, s.ProblemCount, s.SolutionCount),
	}
	for _, r := range s.Recommendations {
		lines = append(lines, "→ "+r)
	}
	for _, p := range s.Predictions {
		lines = append(lines, fmt.Sprintf("◆ %s (%.0f%%)", p.Outcome, p.Probability*100))
	}
	return lines
}

// renderSummary draws the session summary in a bordered box.
func renderSummary(s models.Summary) string {
	title := styleHeader.Render("📊 Session")
	body := strings.Join(summaryLines(s), "\n")
	return styleBox.Render(title + "\n" + body)
}

func renderFramework(t models.FrameworkTemplate) string {
	return fmt.Sprintf("%s %s\n%s",
		styleHeader.Render(t.Name),
		styleDim.Render("["+t.ID+" · "+string(t.Category)+" · "+t.Difficulty+"]"),
		t.Description,
	)
}

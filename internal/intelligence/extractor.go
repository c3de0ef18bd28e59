package intelligence

import (
	"strings"

	"github.com/shubh-37/prosora/internal/models"
)

const (
	assumptionContent  = "User assumption detected in conversation"
	opportunityContent = "Market opportunity identified"
)

// ExtractInsights scans the combined user message and AI response for assumption and
// opportunity cues. Each check is independent, so zero, one or two candidates come back.
// Candidates carry no source; the caller stamps it before handing them to Engine.AddInsight.
func ExtractInsights(combinedText, framework string) []models.InsightData {
	lower := strings.ToLower(combinedText)
	var candidates []models.InsightData

	if strings.Contains(lower, "assumption") || strings.Contains(lower, "assume") {
		candidates = append(candidates, models.InsightData{
			Type:       models.InsightAssumption,
			Content:    assumptionContent,
			Confidence: 0.7,
			Framework:  framework,
			Tags:       []string{"assumption", "validation-needed"},
		})
	}

	if strings.Contains(lower, "opportunity") || strings.Contains(lower, "potential") {
		candidates = append(candidates, models.InsightData{
			Type:       models.InsightOpportunity,
			Content:    opportunityContent,
			Confidence: 0.6,
			Framework:  framework,
			Tags:       []string{"opportunity", "market"},
		})
	}

	return candidates
}

package slack

import (
	"errors"

	"github.com/shubh-37/prosora/internal/llm"
)

func turnErrorMessage(err error) string {
	switch {
	case errors.Is(err, llm.ErrAuth):
		return "❌ The model API key is not configured correctly."
	case errors.Is(err, llm.ErrQuota):
		return "⏳ API quota exceeded. Please try again later."
	case errors.Is(err, llm.ErrModelUnavailable):
		return "⚠️ The model is not available right now. Please try again."
	case errors.Is(err, llm.ErrTimeout):
		return "⌛ The model took too long to answer. Please try again."
	default:
		return "❌ Failed to generate ideas. Please try again."
	}
}

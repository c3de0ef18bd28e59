package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/shubh-37/prosora/internal/agents"
	"github.com/shubh-37/prosora/internal/intelligence"
	"github.com/shubh-37/prosora/internal/llm"
	"github.com/shubh-37/prosora/internal/models"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// statusFor maps domain and provider errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, agents.ErrEmptyMessage),
		errors.Is(err, models.ErrUnknownDomain),
		errors.Is(err, models.ErrUnknownStage),
		errors.Is(err, models.ErrUnknownOutcome):
		return http.StatusBadRequest
	case errors.Is(err, agents.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, intelligence.ErrStageRegression):
		return http.StatusConflict
	case errors.Is(err, llm.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, llm.ErrQuota):
		return http.StatusTooManyRequests
	case errors.Is(err, llm.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, llm.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, llm.ErrUpstream), errors.Is(err, llm.ErrEmptyResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage keeps provider details out of client-facing errors.
func publicMessage(err error, status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "Invalid API key configuration"
	case http.StatusTooManyRequests:
		return "API quota exceeded. Please try again later."
	case http.StatusServiceUnavailable:
		return "Model not available. Please try again."
	case http.StatusGatewayTimeout:
		return "The model took too long to respond. Please try again."
	case http.StatusBadGateway:
		return "Failed to generate ideas. Please try again."
	case http.StatusInternalServerError:
		return "internal error"
	default:
		return err.Error()
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError || status == http.StatusUnauthorized || status == http.StatusTooManyRequests {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	writeError(w, status, publicMessage(err, status))
}

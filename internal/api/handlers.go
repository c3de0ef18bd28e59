package api

import (
	"net/http"
	"strings"

	"github.com/shubh-37/prosora/internal/agents"
	"github.com/shubh-37/prosora/internal/intelligence"
	"github.com/shubh-37/prosora/internal/models"
	"github.com/shubh-37/prosora/internal/store"
)

type turnRequest struct {
	SessionID string           `json:"sessionId"`
	Message   string           `json:"message"`
	History   []agents.Message `json:"history"`
	Domain    string           `json:"domain"`
	Mode      string           `json:"mode"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	var domain models.Domain
	if req.Domain != "" {
		d, err := models.ParseDomain(req.Domain)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		domain = d
	}

	mode, err := agents.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.facilitator.ProcessTurn(r.Context(), agents.TurnRequest{
		SessionID:  req.SessionID,
		Message:    req.Message,
		History:    req.History,
		DomainHint: domain,
		Mode:       mode,
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	contexts, err := s.store.ListAll(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if contexts == nil {
		contexts = []*models.SessionContext{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": contexts})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	engine, ok := s.engine(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, engine.ExportContext())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, ok, err := s.store.GetSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	unlock := s.store.Lock(id)
	defer unlock()

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type decisionRequest struct {
	Question   string  `json:"question"`
	Decision   string  `json:"decision"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
	Outcome    string  `json:"outcome"`
}

func (s *Server) handleRecordDecision(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.Decision) == "" {
		writeError(w, http.StatusBadRequest, "question and decision are required")
		return
	}
	if req.Confidence < 0 || req.Confidence > 1 {
		writeError(w, http.StatusBadRequest, "confidence must be between 0 and 1")
		return
	}
	outcome, err := models.ParseOutcome(req.Outcome)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mutate(w, r, http.StatusCreated, func(engine *intelligence.Engine) (any, error) {
		return engine.RecordDecision(models.DecisionData{
			Question:   req.Question,
			Decision:   req.Decision,
			Reasoning:  req.Reasoning,
			Confidence: req.Confidence,
			Outcome:    outcome,
		}), nil
	})
}

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAddAssumption(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !readJSON(w, r, &req) {
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	s.mutate(w, r, http.StatusOK, func(engine *intelligence.Engine) (any, error) {
		return map[string]bool{"added": engine.AddAssumption(text)}, nil
	})
}

type stageRequest struct {
	Stage string `json:"stage"`
}

func (s *Server) handleSetStage(w http.ResponseWriter, r *http.Request) {
	var req stageRequest
	if !readJSON(w, r, &req) {
		return
	}
	stage, err := models.ParseStage(req.Stage)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mutate(w, r, http.StatusOK, func(engine *intelligence.Engine) (any, error) {
		if err := engine.SetStage(stage); err != nil {
			return nil, err
		}
		return store.Summarize(engine), nil
	})
}

type domainRequest struct {
	Domain string `json:"domain"`
}

func (s *Server) handleSetDomain(w http.ResponseWriter, r *http.Request) {
	var req domainRequest
	if !readJSON(w, r, &req) {
		return
	}
	domain, err := models.ParseDomain(req.Domain)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mutate(w, r, http.StatusOK, func(engine *intelligence.Engine) (any, error) {
		if err := engine.SetDomain(domain); err != nil {
			return nil, err
		}
		return store.Summarize(engine), nil
	})
}

func (s *Server) handleLearnings(w http.ResponseWriter, r *http.Request) {
	engine, ok := s.engine(w, r)
	if !ok {
		return
	}
	learnings := engine.GetRelevantLearnings(r.URL.Query().Get("topic"))
	if learnings == nil {
		learnings = []models.Learning{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"learnings": learnings})
}

type learningRequest struct {
	Pattern       string   `json:"pattern"`
	Evidence      []string `json:"evidence"`
	Applicability []string `json:"applicability"`
	Confidence    float64  `json:"confidence"`
}

func (s *Server) handleAddLearning(w http.ResponseWriter, r *http.Request) {
	var req learningRequest
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Pattern) == "" {
		writeError(w, http.StatusBadRequest, "pattern is required")
		return
	}
	if req.Confidence < 0 || req.Confidence > 1 {
		writeError(w, http.StatusBadRequest, "confidence must be between 0 and 1")
		return
	}

	domains := make([]models.Domain, 0, len(req.Applicability))
	for _, raw := range req.Applicability {
		d, err := models.ParseDomain(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		domains = append(domains, d)
	}

	s.mutate(w, r, http.StatusCreated, func(engine *intelligence.Engine) (any, error) {
		return engine.AddLearning(models.LearningData{
			Pattern:       req.Pattern,
			Evidence:      req.Evidence,
			Applicability: domains,
			Confidence:    req.Confidence,
		}), nil
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusNotImplemented, "linear export is not configured")
		return
	}

	issue, err := s.exporter.Export(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, issue)
}

func (s *Server) handleListFrameworks(w http.ResponseWriter, r *http.Request) {
	var templates []models.FrameworkTemplate
	if category := r.URL.Query().Get("category"); category != "" {
		templates = s.catalog.ByCategory(models.FrameworkCategory(category))
	} else {
		templates = s.catalog.All()
	}
	if templates == nil {
		templates = []models.FrameworkTemplate{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"frameworks": templates})
}

func (s *Server) handleGetFramework(w http.ResponseWriter, r *http.Request) {
	tpl, ok := s.catalog.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "framework not found")
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

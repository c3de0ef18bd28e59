package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubh-37/prosora/internal/agents"
	"github.com/shubh-37/prosora/internal/linear"
	"github.com/shubh-37/prosora/internal/llm"
	"github.com/shubh-37/prosora/internal/models"
	"github.com/shubh-37/prosora/internal/store"
)

type stubLLM struct {
	mu       sync.Mutex
	response string
	err      error
}

func (s *stubLLM) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.response, s.err
}

type stubTracker struct{}

func (stubTracker) CreateIssue(ctx context.Context, title, description string) (*linear.Issue, error) {
	return &linear.Issue{ID: "1", Identifier: "PRO-1", Title: title}, nil
}

type testEnv struct {
	srv   *httptest.Server
	store *store.ContextStore
	llm   *stubLLM
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	st := store.New(store.NewMemoryBackend())
	client := &stubLLM{response: "Here are three ideas with real potential."}
	facilitator := agents.NewFacilitator(st, client, nil, nil)

	srv := httptest.NewServer(NewServer(facilitator, st, nil, nil, opts...).Handler())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, store: st, llm: client}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTurn_CreatesSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/turn", map[string]any{
		"message": "Ideas for a telehealth app for rural patients",
		"mode":    "design-thinking",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode[agents.TurnResult](t, resp)
	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, "Here are three ideas with real potential.", result.ResponseText)
	assert.Equal(t, models.DomainHealthcare, result.Summary.Domain)
	assert.Equal(t, 1, result.Summary.InsightCount)

	summary := env.do(t, http.MethodGet, "/api/sessions/"+result.SessionID+"/summary", nil)
	require.Equal(t, http.StatusOK, summary.StatusCode)
	assert.Equal(t, result.Summary, decode[models.Summary](t, summary))
}

func TestTurn_BadInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []map[string]any{
		{"message": ""},
		{"message": "hi", "domain": "space"},
		{"message": "hi", "mode": "vibes"},
	}
	for i, body := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/turn", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/api/turn", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTurn_LLMErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{llm.ErrAuth, http.StatusUnauthorized},
		{llm.ErrQuota, http.StatusTooManyRequests},
		{llm.ErrModelUnavailable, http.StatusServiceUnavailable},
		{llm.ErrTimeout, http.StatusGatewayTimeout},
		{llm.ErrUpstream, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			env := newTestEnv(t)
			env.llm.err = fmt.Errorf("%w: provider said no", tt.err)

			resp := env.do(t, http.MethodPost, "/api/turn", map[string]any{"sessionId": "s1", "message": "hi"})
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decode[errorResponse](t, resp)
			assert.NotContains(t, body.Error, "provider said no")

			missing := env.do(t, http.MethodGet, "/api/sessions/s1/summary", nil)
			assert.Equal(t, http.StatusNotFound, missing.StatusCode)
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.store.GetOrCreate(ctx, "s1", &store.InitialData{Domain: models.DomainFintech})
	require.NoError(t, err)

	resp := env.do(t, http.MethodPost, "/api/sessions/s1/decisions", map[string]any{
		"question":   "Which segment first?",
		"decision":   "freelancers",
		"confidence": 0.8,
		"outcome":    "pending",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decision := decode[models.Decision](t, resp)
	assert.Equal(t, models.OutcomePending, decision.Outcome)

	resp = env.do(t, http.MethodPost, "/api/sessions/s1/assumptions", map[string]any{"text": "freelancers hate invoicing"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]bool{"added": true}, decode[map[string]bool](t, resp))

	resp = env.do(t, http.MethodPost, "/api/sessions/s1/assumptions", map[string]any{"text": "freelancers hate invoicing"})
	assert.Equal(t, map[string]bool{"added": false}, decode[map[string]bool](t, resp))

	resp = env.do(t, http.MethodPut, "/api/sessions/s1/stage", map[string]any{"stage": "planning"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.StagePlanning, decode[models.Summary](t, resp).Stage)

	resp = env.do(t, http.MethodPut, "/api/sessions/s1/stage", map[string]any{"stage": "ideation"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, http.MethodPut, "/api/sessions/s1/stage", map[string]any{"stage": "launch"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/sessions/s1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sessionCtx := decode[models.SessionContext](t, resp)
	assert.Len(t, sessionCtx.Decisions, 1)
	assert.Equal(t, []string{"freelancers hate invoicing"}, sessionCtx.Assumptions)

	resp = env.do(t, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[map[string][]models.SessionContext](t, resp)
	assert.Len(t, list["sessions"], 1)

	resp = env.do(t, http.MethodDelete, "/api/sessions/s1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/sessions/s1/summary", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMutationsOnMissingSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/sessions/ghost/assumptions", map[string]any{"text": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/sessions/ghost/learnings", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDecision_Validation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.store.GetOrCreate(context.Background(), "s1", nil)
	require.NoError(t, err)

	bodies := []map[string]any{
		{"question": "", "decision": "x"},
		{"question": "q", "decision": "x", "confidence": 1.5},
		{"question": "q", "decision": "x", "outcome": "great"},
	}
	for _, body := range bodies {
		resp := env.do(t, http.MethodPost, "/api/sessions/s1/decisions", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestLearnings(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.store.GetOrCreate(context.Background(), "s1", &store.InitialData{Domain: models.DomainFintech})
	require.NoError(t, err)

	resp := env.do(t, http.MethodPost, "/api/sessions/s1/learnings", map[string]any{
		"pattern":       "Trust beats features in lending",
		"evidence":      []string{"interviews"},
		"applicability": []string{"fintech"},
		"confidence":    0.7,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/sessions/s1/learnings?topic=trust", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[map[string][]models.Learning](t, resp)
	require.Len(t, got["learnings"], 1)
	assert.Equal(t, "Trust beats features in lending", got["learnings"][0].Pattern)

	resp = env.do(t, http.MethodPost, "/api/sessions/s1/learnings", map[string]any{
		"pattern":       "x",
		"applicability": []string{"space"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFrameworks(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/frameworks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[map[string][]models.FrameworkTemplate](t, resp)
	assert.Len(t, all["frameworks"], 6)

	resp = env.do(t, http.MethodGet, "/api/frameworks?category=validation", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, tpl := range decode[map[string][]models.FrameworkTemplate](t, resp)["frameworks"] {
		assert.Equal(t, models.CategoryValidation, tpl.Category)
	}

	resp = env.do(t, http.MethodGet, "/api/frameworks/five-whys", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "5 Whys Analysis", decode[models.FrameworkTemplate](t, resp).Name)

	resp = env.do(t, http.MethodGet, "/api/frameworks/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExport(t *testing.T) {
	disabled := newTestEnv(t)
	resp := disabled.do(t, http.MethodPost, "/api/sessions/s1/export", nil)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	st := store.New(store.NewMemoryBackend())
	facilitator := agents.NewFacilitator(st, &stubLLM{response: "ok"}, nil, nil)
	exporter := agents.NewExporter(st, stubTracker{}, nil)
	srv := httptest.NewServer(NewServer(facilitator, st, nil, nil, WithExporter(exporter)).Handler())
	defer srv.Close()
	env := &testEnv{srv: srv, store: st}

	resp = env.do(t, http.MethodPost, "/api/sessions/ghost/export", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, err := st.GetOrCreate(context.Background(), "s1", nil)
	require.NoError(t, err)
	resp = env.do(t, http.MethodPost, "/api/sessions/s1/export", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "PRO-1", decode[linear.Issue](t, resp).Identifier)
}

type brokenPutBackend struct {
	*store.MemoryBackend
	broken bool
}

func (b *brokenPutBackend) Put(ctx context.Context, c *models.SessionContext) error {
	if b.broken {
		return fmt.Errorf("disk full")
	}
	return b.MemoryBackend.Put(ctx, c)
}

func TestMutation_SaveFailureIsNotVisible(t *testing.T) {
	backend := &brokenPutBackend{MemoryBackend: store.NewMemoryBackend()}
	st := store.New(backend)
	facilitator := agents.NewFacilitator(st, &stubLLM{response: "ok"}, nil, nil)
	srv := httptest.NewServer(NewServer(facilitator, st, nil, nil).Handler())
	t.Cleanup(srv.Close)
	env := &testEnv{srv: srv, store: st}

	_, err := st.GetOrCreate(context.Background(), "s1", nil)
	require.NoError(t, err)
	backend.broken = true

	resp := env.do(t, http.MethodPut, "/api/sessions/s1/stage", map[string]any{"stage": "planning"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/sessions/s1/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.StageDiscovery, decode[models.Summary](t, resp).Stage)
}

package slack

import (
	"context"
	"fmt"
	"sync"

	"github.com/shubh-37/prosora/internal/agents"
	"github.com/shubh-37/prosora/internal/store"
)

type post struct {
	channel  string
	threadTS string
	text     string
}

type fakeMessenger struct {
	mu      sync.Mutex
	posts   []post
	history []agents.Message
	seq     int
}

func (f *fakeMessenger) BotID() string { return "UBOT" }

func (f *fakeMessenger) Post(ctx context.Context, channelID, threadTS, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.posts = append(f.posts, post{channel: channelID, threadTS: threadTS, text: text})
	return fmt.Sprintf("9000.%04d", f.seq), nil
}

func (f *fakeMessenger) History(ctx context.Context, channelID, threadTS, beforeTS string, limit int) ([]agents.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history, nil
}

func (f *fakeMessenger) last() post {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.posts) == 0 {
		return post{}
	}
	return f.posts[len(f.posts)-1]
}

func (f *fakeMessenger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

type fakeLLM struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

type harness struct {
	messenger *fakeMessenger
	llm       *fakeLLM
	store     *store.ContextStore
	messages  *MessageHandler
	approvals *ApprovalHandler
}

func newHarness(exporter Exporter) *harness {
	st := store.New(store.NewMemoryBackend())
	messenger := &fakeMessenger{}
	client := &fakeLLM{response: "1. Invoice autopilot\n2. Cashflow radar"}
	facilitator := agents.NewFacilitator(st, client, nil, nil)

	approvals := NewApprovalHandler(messenger, st, nil)
	commands := NewCommandHandler(messenger, st, nil, exporter, nil)
	messages := NewMessageHandler(messenger, facilitator, commands, approvals, nil)

	return &harness{
		messenger: messenger,
		llm:       client,
		store:     st,
		messages:  messages,
		approvals: approvals,
	}
}

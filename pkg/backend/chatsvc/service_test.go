package chatsvc_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatoptimize/chatgraph/pkg/backend/chatsvc"
	"github.com/chatoptimize/chatgraph/pkg/backend/provider"
	"github.com/chatoptimize/chatgraph/pkg/backend/session"
	"github.com/chatoptimize/chatgraph/pkg/eventbus"
	"github.com/chatoptimize/chatgraph/pkg/events"
)

type stubProvider struct {
	mu      sync.Mutex
	name    string
	reply   string
	err     error
	calls   int
	lastReq provider.Request
}

func (p *stubProvider) Name() string {
	return p.name
}

func (p *stubProvider) Complete(_ context.Context, req provider.Request) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	p.lastReq = req

	return p.reply, p.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (r *recordingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)

	return nil
}

func (r *recordingPublisher) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.GetType())
	}

	return out
}

type fixture struct {
	service   *chatsvc.Service
	store     *session.MemoryStore
	ollama    *stubProvider
	hf        *stubProvider
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:     session.NewMemoryStore(),
		ollama:    &stubProvider{name: provider.NameOllama, reply: "hi there"},
		hf:        &stubProvider{name: provider.NameHuggingFace, reply: "hf says hi"},
		publisher: &recordingPublisher{},
	}

	registry := provider.NewRegistry()
	registry.Register(f.ollama)
	registry.Register(f.hf)

	f.service = chatsvc.NewService(
		f.store,
		registry,
		slog.New(slog.DiscardHandler),
		chatsvc.WithPublisher(f.publisher),
	)

	return f
}

func TestChat_Send(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Chat(t.Context(), chatsvc.Request{
		SessionID:   "default",
		Action:      chatsvc.ActionSend,
		UserMessage: "hello",
		ModelName:   "llama3",
		BaseURL:     "http://127.0.0.1:11434",
	})
	require.NoError(t, err)

	assert.Empty(t, result.AssistantResponse)
	assert.Equal(t, "User: hello\n\nAssistant: hi there\n\n", result.ReadableHistory)

	stored, found, err := f.store.Get(t.Context(), "default")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, stored, 2)
	assert.Equal(t, session.RoleUser, stored[0].Role)
	assert.Equal(t, session.RoleAssistant, stored[1].Role)

	assert.Equal(t, "llama3", f.ollama.lastReq.Model)
	assert.Equal(t, "http://127.0.0.1:11434", f.ollama.lastReq.BaseURL)
	assert.Equal(t, []events.EventType{events.ChatResponseGeneratedEvent}, f.publisher.types())
}

func TestChat_Send_BlankMessageSkipsProvider(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Chat(t.Context(), chatsvc.Request{
		SessionID:   "default",
		Action:      chatsvc.ActionSend,
		UserMessage: "   ",
	})
	require.NoError(t, err)

	assert.Empty(t, result.ReadableHistory)
	assert.Zero(t, f.ollama.calls)
}

func TestChat_Send_SystemPromptPinned(t *testing.T) {
	f := newFixture(t)

	// Existing transcript without a system head gets reset when a system
	// prompt arrives.
	require.NoError(t, f.store.Put(t.Context(), "default", []session.Message{
		{Role: session.RoleUser, Content: "old"},
		{Role: session.RoleAssistant, Content: "older"},
	}))

	result, err := f.service.Chat(t.Context(), chatsvc.Request{
		SessionID:    "default",
		Action:       chatsvc.ActionSend,
		UserMessage:  "hello",
		SystemPrompt: "be brief",
	})
	require.NoError(t, err)

	assert.Equal(t, "System: be brief\n\nUser: hello\n\nAssistant: hi there\n\n", result.ReadableHistory)
}

func TestChat_Send_RefreshDropsHistory(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.store.Put(t.Context(), "default", []session.Message{
		{Role: session.RoleUser, Content: "old"},
		{Role: session.RoleAssistant, Content: "older"},
	}))

	result, err := f.service.Chat(t.Context(), chatsvc.Request{
		SessionID:   "default",
		Action:      chatsvc.ActionSend,
		UserMessage: "fresh start",
		Refresh:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, "User: fresh start\n\nAssistant: hi there\n\n", result.ReadableHistory)
}

func TestChat_Clear(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.store.Put(t.Context(), "default", []session.Message{
		{Role: session.RoleUser, Content: "old"},
	}))

	result, err := f.service.Chat(t.Context(), chatsvc.Request{
		SessionID:    "default",
		Action:       chatsvc.ActionClear,
		SystemPrompt: "be brief",
	})
	require.NoError(t, err)

	assert.Empty(t, result.AssistantResponse)
	assert.Empty(t, result.ReadableHistory)

	stored, found, err := f.store.Get(t.Context(), "default")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []session.Message{{Role: session.RoleSystem, Content: "be brief"}}, stored)

	assert.Equal(t, []events.EventType{events.ChatSessionClearedEvent}, f.publisher.types())
	assert.Zero(t, f.ollama.calls)
}

func TestChat_Regenerate(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.store.Put(t.Context(), "default", []session.Message{
		{Role: session.RoleUser, Content: "hello"},
		{Role: session.RoleAssistant, Content: "first try"},
	}))

	f.ollama.reply = "second try"

	result, err := f.service.Chat(t.Context(), chatsvc.Request{
		SessionID: "default",
		Action:    chatsvc.ActionRegenerate,
	})
	require.NoError(t, err)

	assert.Equal(t, "User: hello\n\nAssistant: second try\n\n", result.ReadableHistory)
	require.Len(t, f.ollama.lastReq.Messages, 1)
	assert.Equal(t, "hello", f.ollama.lastReq.Messages[0].Content)
}

func TestChat_Regenerate_NoAssistantYet(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.store.Put(t.Context(), "default", []session.Message{
		{Role: session.RoleUser, Content: "hello"},
	}))

	result, err := f.service.Chat(t.Context(), chatsvc.Request{
		SessionID: "default",
		Action:    chatsvc.ActionRegenerate,
	})
	require.NoError(t, err)

	assert.Equal(t, "User: hello\n\nAssistant: hi there\n\n", result.ReadableHistory)
}

func TestChat_Deliver(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.store.Put(t.Context(), "default", []session.Message{
		{Role: session.RoleUser, Content: "optimize this"},
		{Role: session.RoleAssistant, Content: "```\na tidy prompt\n```"},
	}))

	result, err := f.service.Chat(t.Context(), chatsvc.Request{
		SessionID: "default",
		Action:    chatsvc.ActionDeliver,
	})
	require.NoError(t, err)

	assert.Equal(t, "a tidy prompt", result.AssistantResponse)
	assert.Equal(t, "User: optimize this\n\nAssistant: ```\na tidy prompt\n```\n\n", result.ReadableHistory)
	assert.Zero(t, f.ollama.calls)

	// The transcript keeps the original, unstripped content.
	stored, _, err := f.store.Get(t.Context(), "default")
	require.NoError(t, err)
	assert.Equal(t, "```\na tidy prompt\n```", stored[1].Content)

	assert.Equal(t, []events.EventType{events.ChatPromptDeliveredEvent}, f.publisher.types())
}

func TestChat_Deliver_EmptySession(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Chat(t.Context(), chatsvc.Request{
		SessionID: "default",
		Action:    chatsvc.ActionDeliver,
	})
	require.NoError(t, err)

	assert.Empty(t, result.AssistantResponse)
	assert.Empty(t, result.ReadableHistory)
}

func TestChat_ProviderFailureRecordedInline(t *testing.T) {
	f := newFixture(t)
	f.ollama.err = errors.New("connection refused")

	result, err := f.service.Chat(t.Context(), chatsvc.Request{
		SessionID:   "default",
		Action:      chatsvc.ActionSend,
		UserMessage: "hello",
	})
	require.NoError(t, err)

	assert.Contains(t, result.ReadableHistory, "Assistant: [chat error] connection refused")
	assert.Empty(t, f.publisher.types())
}

func TestChat_ConfigOverrides(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Chat(t.Context(), chatsvc.Request{
		SessionID:   "default",
		Action:      chatsvc.ActionSend,
		UserMessage: "hello",
		ModelName:   "llama3",
		BaseURL:     "http://127.0.0.1:11434",
		Config: map[string]any{
			"provider":       "huggingface",
			"model_name":     "gpt2",
			"hf_token":       "secret",
			"temperature":    0.3,
			"max_new_tokens": float64(128),
		},
	})
	require.NoError(t, err)

	assert.Zero(t, f.ollama.calls)
	require.Equal(t, 1, f.hf.calls)
	assert.Equal(t, "gpt2", f.hf.lastReq.Model)
	assert.Equal(t, "secret", f.hf.lastReq.Token)
	require.NotNil(t, f.hf.lastReq.Temperature)
	assert.InDelta(t, 0.3, *f.hf.lastReq.Temperature, 1e-9)
	require.NotNil(t, f.hf.lastReq.MaxNewTokens)
	assert.Equal(t, 128, *f.hf.lastReq.MaxNewTokens)
	assert.Nil(t, f.hf.lastReq.TopP)
}

func TestChat_APIKeyFallsBackAsToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Chat(t.Context(), chatsvc.Request{
		SessionID:   "default",
		Action:      chatsvc.ActionSend,
		UserMessage: "hello",
		Config: map[string]any{
			"provider": "huggingface",
			"api_key":  "generic-key",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "generic-key", f.hf.lastReq.Token)
}

func TestChat_UnknownProviderFallsBack(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Chat(t.Context(), chatsvc.Request{
		SessionID:   "default",
		Action:      chatsvc.ActionSend,
		UserMessage: "hello",
		Config:      map[string]any{"provider": "mystery"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.ollama.calls)
}

package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatoptimize/chatgraph/pkg/backend/chatsvc"
	"github.com/chatoptimize/chatgraph/pkg/backend/provider"
	"github.com/chatoptimize/chatgraph/pkg/backend/session"
	"github.com/chatoptimize/chatgraph/pkg/web"
)

type scriptedProvider struct {
	mu      sync.Mutex
	reply   string
	lastReq provider.Request
}

func (p *scriptedProvider) Name() string {
	return provider.NameOllama
}

func (p *scriptedProvider) Complete(_ context.Context, req provider.Request) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastReq = req

	return p.reply, nil
}

func setupTestApp(t *testing.T) (*fiber.App, *scriptedProvider, *session.MemoryStore) {
	t.Helper()

	scripted := &scriptedProvider{reply: "hi there"}
	registry := provider.NewRegistry()
	registry.Register(scripted)

	store := session.NewMemoryStore()
	logger := slog.New(slog.DiscardHandler)
	service := chatsvc.NewService(store, registry, logger)

	handlers := web.NewAPIHandlers(service, validator.New(validator.WithRequiredStructEnabled()), logger)

	app := fiber.New()
	app.Post(web.ChatPath, handlers.PostChat)
	app.Get("/health", handlers.HealthCheck)

	return app, scripted, store
}

func postChat(t *testing.T, app *fiber.App, body any) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, web.ChatPath, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func TestPostChat_Send(t *testing.T) {
	app, scripted, _ := setupTestApp(t)

	resp := postChat(t, app, web.ChatRequest{
		UserMessage: "hello",
		Action:      "send",
		SessionID:   "s1",
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result chatsvc.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Empty(t, result.AssistantResponse)
	assert.Equal(t, "User: hello\n\nAssistant: hi there\n\n", result.ReadableHistory)

	// Widget defaults travel through to the provider request.
	assert.Equal(t, "llama3", scripted.lastReq.Model)
	assert.Equal(t, "http://127.0.0.1:11434", scripted.lastReq.BaseURL)
}

func TestPostChat_DefaultsApplied(t *testing.T) {
	app, _, store := setupTestApp(t)

	resp := postChat(t, app, map[string]any{"user_message": "hello"})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, found, err := store.Get(t.Context(), "default")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestPostChat_Deliver(t *testing.T) {
	app, _, store := setupTestApp(t)

	require.NoError(t, store.Put(t.Context(), "s1", []session.Message{
		{Role: session.RoleUser, Content: "optimize"},
		{Role: session.RoleAssistant, Content: "a prompt"},
	}))

	resp := postChat(t, app, web.ChatRequest{
		Action:    "deliver_to_optimizer",
		SessionID: "s1",
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result chatsvc.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "a prompt", result.AssistantResponse)
}

func TestPostChat_UnknownActionRejected(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp := postChat(t, app, web.ChatRequest{Action: "explode"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "validation_error")
}

func TestPostChat_MalformedBody(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodPost, web.ChatPath, bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPostChat_ConfigForwarded(t *testing.T) {
	app, scripted, _ := setupTestApp(t)

	resp := postChat(t, app, web.ChatRequest{
		UserMessage: "hello",
		SessionID:   "s1",
		LLMConfig: map[string]any{
			"model_name":     "mistral",
			"temperature":    0.2,
			"max_new_tokens": 64,
		},
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "mistral", scripted.lastReq.Model)
	require.NotNil(t, scripted.lastReq.Temperature)
	assert.InDelta(t, 0.2, *scripted.lastReq.Temperature, 1e-9)
	require.NotNil(t, scripted.lastReq.MaxNewTokens)
	assert.Equal(t, 64, *scripted.lastReq.MaxNewTokens)
}

func TestHealthCheck(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "healthy")
}

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatoptimize/chatgraph/pkg/backend/chatsvc"
	"github.com/chatoptimize/chatgraph/pkg/backend/session"
	"github.com/chatoptimize/chatgraph/pkg/channels/gochannel"
	"github.com/chatoptimize/chatgraph/pkg/eventbus"
	"github.com/chatoptimize/chatgraph/pkg/web"
)

func setupTestAPI(t *testing.T) (*API, *session.MemoryStore) {
	t.Helper()

	store := session.NewMemoryStore()
	logger := slog.New(slog.DiscardHandler)

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	return NewAPI(logger, store, bus), store
}

func TestAPI_RootEndpoint(t *testing.T) {
	api, _ := setupTestAPI(t)
	app := api.App()

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Chatgraph API", string(body))
}

func TestAPI_Liveness(t *testing.T) {
	api, _ := setupTestAPI(t)
	app := api.App()

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_ChatDeliver(t *testing.T) {
	api, store := setupTestAPI(t)
	app := api.App()

	require.NoError(t, store.Put(t.Context(), "default", []session.Message{
		{Role: session.RoleUser, Content: "optimize"},
		{Role: session.RoleAssistant, Content: "a prompt"},
	}))

	raw, err := json.Marshal(web.ChatRequest{Action: "deliver_to_optimizer"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, web.ChatPath, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result chatsvc.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "a prompt", result.AssistantResponse)
}

func TestAPI_ChatRejectsUnknownAction(t *testing.T) {
	api, _ := setupTestAPI(t)
	app := api.App()

	req := httptest.NewRequest(http.MethodPost, web.ChatPath, bytes.NewReader([]byte(`{"action":"explode"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

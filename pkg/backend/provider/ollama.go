package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/chatoptimize/chatgraph/pkg/backend/session"
)

// Ollama talks to a local Ollama server's non-streaming chat endpoint.
type Ollama struct {
	client *http.Client
}

func NewOllama(client *http.Client) *Ollama {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &Ollama{client: client}
}

func (o *Ollama) Name() string {
	return NameOllama
}

type ollamaChatRequest struct {
	Model    string            `json:"model"`
	Messages []session.Message `json:"messages"`
	Stream   bool              `json:"stream"`
	Options  map[string]any    `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message session.Message `json:"message"`
}

func (o *Ollama) Complete(ctx context.Context, req Request) (string, error) {
	options := make(map[string]any)
	if req.Temperature != nil {
		options["temperature"] = *req.Temperature
	}

	if req.TopP != nil {
		options["top_p"] = *req.TopP
	}

	if req.MaxNewTokens != nil {
		options["num_predict"] = *req.MaxNewTokens
	}

	if len(options) == 0 {
		options = nil
	}

	body, err := json.Marshal(ollamaChatRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   false,
		Options:  options,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode ollama request: %w", err)
	}

	url := strings.TrimRight(req.BaseURL, "/") + "/api/chat"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build ollama request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read ollama response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeFailure(resp.Status, raw)
	}

	var decoded ollamaChatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("malformed ollama response: %w", err)
	}

	return decoded.Message.Content, nil
}

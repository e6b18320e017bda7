// Package client talks to the chat backend's single endpoint on behalf of
// dispatching nodes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ChatPath is the backend's chat endpoint.
const ChatPath = "/chat_optimize/chat"

const defaultTimeout = 60 * time.Second

// Response is the backend's answer to a chat action. Both fields may be
// empty; absent fields decode to "".
type Response struct {
	AssistantResponse string `json:"assistant_response"`
	ReadableHistory   string `json:"readable_history"`
}

// Client posts chat payloads to a backend base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Chat posts the flattened widget payload and decodes the structured
// response. A non-2xx status is a failure whose message is the response
// body text; a body that is not valid JSON is also a failure.
func (c *Client) Chat(ctx context.Context, payload map[string]any) (Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ChatPath, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := strings.TrimSpace(string(respBody))
		if message == "" {
			message = resp.Status
		}

		return Response{}, errors.New(message)
	}

	var out Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return Response{}, fmt.Errorf("malformed response body: %w", err)
	}

	return out, nil
}

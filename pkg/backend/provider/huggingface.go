package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/chatoptimize/chatgraph/pkg/backend/session"
)

const hfInferenceBase = "https://api-inference.huggingface.co/models/"

// HuggingFace talks to the hosted inference API. The API is completion
// style, so the transcript is flattened into a single role-tagged prompt.
type HuggingFace struct {
	client *http.Client
}

func NewHuggingFace(client *http.Client) *HuggingFace {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &HuggingFace{client: client}
}

func (h *HuggingFace) Name() string {
	return NameHuggingFace
}

type hfParameters struct {
	Temperature  *float64 `json:"temperature,omitempty"`
	TopP         *float64 `json:"top_p,omitempty"`
	MaxNewTokens *int     `json:"max_new_tokens,omitempty"`
}

type hfRequest struct {
	Inputs     string        `json:"inputs"`
	Parameters *hfParameters `json:"parameters,omitempty"`
}

// BuildPrompt flattens a transcript into the "Role: content" lines the
// inference API expects, ending with a bare "Assistant:" cue.
func BuildPrompt(messages []session.Message) string {
	lines := make([]string, 0, len(messages)+1)

	for _, m := range messages {
		role := m.Role
		if role == "" {
			role = session.RoleUser
		}

		switch role {
		case session.RoleSystem:
			lines = append(lines, "System: "+m.Content)
		case session.RoleUser:
			lines = append(lines, "User: "+m.Content)
		case session.RoleAssistant:
			lines = append(lines, "Assistant: "+m.Content)
		default:
			lines = append(lines, strings.ToUpper(role[:1])+role[1:]+": "+m.Content)
		}
	}

	lines = append(lines, "Assistant:")

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func (h *HuggingFace) Complete(ctx context.Context, req Request) (string, error) {
	url := req.APIURL
	if url == "" {
		url = hfInferenceBase + req.Model
	}

	prompt := BuildPrompt(req.Messages)

	var params *hfParameters
	if req.Temperature != nil || req.TopP != nil || req.MaxNewTokens != nil {
		params = &hfParameters{
			Temperature:  req.Temperature,
			TopP:         req.TopP,
			MaxNewTokens: req.MaxNewTokens,
		}
	}

	body, err := json.Marshal(hfRequest{Inputs: prompt, Parameters: params})
	if err != nil {
		return "", fmt.Errorf("failed to encode huggingface request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build huggingface request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("huggingface request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read huggingface response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeFailure(resp.Status, raw)
	}

	text, err := parseHFResponse(raw)
	if err != nil {
		return "", err
	}

	// Completion models often echo the prompt back; strip it.
	text = strings.TrimPrefix(text, prompt)

	return strings.TrimSpace(text), nil
}

// parseHFResponse handles the API's response shapes: a list of objects with
// generated_text, a single object, a plain string, or an error object.
func parseHFResponse(raw []byte) (string, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("malformed huggingface response: %w", err)
	}

	item := decoded
	if list, ok := decoded.([]any); ok && len(list) > 0 {
		item = list[0]
	}

	switch v := item.(type) {
	case map[string]any:
		if msg, ok := v["error"].(string); ok && msg != "" {
			return "", errors.New(msg)
		}

		text, _ := v["generated_text"].(string)

		return text, nil
	case string:
		return v, nil
	default:
		return "", nil
	}
}

// Package web provides the HTTP endpoint the canvas dispatcher talks to.
package web

// ChatRequest is the body of POST /chat_optimize/chat. Fields mirror the
// chat node's widgets; absent fields fall back to the node defaults.
type ChatRequest struct {
	ModelName      string         `json:"model_name"`
	BaseURL        string         `json:"base_url"`
	UserMessage    string         `json:"user_message"`
	Action         string         `json:"action"          validate:"omitempty,oneof=send regenerate clear deliver_to_optimizer"`
	SessionID      string         `json:"session_id"`
	SystemPrompt   string         `json:"system_prompt"`
	RefreshSession bool           `json:"refresh_session"`
	LLMConfig      map[string]any `json:"llm_config,omitempty"`
}

// ApplyDefaults fills absent fields with the chat node's widget defaults.
func (r *ChatRequest) ApplyDefaults() {
	if r.ModelName == "" {
		r.ModelName = "llama3"
	}

	if r.BaseURL == "" {
		r.BaseURL = "http://127.0.0.1:11434"
	}

	if r.SessionID == "" {
		r.SessionID = "default"
	}

	if r.Action == "" {
		r.Action = "send"
	}
}

// Package chat provides the chat node kind: the node a user types prompts
// into and executes actions from.
package chat

import (
	"github.com/chatoptimize/chatgraph/pkg/canvas"
	"github.com/chatoptimize/chatgraph/pkg/llmconfig"
	"github.com/chatoptimize/chatgraph/pkg/models"
)

const (
	WidgetExecute = "execute"

	defaultModel   = "llama3"
	defaultBaseURL = "http://127.0.0.1:11434"
)

// Factory builds and wires chat nodes.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) ID() models.NodeKind {
	return models.NodeKindChat
}

func (f *Factory) Name() string {
	return "Chat"
}

func (f *Factory) Description() string {
	return "Composes prompts and dispatches chat actions to the backend"
}

// New creates a chat node with its full widget set. Behavior is attached
// separately by Setup once the node joins a canvas.
func (f *Factory) New(id string) *models.Node {
	n := &models.Node{
		ID:    id,
		Kind:  models.NodeKindChat,
		Title: "Chat",
		Inputs: []*models.InputSlot{
			{Name: llmconfig.InputName},
		},
		Outputs: []*models.OutputSlot{
			{Name: "assistant_response"},
			{Name: "readable_history"},
		},
	}

	n.AddWidget(&models.Widget{Name: "model_name", Type: models.WidgetTypeText, Value: defaultModel})
	n.AddWidget(&models.Widget{Name: "base_url", Type: models.WidgetTypeText, Value: defaultBaseURL})
	n.AddWidget(&models.Widget{Name: canvas.WidgetUserMessage, Type: models.WidgetTypeMultiline, Value: ""})
	n.AddWidget(&models.Widget{
		Name:    canvas.WidgetAction,
		Type:    models.WidgetTypeCombo,
		Value:   canvas.ActionSend,
		Options: []string{canvas.ActionSend, canvas.ActionRegenerate, canvas.ActionClear, canvas.ActionDeliver},
	})
	n.AddWidget(&models.Widget{Name: "session_id", Type: models.WidgetTypeText, Value: "default"})
	n.AddWidget(&models.Widget{Name: "system_prompt", Type: models.WidgetTypeMultiline, Value: ""})
	n.AddWidget(&models.Widget{Name: "refresh_session", Type: models.WidgetTypeToggle, Value: false})
	n.AddWidget(&models.Widget{Name: canvas.WidgetAutoClear, Type: models.WidgetTypeToggle, Value: true})
	n.AddWidget(&models.Widget{Name: canvas.WidgetStatus, Type: models.WidgetTypeReadOnly, Value: canvas.StatusIdle})
	n.AddWidget(&models.Widget{Name: canvas.WidgetChatHistory, Type: models.WidgetTypeHidden, Value: ""})
	n.AddWidget(&models.Widget{Name: canvas.WidgetLastResponse, Type: models.WidgetTypeHidden, Value: ""})
	n.AddWidget(&models.Widget{Name: WidgetExecute, Type: models.WidgetTypeButton})

	return n
}

// Setup attaches chat behavior: the Execute trigger and the config lock
// hook. The lock state is reconciled once at attach time so nodes loaded
// from a serialized graph come up consistent.
func (f *Factory) Setup(cv *canvas.Canvas, node *models.Node) error {
	if execute, ok := node.Widget(WidgetExecute); ok {
		execute.OnChange = func(any) {
			cv.Dispatch(node)
		}
	}

	node.OnConnectionsChange = func() {
		cv.RefreshLocks(node)
	}

	cv.RefreshLocks(node)

	return nil
}

// Schema describes the configurable widget values for validation.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"model_name": map[string]any{"type": "string"},
			"base_url":   map[string]any{"type": "string"},
			"user_message": map[string]any{
				"type": "string",
			},
			"action": map[string]any{
				"type": "string",
				"enum": []any{canvas.ActionSend, canvas.ActionRegenerate, canvas.ActionClear, canvas.ActionDeliver},
			},
			"session_id":       map[string]any{"type": "string"},
			"system_prompt":    map[string]any{"type": "string"},
			"refresh_session":  map[string]any{"type": "boolean"},
			"auto_clear_input": map[string]any{"type": "boolean"},
			"status":           map[string]any{"type": "string"},
			"chat_history":     map[string]any{"type": "string"},
			"last_response":    map[string]any{"type": "string"},
		},
	}
}

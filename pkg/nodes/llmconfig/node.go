// Package llmconfig provides the config-source node kind. It carries no
// behavior of its own: downstream chat nodes read its widget values through
// the resolver when linked.
package llmconfig

import (
	"github.com/chatoptimize/chatgraph/pkg/canvas"
	"github.com/chatoptimize/chatgraph/pkg/models"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) ID() models.NodeKind {
	return models.NodeKindLLMConfig
}

func (f *Factory) Name() string {
	return "LLM Config"
}

func (f *Factory) Description() string {
	return "Shared provider/model configuration for linked chat nodes"
}

func (f *Factory) New(id string) *models.Node {
	n := &models.Node{
		ID:    id,
		Kind:  models.NodeKindLLMConfig,
		Title: "LLM Config",
		Outputs: []*models.OutputSlot{
			{Name: "llm_config"},
		},
	}

	n.AddWidget(&models.Widget{
		Name:    "provider",
		Type:    models.WidgetTypeCombo,
		Value:   "ollama",
		Options: []string{"ollama", "huggingface"},
	})
	n.AddWidget(&models.Widget{Name: "base_url", Type: models.WidgetTypeText, Value: "http://127.0.0.1:11434"})
	n.AddWidget(&models.Widget{Name: "model_name", Type: models.WidgetTypeText, Value: "llama3"})
	n.AddWidget(&models.Widget{Name: "temperature", Type: models.WidgetTypeNumber, Value: 0.5})
	n.AddWidget(&models.Widget{Name: "top_p", Type: models.WidgetTypeNumber, Value: 0.9})
	n.AddWidget(&models.Widget{Name: "max_new_tokens", Type: models.WidgetTypeNumber, Value: 256})
	n.AddWidget(&models.Widget{Name: "hf_token", Type: models.WidgetTypeText, Value: ""})
	n.AddWidget(&models.Widget{Name: "api_key", Type: models.WidgetTypeText, Value: ""})

	return n
}

func (f *Factory) Setup(_ *canvas.Canvas, _ *models.Node) error {
	return nil
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"provider": map[string]any{
				"type": "string",
				"enum": []any{"ollama", "huggingface"},
			},
			"base_url":   map[string]any{"type": "string"},
			"model_name": map[string]any{"type": "string"},
			"temperature": map[string]any{
				"type":    "number",
				"minimum": 0.0,
				"maximum": 1.0,
			},
			"top_p": map[string]any{
				"type":    "number",
				"minimum": 0.0,
				"maximum": 1.0,
			},
			"max_new_tokens": map[string]any{
				"type":    "integer",
				"minimum": 1,
				"maximum": 8192,
			},
			"hf_token": map[string]any{"type": "string"},
			"api_key":  map[string]any{"type": "string"},
		},
	}
}

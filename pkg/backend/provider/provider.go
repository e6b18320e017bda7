// Package provider implements the LLM backends the chat service can talk to.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chatoptimize/chatgraph/pkg/backend/session"
)

// Provider names.
const (
	NameOllama      = "ollama"
	NameHuggingFace = "huggingface"
)

const defaultTimeout = 60 * time.Second

// Request carries everything a provider needs for one completion, after the
// chat service has merged node widgets with any attached config record.
// Optional sampling parameters are pointers so "not set" is distinguishable
// from zero.
type Request struct {
	BaseURL      string
	Model        string
	Messages     []session.Message
	Temperature  *float64
	TopP         *float64
	MaxNewTokens *int
	Token        string
	APIURL       string
}

// Provider generates an assistant reply for a transcript.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Registry resolves provider names to implementations. Unknown names fall
// back to ollama, matching the chat node's default.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a registry with the default providers wired in.
func NewRegistry() *Registry {
	httpClient := &http.Client{Timeout: defaultTimeout}

	r := &Registry{providers: make(map[string]Provider)}
	r.Register(NewOllama(httpClient))
	r.Register(NewHuggingFace(httpClient))

	return r
}

func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Resolve returns the provider for name, falling back to ollama when the
// name is unknown or empty.
func (r *Registry) Resolve(name string) Provider {
	if p, ok := r.providers[name]; ok {
		return p
	}

	return r.providers[NameOllama]
}

func decodeFailure(status string, body []byte) error {
	if len(body) == 0 {
		return fmt.Errorf("provider returned %s", status)
	}

	return fmt.Errorf("provider returned %s: %s", status, body)
}

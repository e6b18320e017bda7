// Package llmconfig resolves the shared model configuration a chat node
// inherits from an upstream config-source node.
package llmconfig

import (
	"github.com/chatoptimize/chatgraph/pkg/graph"
	"github.com/chatoptimize/chatgraph/pkg/models"
)

// InputName is the chat node input slot the resolver follows upstream.
const InputName = "llm_config"

// Record is the flat configuration extracted from a config-source node,
// keyed by the wire names the backend understands. Fields without a source
// widget are omitted, never defaulted.
type Record map[string]any

// fields maps source widget names to canonical record keys, in lookup
// order. "token" is a legacy alias for "hf_token"; whichever widget is
// found first wins.
var fields = []struct {
	widget string
	key    string
}{
	{"provider", "provider"},
	{"base_url", "base_url"},
	{"model_name", "model_name"},
	{"temperature", "temperature"},
	{"top_p", "top_p"},
	{"max_new_tokens", "max_new_tokens"},
	{"hf_token", "hf_token"},
	{"token", "hf_token"},
	{"api_key", "api_key"},
}

// Resolve follows the node's llm_config input one hop upstream and copies
// recognized widget values from the origin node. It reports false when the
// slot is absent, unconnected, or points at a removed node: no shared
// config, use the node's own widgets. Chained config sources are not
// traversed.
func Resolve(acc *graph.Accessor, node *models.Node) (Record, bool) {
	origin, ok := acc.OriginOf(node, InputName)
	if !ok {
		return nil, false
	}

	record := make(Record)

	for _, f := range fields {
		if _, done := record[f.key]; done {
			continue
		}

		if w, ok := origin.Widget(f.widget); ok {
			record[f.key] = w.Value
		}
	}

	return record, true
}

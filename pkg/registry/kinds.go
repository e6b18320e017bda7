package registry

import (
	"github.com/chatoptimize/chatgraph/pkg/nodes/chat"
	"github.com/chatoptimize/chatgraph/pkg/nodes/historyviewer"
	llmconfignode "github.com/chatoptimize/chatgraph/pkg/nodes/llmconfig"
)

// RegisterDefaultKinds registers all built-in node kind factories.
func (r *Registry) RegisterDefaultKinds() error {
	if err := r.Register(chat.NewFactory()); err != nil {
		return err
	}

	if err := r.Register(llmconfignode.NewFactory()); err != nil {
		return err
	}

	return r.Register(historyviewer.NewFactory())
}

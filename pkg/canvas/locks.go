package canvas

import (
	"github.com/chatoptimize/chatgraph/pkg/llmconfig"
	"github.com/chatoptimize/chatgraph/pkg/models"
)

// lockedByConfig lists the chat node widgets a connected config source
// supersedes. Only their editability changes, never their values.
var lockedByConfig = []string{"base_url", "model_name"}

// RefreshLocks reconciles widget editability with the llm_config input's
// connectivity. The check is deferred one tick because the hook fires while
// the host is still mutating link state.
func (cv *Canvas) RefreshLocks(node *models.Node) {
	cv.loop.NextTick(func() {
		connected := false
		if input, ok := node.Input(llmconfig.InputName); ok {
			connected = input.Connected()
		}

		for _, name := range lockedByConfig {
			if w, ok := node.Widget(name); ok {
				w.Disabled = connected
			}
		}

		node.MarkDirty()
	})
}

package canvas

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/chatoptimize/chatgraph/pkg/client"
	"github.com/chatoptimize/chatgraph/pkg/llmconfig"
	"github.com/chatoptimize/chatgraph/pkg/models"
	"github.com/chatoptimize/chatgraph/pkg/otelhelper"
	"github.com/chatoptimize/chatgraph/pkg/runloop"
)

// Chat node widget names the dispatcher reads or writes.
const (
	WidgetAction       = "action"
	WidgetUserMessage  = "user_message"
	WidgetStatus       = "status"
	WidgetChatHistory  = "chat_history"
	WidgetLastResponse = "last_response"
	WidgetAutoClear    = "auto_clear_input"
)

// Action identifiers. Their meaning belongs to the backend; the dispatcher
// only forwards them, except for send's auto-clear side effect.
const (
	ActionSend       = "send"
	ActionRegenerate = "regenerate"
	ActionClear      = "clear"
	ActionDeliver    = "deliver_to_optimizer"
)

// Status values shown in the status widget. Working and error states carry
// a suffix: "working: <action>", "error: <message>".
const (
	StatusIdle = "idle"
	StatusDone = "done"
)

// Chat node output slots.
const (
	SlotResponse = 0
	SlotHistory  = 1
)

// excludedFromPayload holds widgets that carry node-local display state and
// never travel to the backend.
var excludedFromPayload = map[string]bool{
	WidgetStatus:       true,
	WidgetChatHistory:  true,
	WidgetLastResponse: true,
	WidgetAutoClear:    true,
}

// Dispatch runs one user-triggered action on a chat node: snapshot widgets,
// call the backend off-loop, then apply the outcome back on the loop.
//
// The state machine is re-entrant: a new dispatch needs no reset from done
// or error. Overlapping dispatches on the same node are allowed and resolve
// last-write-wins in backend completion order; a superseded response still
// overwrites status and caches.
func (cv *Canvas) Dispatch(node *models.Node) {
	action := ActionSend
	if w, ok := node.Widget(WidgetAction); ok && w.StringValue() != "" {
		action = w.StringValue()
	}

	cv.setStatus(node, "working: "+action)

	payload := cv.buildPayload(node, action)
	if record, ok := llmconfig.Resolve(cv.acc, node); ok {
		payload[llmconfig.InputName] = record
	}

	ctx, span := otelhelper.StartSpan(context.Background(), cv.tracer, "canvas.dispatch",
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.ActionKey, action),
	)

	cv.logger.Debug("dispatching chat action", "node_id", node.ID, "action", action)

	cv.loop.Go(func() runloop.Task {
		resp, err := cv.client.Chat(ctx, payload)

		return func() {
			defer span.End()

			if err != nil {
				otelhelper.SetError(span, err)
			}

			cv.finishDispatch(node, action, resp, err)
		}
	})
}

// buildPayload copies every widget value except the exclusion set. The
// action identifier rides along as a widget value.
func (cv *Canvas) buildPayload(node *models.Node, action string) map[string]any {
	payload := make(map[string]any)

	for _, w := range node.Widgets {
		if excludedFromPayload[w.Name] {
			continue
		}

		payload[w.Name] = w.Value
	}

	payload[WidgetAction] = action

	return payload
}

// finishDispatch applies a completed backend call. Runs on the loop.
func (cv *Canvas) finishDispatch(node *models.Node, action string, resp client.Response, err error) {
	if err != nil {
		cv.logger.Warn("chat action failed", "node_id", node.ID, "action", action, "error", err)
		cv.setStatus(node, "error: "+err.Error())

		return
	}

	if w, ok := node.Widget(WidgetLastResponse); ok {
		w.SetValue(resp.AssistantResponse)
	}

	if w, ok := node.Widget(WidgetChatHistory); ok {
		w.SetValue(resp.ReadableHistory)
	}

	cv.Propagate(node, SlotResponse, resp.AssistantResponse)
	cv.Propagate(node, SlotHistory, resp.ReadableHistory)

	if action == ActionSend {
		if toggle, ok := node.Widget(WidgetAutoClear); ok && toggle.BoolValue() {
			if msg, ok := node.Widget(WidgetUserMessage); ok {
				msg.SetValue("")
			}
		}
	}

	cv.setStatus(node, StatusDone)
}

func (cv *Canvas) setStatus(node *models.Node, status string) {
	if w, ok := node.Widget(WidgetStatus); ok {
		w.SetValue(status)
	}

	node.MarkDirty()
}

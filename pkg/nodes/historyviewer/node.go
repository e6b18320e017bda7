// Package historyviewer provides the viewer node kind: a node that shows a
// propagated transcript in the shared history modal and keeps it tracking
// live updates.
package historyviewer

import (
	"github.com/chatoptimize/chatgraph/pkg/canvas"
	"github.com/chatoptimize/chatgraph/pkg/models"
)

const (
	WidgetHistory     = "history"
	WidgetOpenHistory = "open_history"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) ID() models.NodeKind {
	return models.NodeKindHistoryViewer
}

func (f *Factory) Name() string {
	return "Chat History Viewer"
}

func (f *Factory) Description() string {
	return "Displays a chat transcript in the shared modal viewer"
}

func (f *Factory) New(id string) *models.Node {
	n := &models.Node{
		ID:    id,
		Kind:  models.NodeKindHistoryViewer,
		Title: "Chat History Viewer",
		Inputs: []*models.InputSlot{
			{Name: WidgetHistory, Widget: WidgetHistory},
		},
		Outputs: []*models.OutputSlot{
			{Name: WidgetHistory},
		},
	}

	n.AddWidget(&models.Widget{Name: WidgetHistory, Type: models.WidgetTypeMultiline, Value: ""})
	n.AddWidget(&models.Widget{Name: WidgetOpenHistory, Type: models.WidgetTypeButton})

	return n
}

// Setup wires the Open History trigger and the history widget's tracking
// callback. The callback mirrors every update into the widget's backing
// surface and reschedules its scroll-to-bottom; when the modal is open it
// also re-opens it with the new text so the visible transcript never lags.
func (f *Factory) Setup(cv *canvas.Canvas, node *models.Node) error {
	viewer := cv.HistoryViewer()
	loop := cv.Loop()

	history, ok := node.Widget(WidgetHistory)
	if !ok {
		return nil
	}

	history.OnChange = func(value any) {
		text, _ := value.(string)

		if history.Surface != nil {
			history.Surface.SetText(text)
			loop.NextTick(history.Surface.ScrollToBottom)
		}

		if viewer.IsOpen() {
			viewer.Open(text)
		}
	}

	if open, ok := node.Widget(WidgetOpenHistory); ok {
		open.OnChange = func(any) {
			viewer.Open(history.StringValue())
		}
	}

	return nil
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"history": map[string]any{"type": "string"},
		},
	}
}

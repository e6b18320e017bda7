// Package models defines the graph data model shared by the canvas
// orchestration layer: nodes, widgets, slots and links.
package models

// NodeKind identifies the variant of a node. Kinds form a closed set; the
// registry maps each kind to its setup routine.
type NodeKind string

const (
	NodeKindChat          NodeKind = "chat"
	NodeKindLLMConfig     NodeKind = "llm_config"
	NodeKindHistoryViewer NodeKind = "history_viewer"
)

// Node is an addressable unit in the graph. The host owns node identity and
// lifecycle; the orchestration layer only mutates widget values and attaches
// behavior when a node is created.
type Node struct {
	ID      string
	Kind    NodeKind
	Title   string
	Widgets []*Widget
	Inputs  []*InputSlot
	Outputs []*OutputSlot

	// OnDirty asks the hosting canvas for a redraw.
	OnDirty func()

	// OnConnectionsChange fires after a link touching this node is added or
	// removed. Link state may still be settling when it fires; handlers
	// defer their reads by one tick.
	OnConnectionsChange func()
}

// Widget returns the node's widget with the given name.
func (n *Node) Widget(name string) (*Widget, bool) {
	for _, w := range n.Widgets {
		if w.Name == name {
			return w, true
		}
	}

	return nil, false
}

// Input returns the node's input slot with the given name.
func (n *Node) Input(name string) (*InputSlot, bool) {
	for _, in := range n.Inputs {
		if in.Name == name {
			return in, true
		}
	}

	return nil, false
}

// AddWidget appends a widget and returns it for further wiring.
func (n *Node) AddWidget(w *Widget) *Widget {
	n.Widgets = append(n.Widgets, w)

	return w
}

// MarkDirty notifies the hosting canvas that this node needs a redraw.
func (n *Node) MarkDirty() {
	if n.OnDirty != nil {
		n.OnDirty()
	}
}

func (n *Node) connectionsChanged() {
	if n.OnConnectionsChange != nil {
		n.OnConnectionsChange()
	}
}

// InputSlot is a named connection point consuming at most one link.
type InputSlot struct {
	Name string
	// Link holds the id of the incoming link, empty when unconnected.
	Link string
	// Widget names the widget on this node that receives propagated values
	// arriving on this slot. Empty means the slot carries no widget binding.
	Widget string
}

// Connected reports whether the slot has an incoming link.
func (s *InputSlot) Connected() bool {
	return s.Link != ""
}

// OutputSlot is a named connection point feeding zero or more links.
type OutputSlot struct {
	Name  string
	Links []string
}

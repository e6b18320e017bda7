// Package graph provides read-only traversal over the host's node graph.
// Every lookup degrades to an absence result: a missing link, node or slot
// is a normal state (the user unplugged something), never an error.
package graph

import "github.com/chatoptimize/chatgraph/pkg/models"

// Target is a resolved downstream consumer of an output slot.
type Target struct {
	Node  *models.Node
	Input *models.InputSlot
}

// Accessor answers neighbor queries against a graph arena.
type Accessor struct {
	graph *models.Graph
}

func New(g *models.Graph) *Accessor {
	return &Accessor{graph: g}
}

// Graph exposes the underlying arena.
func (a *Accessor) Graph() *models.Graph {
	return a.graph
}

// OriginOf follows the link feeding the named input slot back to its origin
// node. It reports false when the slot is missing, unconnected, or the link
// or origin id has gone stale.
func (a *Accessor) OriginOf(node *models.Node, inputName string) (*models.Node, bool) {
	input, ok := node.Input(inputName)
	if !ok || !input.Connected() {
		return nil, false
	}

	link, ok := a.graph.LinkByID(input.Link)
	if !ok {
		return nil, false
	}

	origin, ok := a.graph.NodeByID(link.OriginNode)
	if !ok {
		return nil, false
	}

	return origin, true
}

// TargetsOf resolves every consumer wired to the given output slot. Links
// whose target node or slot cannot be resolved are skipped, so the result
// holds only reachable consumers.
func (a *Accessor) TargetsOf(node *models.Node, outputSlot int) []Target {
	if outputSlot < 0 || outputSlot >= len(node.Outputs) {
		return nil
	}

	var targets []Target

	for _, linkID := range node.Outputs[outputSlot].Links {
		link, ok := a.graph.LinkByID(linkID)
		if !ok {
			continue
		}

		target, ok := a.graph.NodeByID(link.TargetNode)
		if !ok {
			continue
		}

		if link.TargetSlot < 0 || link.TargetSlot >= len(target.Inputs) {
			continue
		}

		targets = append(targets, Target{Node: target, Input: target.Inputs[link.TargetSlot]})
	}

	return targets
}

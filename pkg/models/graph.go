package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Link is a directed edge from an output slot to an input slot. Links live
// in the graph's arena and are referenced by id everywhere else, so a stale
// id degrades to a failed lookup instead of a dangling pointer.
type Link struct {
	ID         string
	OriginNode string
	OriginSlot int
	TargetNode string
	TargetSlot int
}

// Graph is the host's arena of nodes and links keyed by stable ids. The
// orchestration layer treats it as read-only; mutation entry points below
// model the host editor's own wiring operations.
type Graph struct {
	Nodes map[string]*Node
	Links map[string]*Link
}

func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[string]*Node),
		Links: make(map[string]*Link),
	}
}

// NodeByID resolves a node id, reporting absence instead of failing.
func (g *Graph) NodeByID(id string) (*Node, bool) {
	n, ok := g.Nodes[id]

	return n, ok
}

// LinkByID resolves a link id, reporting absence instead of failing.
func (g *Graph) LinkByID(id string) (*Link, bool) {
	l, ok := g.Links[id]

	return l, ok
}

// AddNode places a node into the arena.
func (g *Graph) AddNode(n *Node) *Node {
	g.Nodes[n.ID] = n

	return n
}

// RemoveNode drops a node from the arena. Links referencing it are left in
// place on purpose: consumers must already tolerate stale ids.
func (g *Graph) RemoveNode(id string) {
	delete(g.Nodes, id)
}

// Connect wires an origin output slot to a named input slot on the target,
// replacing any link already feeding that input. Both nodes are notified of
// the connectivity change.
func (g *Graph) Connect(origin *Node, originSlot int, target *Node, inputName string) (*Link, error) {
	if originSlot < 0 || originSlot >= len(origin.Outputs) {
		return nil, fmt.Errorf("node %s has no output slot %d", origin.ID, originSlot)
	}

	targetSlot := -1

	for i, in := range target.Inputs {
		if in.Name == inputName {
			targetSlot = i

			break
		}
	}

	if targetSlot == -1 {
		return nil, fmt.Errorf("node %s has no input named %q", target.ID, inputName)
	}

	input := target.Inputs[targetSlot]
	if input.Connected() {
		g.Disconnect(target, inputName)
	}

	link := &Link{
		ID:         uuid.New().String(),
		OriginNode: origin.ID,
		OriginSlot: originSlot,
		TargetNode: target.ID,
		TargetSlot: targetSlot,
	}

	g.Links[link.ID] = link
	origin.Outputs[originSlot].Links = append(origin.Outputs[originSlot].Links, link.ID)
	input.Link = link.ID

	origin.connectionsChanged()
	target.connectionsChanged()

	return link, nil
}

// Disconnect removes the link feeding the named input slot, if any.
func (g *Graph) Disconnect(target *Node, inputName string) {
	input, ok := target.Input(inputName)
	if !ok || !input.Connected() {
		return
	}

	linkID := input.Link
	input.Link = ""

	if link, ok := g.Links[linkID]; ok {
		if origin, ok := g.Nodes[link.OriginNode]; ok && link.OriginSlot < len(origin.Outputs) {
			out := origin.Outputs[link.OriginSlot]
			for i, id := range out.Links {
				if id == linkID {
					out.Links = append(out.Links[:i], out.Links[i+1:]...)

					break
				}
			}

			origin.connectionsChanged()
		}
	}

	delete(g.Links, linkID)
	target.connectionsChanged()
}

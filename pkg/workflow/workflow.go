// Package workflow defines the in-memory graph model handed to the
// automation backend: typed, parameterized nodes plus directed connections
// from output slots to input slots.
package workflow

import (
	"github.com/google/uuid"
)

// MinIDLength is the minimum length of a canonical node ID. Anything
// shorter is treated as a placeholder and regenerated during repair.
const MinIDLength = 8

// CanvasMax bounds valid position coordinates on both axes.
const CanvasMax = 10000

// Workflow is a complete automation graph.
//
// Connections is keyed by the source node's canonical ID; hand-authored
// graphs may key it by display name instead, which the repairer rewrites.
type Workflow struct {
	Name        string             `json:"name"`
	Nodes       []Node             `json:"nodes"`
	Connections map[string]Outputs `json:"connections"`
	Settings    map[string]any     `json:"settings"`
	StaticData  map[string]any     `json:"staticData"`
}

// Node is a single typed step.
type Node struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Position   []int          `json:"position,omitempty"`
	Parameters map[string]any `json:"parameters"`
}

// Outputs holds a node's outgoing connections indexed by output slot.
type Outputs [][]Connection

// Connection is a directed edge into a target node's input slot.
type Connection struct {
	Node  string `json:"node"`
	Index int    `json:"index"`
}

// NewID generates a fresh canonical node ID.
func NewID() string { return uuid.NewString() }

// ValidID reports whether id has canonical shape.
func ValidID(id string) bool { return len(id) >= MinIDLength }

// ValidPosition reports whether pos is a 2-element coordinate inside the
// canvas.
func ValidPosition(pos []int) bool {
	if len(pos) != 2 {
		return false
	}
	for _, c := range pos {
		if c < 0 || c > CanvasMax {
			return false
		}
	}
	return true
}

// NodeByID returns the node with the given ID, or nil.
func (w *Workflow) NodeByID(id string) *Node {
	for i := range w.Nodes {
		if w.Nodes[i].ID == id {
			return &w.Nodes[i]
		}
	}
	return nil
}

// NodeByName returns the node with the given display name, or nil.
func (w *Workflow) NodeByName(name string) *Node {
	for i := range w.Nodes {
		if w.Nodes[i].Name == name {
			return &w.Nodes[i]
		}
	}
	return nil
}

// AddNode appends a node to the graph.
func (w *Workflow) AddNode(n Node) {
	w.Nodes = append(w.Nodes, n)
}

// Connect appends an edge from fromID's output slot to toID's input slot,
// growing the output-slot list as needed.
func (w *Workflow) Connect(fromID string, outputSlot int, toID string, inputSlot int) {
	if w.Connections == nil {
		w.Connections = make(map[string]Outputs)
	}
	outs := w.Connections[fromID]
	for len(outs) <= outputSlot {
		outs = append(outs, nil)
	}
	outs[outputSlot] = append(outs[outputSlot], Connection{Node: toID, Index: inputSlot})
	w.Connections[fromID] = outs
}

// OutgoingConnections returns a node's output slots, accepting either its
// canonical ID or, for unrepaired graphs, its display name as the key.
func (w *Workflow) OutgoingConnections(ref string) Outputs {
	if outs, ok := w.Connections[ref]; ok {
		return outs
	}
	if n := w.NodeByID(ref); n != nil && n.Name != "" {
		return w.Connections[n.Name]
	}
	return nil
}

// EdgeCount returns the total number of edges in the graph.
func (w *Workflow) EdgeCount() int {
	n := 0
	for _, outs := range w.Connections {
		for _, slot := range outs {
			n += len(slot)
		}
	}
	return n
}

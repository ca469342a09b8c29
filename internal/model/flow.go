package model

import "github.com/rotisserie/eris"

// NodeType classifies a flow diagram node.
type NodeType string

const (
	NodeTrigger   NodeType = "trigger"
	NodeAction    NodeType = "action"
	NodeCondition NodeType = "condition"
)

// Position is a 2-D layout position for diagram rendering.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// FlowNode is one node in an automation flow diagram.
type FlowNode struct {
	ID          string   `json:"id" yaml:"id"`
	Type        NodeType `json:"type" yaml:"type"`
	Name        string   `json:"name" yaml:"name"`
	Position    Position `json:"position" yaml:"position"`
	Description string   `json:"description" yaml:"description"`
}

// FlowConnection is a directed edge between two nodes, optionally labeled
// with a branch condition.
type FlowConnection struct {
	From      string `json:"from" yaml:"from"`
	To        string `json:"to" yaml:"to"`
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// FlowData holds the graph of a flow diagram.
type FlowData struct {
	Nodes       []FlowNode       `json:"nodes" yaml:"nodes"`
	Connections []FlowConnection `json:"connections" yaml:"connections"`
}

// FlowDiagram is a nested automation-diagram structure attached to a
// recommendation. Diagrams may contain branch-and-merge cycles but must be
// one weakly-connected graph rooted at exactly one trigger node.
type FlowDiagram struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	FlowData    FlowData `json:"flow_data" yaml:"flow_data"`
}

// Validate checks the structural invariants of the diagram: unique node IDs,
// connections referencing existing nodes, exactly one trigger node, and a
// single weakly-connected component.
func (d *FlowDiagram) Validate() error {
	nodes := d.FlowData.Nodes
	if len(nodes) == 0 {
		return eris.New("flow: diagram has no nodes")
	}

	ids := make(map[string]bool, len(nodes))
	triggers := 0
	for _, n := range nodes {
		if n.ID == "" {
			return eris.New("flow: node with empty id")
		}
		if ids[n.ID] {
			return eris.Errorf("flow: duplicate node id %q", n.ID)
		}
		ids[n.ID] = true
		if n.Type == NodeTrigger {
			triggers++
		}
	}
	if triggers != 1 {
		return eris.Errorf("flow: expected exactly one trigger node, got %d", triggers)
	}

	adjacency := make(map[string][]string, len(nodes))
	for _, c := range d.FlowData.Connections {
		if !ids[c.From] {
			return eris.Errorf("flow: connection from unknown node %q", c.From)
		}
		if !ids[c.To] {
			return eris.Errorf("flow: connection to unknown node %q", c.To)
		}
		// Undirected adjacency for the connectivity check.
		adjacency[c.From] = append(adjacency[c.From], c.To)
		adjacency[c.To] = append(adjacency[c.To], c.From)
	}

	visited := make(map[string]bool, len(nodes))
	stack := []string{nodes[0].ID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		stack = append(stack, adjacency[id]...)
	}
	if len(visited) != len(nodes) {
		return eris.Errorf("flow: diagram is not connected (%d of %d nodes reachable)", len(visited), len(nodes))
	}

	return nil
}

package dsl

import "github.com/aretw0/waypoint/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node  domain.Node
	props []string
	uses  []string
	edges []domain.Edge
}

// Input marks the node as an input step with the given display name.
func (n *NodeBuilder) Input(name string) *NodeBuilder {
	return n.typed(domain.NodeTypeInput, name)
}

// Loader marks the node as a loader step with the given display name.
func (n *NodeBuilder) Loader(name string) *NodeBuilder {
	return n.typed(domain.NodeTypeLoader, name)
}

// DeadEnd marks the node as terminal. Edges leaving it are never drawn.
func (n *NodeBuilder) DeadEnd(name string) *NodeBuilder {
	return n.typed(domain.NodeTypeDeadEnd, name)
}

func (n *NodeBuilder) typed(t domain.NodeType, name string) *NodeBuilder {
	n.node.Type = t
	if name != "" {
		n.node.Name = name
	}
	return n
}

// Describe sets the node description.
func (n *NodeBuilder) Describe(description string) *NodeBuilder {
	n.node.Description = description
	return n
}

// Props attaches journey properties by key.
func (n *NodeBuilder) Props(keys ...string) *NodeBuilder {
	n.props = append(n.props, keys...)
	return n
}

// At pins the node to a canvas position.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.X, n.node.Y = &x, &y
	return n
}

// Uses binds the node to a function; variable mappings are derived from the
// function's inputs and outputs.
func (n *NodeBuilder) Uses(referenceIDs ...string) *NodeBuilder {
	n.uses = append(n.uses, referenceIDs...)
	return n
}

// Go adds an unconditional edge to the target node.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.edges = append(n.edges, domain.Edge{ToNodeID: target})
	return n
}

// Branch adds a conditional edge to the target node.
func (n *NodeBuilder) Branch(condition string, target string) *NodeBuilder {
	n.edges = append(n.edges, domain.Edge{ToNodeID: target, ValidationCondition: condition})
	return n
}

// Build returns the node as declared, before property keys are resolved to ids.
func (n *NodeBuilder) Build() domain.Node {
	return n.node.Clone()
}

package domain

// NodeType constants define the role of a step.
type NodeType string

const (
	// NodeTypeInput is an entry step that collects data.
	NodeTypeInput NodeType = "input"
	// NodeTypeLoader is a step that usually invokes functions.
	NodeTypeLoader NodeType = "loader"
	// NodeTypeDeadEnd is terminal. Its outgoing edges are never drawn.
	NodeTypeDeadEnd NodeType = "dead_end"
)

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeInput, NodeTypeLoader, NodeTypeDeadEnd:
		return true
	}
	return false
}

// Node represents a step in the journey graph.
type Node struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name" validate:"required"`
	Type        NodeType `json:"type" yaml:"type" validate:"required,oneof=input loader dead_end"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`

	// Properties holds Property IDs (not keys).
	Properties []string `json:"properties" yaml:"properties"`

	// X and Y pin the node on the canvas, each axis on its own. Nil means the grid
	// decides that axis.
	X *float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y *float64 `json:"y,omitempty" yaml:"y,omitempty"`
}

// Pinned reports whether the node overrides its grid position on either axis.
func (n Node) Pinned() bool {
	return n.X != nil || n.Y != nil
}

// HasProperty reports whether the node lists the property id.
func (n Node) HasProperty(propertyID string) bool {
	for _, id := range n.Properties {
		if id == propertyID {
			return true
		}
	}
	return false
}

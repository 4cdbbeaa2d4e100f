package domain

// Canonical marker ids used by placeholder edges.
const (
	StartMarker = "start"
	EndMarker   = "end"
)

// Edge is a directed, optionally guarded transition between two nodes.
type Edge struct {
	ID         string `json:"id" yaml:"id"`
	FromNodeID string `json:"fromNodeId" yaml:"fromNodeId" validate:"required"`
	ToNodeID   string `json:"toNodeId" yaml:"toNodeId" validate:"required"`

	// ValidationCondition is an opaque guard expression.
	ValidationCondition string `json:"validationCondition,omitempty" yaml:"validationCondition,omitempty"`
}

// IsPlaceholder reports whether the edge is the start→end stub some journeys are
// created with.
func (e Edge) IsPlaceholder() bool {
	return e.FromNodeID == StartMarker && e.ToNodeID == EndMarker
}

// Touches reports whether nodeID is either endpoint.
func (e Edge) Touches(nodeID string) bool {
	return e.FromNodeID == nodeID || e.ToNodeID == nodeID
}

package canvas

import "github.com/aretw0/waypoint/pkg/domain"

// Annotation is the derived, read-only data drawn next to a node.
type Annotation struct {
	PropertyCount int  `json:"property_count"`
	HasMapping    bool `json:"has_mapping"`
}

// Annotate computes the annotation of every node of j.
func Annotate(j *domain.Journey) map[string]Annotation {
	out := make(map[string]Annotation, len(j.Nodes))
	for _, n := range j.Nodes {
		out[n.ID] = Annotation{PropertyCount: len(n.Properties)}
	}
	for _, m := range j.Mappings {
		if a, ok := out[m.NodeID]; ok {
			a.HasMapping = true
			out[m.NodeID] = a
		}
	}
	return out
}

// BoundFunction is a mapping joined with the function it invokes.
type BoundFunction struct {
	Mapping  domain.NodeFunctionMapping `json:"mapping"`
	Function domain.Function            `json:"function"`
}

// ConnectedEdge is an incident edge and the node on its other end. Peer is nil when
// that node no longer exists.
type ConnectedEdge struct {
	Edge domain.Edge  `json:"edge"`
	Peer *domain.Node `json:"peer,omitempty"`
}

// NodeDetails is everything a details panel shows for a selected node.
type NodeDetails struct {
	Node       domain.Node       `json:"node"`
	Properties []domain.Property `json:"properties"`
	Functions  []BoundFunction   `json:"functions"`
	Incoming   []ConnectedEdge   `json:"incoming"`
	Outgoing   []ConnectedEdge   `json:"outgoing"`
}

// Describe resolves the details of nodeID. Property ids and mappings that point at
// missing entities are skipped.
func Describe(j *domain.Journey, nodeID string) (NodeDetails, bool) {
	if j == nil {
		return NodeDetails{}, false
	}
	node, ok := j.Node(nodeID)
	if !ok {
		return NodeDetails{}, false
	}
	d := NodeDetails{
		Node:       node,
		Properties: []domain.Property{},
		Functions:  []BoundFunction{},
		Incoming:   []ConnectedEdge{},
		Outgoing:   []ConnectedEdge{},
	}
	for _, pid := range node.Properties {
		if p, ok := j.Property(pid); ok {
			d.Properties = append(d.Properties, p)
		}
	}
	for _, m := range j.Mappings {
		if m.NodeID != nodeID {
			continue
		}
		fn, ok := j.Function(m.FunctionID)
		if !ok {
			continue
		}
		d.Functions = append(d.Functions, BoundFunction{Mapping: m, Function: fn})
	}
	for _, e := range j.Edges {
		switch nodeID {
		case e.ToNodeID:
			d.Incoming = append(d.Incoming, ConnectedEdge{Edge: e, Peer: peer(j, e.FromNodeID)})
		case e.FromNodeID:
			d.Outgoing = append(d.Outgoing, ConnectedEdge{Edge: e, Peer: peer(j, e.ToNodeID)})
		}
	}
	return d, true
}

func peer(j *domain.Journey, id string) *domain.Node {
	if n, ok := j.Node(id); ok {
		return &n
	}
	return nil
}

package domain

import "time"

// Journey is the aggregate root being authored.
//
// Snapshots handed out by the store are shared; treat them as read-only and go through
// the store for every change.
type Journey struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Properties []Property            `json:"properties" yaml:"properties"`
	Nodes      []Node                `json:"nodes" yaml:"nodes"`
	Functions  []Function            `json:"functions" yaml:"functions"`
	Mappings   []NodeFunctionMapping `json:"mappings" yaml:"mappings"`
	Edges      []Edge                `json:"edges" yaml:"edges"`

	IsActive  bool      `json:"isActive" yaml:"isActive"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Summary is the catalog listing shape of a journey.
type Summary struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	IsActive  bool      `json:"isActive" yaml:"isActive"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Summarize returns the listing view of j.
func (j *Journey) Summarize() Summary {
	return Summary{ID: j.ID, Name: j.Name, IsActive: j.IsActive, UpdatedAt: j.UpdatedAt}
}

// Status renders the activation flag the way catalog listings show it.
func (j *Journey) Status() string {
	if j.IsActive {
		return "ACTIVE"
	}
	return "inactive"
}

// Property returns the property with the given id.
func (j *Journey) Property(id string) (Property, bool) {
	for _, p := range j.Properties {
		if p.ID == id {
			return p, true
		}
	}
	return Property{}, false
}

// PropertyByKey returns the property with the given key.
func (j *Journey) PropertyByKey(key string) (Property, bool) {
	for _, p := range j.Properties {
		if p.Key == key {
			return p, true
		}
	}
	return Property{}, false
}

// Node returns the node with the given id.
func (j *Journey) Node(id string) (Node, bool) {
	for _, n := range j.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Function returns the function with the given reference id.
func (j *Journey) Function(referenceID string) (Function, bool) {
	for _, f := range j.Functions {
		if f.ReferenceID == referenceID {
			return f, true
		}
	}
	return Function{}, false
}

// Mapping returns the mapping with the given id.
func (j *Journey) Mapping(id string) (NodeFunctionMapping, bool) {
	for _, m := range j.Mappings {
		if m.ID == id {
			return m, true
		}
	}
	return NodeFunctionMapping{}, false
}

// Edge returns the edge with the given id.
func (j *Journey) Edge(id string) (Edge, bool) {
	for _, e := range j.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// Clone returns a deep copy of j. Nil stays nil.
func (j *Journey) Clone() *Journey {
	if j == nil {
		return nil
	}
	out := *j

	if j.Properties != nil {
		out.Properties = make([]Property, len(j.Properties))
		copy(out.Properties, j.Properties)
	}

	if j.Nodes != nil {
		out.Nodes = make([]Node, len(j.Nodes))
		for i, n := range j.Nodes {
			out.Nodes[i] = n.Clone()
		}
	}

	if j.Functions != nil {
		out.Functions = make([]Function, len(j.Functions))
		for i, f := range j.Functions {
			out.Functions[i] = f.Clone()
		}
	}

	if j.Mappings != nil {
		out.Mappings = make([]NodeFunctionMapping, len(j.Mappings))
		for i, m := range j.Mappings {
			m.VariableMappings = CloneVariableMappings(m.VariableMappings)
			out.Mappings[i] = m
		}
	}

	if j.Edges != nil {
		out.Edges = make([]Edge, len(j.Edges))
		copy(out.Edges, j.Edges)
	}
	return &out
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	if n.Properties != nil {
		props := make([]string, len(n.Properties))
		copy(props, n.Properties)
		n.Properties = props
	}
	n.X = cloneFloat(n.X)
	n.Y = cloneFloat(n.Y)
	return n
}

// Clone returns a deep copy of f.
func (f Function) Clone() Function {
	if f.Config.Headers != nil {
		headers := make([]Header, len(f.Config.Headers))
		copy(headers, f.Config.Headers)
		f.Config.Headers = headers
	}
	if f.Config.RequestBody != nil {
		body := make([]RequestBodyField, len(f.Config.RequestBody))
		copy(body, f.Config.RequestBody)
		f.Config.RequestBody = body
	}
	f.Config.HeaderParams = f.Config.HeaderParams.Clone()
	f.Config.RequestBodyPath = f.Config.RequestBodyPath.Clone()
	f.InputProperties = f.InputProperties.Clone()
	f.OutputProperties = f.OutputProperties.Clone()
	return f
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

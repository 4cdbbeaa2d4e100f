package domain

import "fmt"

// Violation is a single integrity problem found by Check.
type Violation struct {
	Err        error  `json:"-"`
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Detail     string `json:"detail"`
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s %q: %v: %s", v.Collection, v.ID, v.Err, v.Detail)
}

func (v Violation) Unwrap() error { return v.Err }

// Check lists every invariant violation in j without modifying it.
// Placeholder edges are exempt from endpoint checks.
func Check(j *Journey) []Violation {
	if j == nil {
		return nil
	}
	var out []Violation
	report := func(err error, collection, id, format string, args ...any) {
		out = append(out, Violation{Err: err, Collection: collection, ID: id, Detail: fmt.Sprintf(format, args...)})
	}

	propIDs := make(map[string]bool)
	propKeys := make(map[string]bool)
	for _, p := range j.Properties {
		if propIDs[p.ID] {
			report(ErrDuplicateID, "properties", p.ID, "id repeated")
		}
		propIDs[p.ID] = true
		if p.Key == "" {
			report(ErrMissingRequiredField, "properties", p.ID, "empty key")
			continue
		}
		if propKeys[p.Key] {
			report(ErrDuplicateKey, "properties", p.ID, "key %q repeated", p.Key)
		}
		propKeys[p.Key] = true
	}

	nodeIDs := make(map[string]bool)
	for _, n := range j.Nodes {
		if nodeIDs[n.ID] {
			report(ErrDuplicateID, "nodes", n.ID, "id repeated")
		}
		nodeIDs[n.ID] = true
		for _, pid := range n.Properties {
			if !propIDs[pid] {
				report(ErrDanglingReference, "nodes", n.ID, "unknown property %q", pid)
			}
		}
	}

	fnIDs := make(map[string]bool)
	for _, f := range j.Functions {
		if fnIDs[f.ReferenceID] {
			report(ErrDuplicateID, "functions", f.ReferenceID, "referenceId repeated")
		}
		fnIDs[f.ReferenceID] = true
		for _, key := range f.ReferencedInputKeys() {
			if !f.InputProperties.Has(key) {
				report(ErrDanglingReference, "functions", f.ReferenceID, "input %q used by headers or body but not declared", key)
			}
		}
	}

	mappingIDs := make(map[string]bool)
	pairs := make(map[[2]string]bool)
	for _, m := range j.Mappings {
		if mappingIDs[m.ID] {
			report(ErrDuplicateID, "mappings", m.ID, "id repeated")
		}
		mappingIDs[m.ID] = true
		if !nodeIDs[m.NodeID] {
			report(ErrDanglingReference, "mappings", m.ID, "unknown node %q", m.NodeID)
		}
		if !fnIDs[m.FunctionID] {
			report(ErrDanglingReference, "mappings", m.ID, "unknown function %q", m.FunctionID)
		}
		pair := [2]string{m.NodeID, m.FunctionID}
		if pairs[pair] {
			report(ErrDuplicateMapping, "mappings", m.ID, "node %q already bound to %q", m.NodeID, m.FunctionID)
		}
		pairs[pair] = true
	}

	edgeIDs := make(map[string]bool)
	edgePairs := make(map[[2]string]bool)
	for _, e := range j.Edges {
		if edgeIDs[e.ID] {
			report(ErrDuplicateID, "edges", e.ID, "id repeated")
		}
		edgeIDs[e.ID] = true
		if e.FromNodeID == e.ToNodeID {
			report(ErrSelfLoop, "edges", e.ID, "loops on %q", e.FromNodeID)
		}
		if !e.IsPlaceholder() {
			if !nodeIDs[e.FromNodeID] {
				report(ErrDanglingReference, "edges", e.ID, "unknown source %q", e.FromNodeID)
			}
			if !nodeIDs[e.ToNodeID] {
				report(ErrDanglingReference, "edges", e.ID, "unknown target %q", e.ToNodeID)
			}
		}
		pair := [2]string{e.FromNodeID, e.ToNodeID}
		if edgePairs[pair] {
			report(ErrDuplicateEdge, "edges", e.ID, "%s -> %s repeated", e.FromNodeID, e.ToNodeID)
		}
		edgePairs[pair] = true
	}
	return out
}

// SyncInputs returns fn with every key referenced by property-typed headers and
// requestBody entries declared in InputProperties. New keys take the type of the
// journey property with that key, or STRING.
func SyncInputs(fn Function, properties []Property) Function {
	for _, key := range fn.ReferencedInputKeys() {
		if fn.InputProperties.Has(key) {
			continue
		}
		typ := PropertyString
		for _, p := range properties {
			if p.Key == key {
				typ = p.Type
				break
			}
		}
		fn.InputProperties = fn.InputProperties.Set(key, string(typ))
	}
	return fn
}

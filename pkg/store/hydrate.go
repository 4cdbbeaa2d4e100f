package store

import (
	"errors"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Hydrate opens a store over a journey fetched from elsewhere. Instead of failing on
// integrity problems it repairs them and reports what it dropped or fixed:
// entries without ids get one, repeated ids and keys keep their first occurrence,
// dangling references, self-loops and repeated edges or mappings are dropped, and
// function inputs are re-synchronized with their headers and body bindings.
// Placeholder edges are kept.
func Hydrate(j *domain.Journey, opts ...Option) (*Store, []domain.Violation, error) {
	if j == nil {
		return nil, nil, errors.New("hydrate: nil journey")
	}
	s := newStore(opts)
	next := j.Clone()
	if next.ID == "" {
		next.ID = s.newID()
	}
	if next.CreatedAt.IsZero() {
		next.CreatedAt = s.clock()
	}
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = next.CreatedAt
	}

	var repairs []domain.Violation
	report := func(err error, collection, id, format string, args ...any) {
		v := domain.Violation{Err: err, Collection: collection, ID: id, Detail: fmt.Sprintf(format, args...)}
		repairs = append(repairs, v)
		s.logger.Warn("Repaired journey on hydrate", "journey_id", next.ID, "collection", collection, "id", id, "err", err, "detail", v.Detail)
	}

	props := make([]domain.Property, 0, len(next.Properties))
	propIDs := make(map[string]bool)
	propKeys := make(map[string]bool)
	for _, p := range next.Properties {
		if p.ID == "" {
			p.ID = s.newID()
		}
		switch {
		case propIDs[p.ID]:
			report(domain.ErrDuplicateID, "properties", p.ID, "dropped repeated id")
		case p.Key == "":
			report(domain.ErrMissingRequiredField, "properties", p.ID, "dropped property without key")
		case propKeys[p.Key]:
			report(domain.ErrDuplicateKey, "properties", p.ID, "dropped repeated key %q", p.Key)
		default:
			propIDs[p.ID] = true
			propKeys[p.Key] = true
			props = append(props, p)
		}
	}
	next.Properties = props

	nodes := make([]domain.Node, 0, len(next.Nodes))
	nodeIDs := make(map[string]bool)
	for _, n := range next.Nodes {
		if n.ID == "" {
			n.ID = s.newID()
		}
		if nodeIDs[n.ID] {
			report(domain.ErrDuplicateID, "nodes", n.ID, "dropped repeated id")
			continue
		}
		nodeIDs[n.ID] = true
		kept := make([]string, 0, len(n.Properties))
		for _, pid := range n.Properties {
			if !propIDs[pid] {
				report(domain.ErrDanglingReference, "nodes", n.ID, "removed unknown property %q", pid)
				continue
			}
			kept = append(kept, pid)
		}
		n.Properties = kept
		nodes = append(nodes, n)
	}
	next.Nodes = nodes

	fns := make([]domain.Function, 0, len(next.Functions))
	fnIDs := make(map[string]bool)
	for _, f := range next.Functions {
		if f.ReferenceID == "" {
			f.ReferenceID = s.newID()
		}
		if fnIDs[f.ReferenceID] {
			report(domain.ErrDuplicateID, "functions", f.ReferenceID, "dropped repeated referenceId")
			continue
		}
		fnIDs[f.ReferenceID] = true
		synced := domain.SyncInputs(f, next.Properties)
		if added := len(synced.InputProperties) - len(f.InputProperties); added > 0 {
			report(domain.ErrDanglingReference, "functions", f.ReferenceID, "declared %d input(s) used by headers or body", added)
		}
		fns = append(fns, synced)
	}
	next.Functions = fns

	mappings := make([]domain.NodeFunctionMapping, 0, len(next.Mappings))
	mappingIDs := make(map[string]bool)
	pairs := make(map[[2]string]bool)
	for _, m := range next.Mappings {
		if m.ID == "" {
			m.ID = s.newID()
		}
		pair := [2]string{m.NodeID, m.FunctionID}
		switch {
		case mappingIDs[m.ID]:
			report(domain.ErrDuplicateID, "mappings", m.ID, "dropped repeated id")
			continue
		case !nodeIDs[m.NodeID]:
			report(domain.ErrDanglingReference, "mappings", m.ID, "dropped mapping on unknown node %q", m.NodeID)
			continue
		case !fnIDs[m.FunctionID]:
			report(domain.ErrDanglingReference, "mappings", m.ID, "dropped mapping to unknown function %q", m.FunctionID)
			continue
		case pairs[pair]:
			report(domain.ErrDuplicateMapping, "mappings", m.ID, "dropped repeated binding of %q to %q", m.NodeID, m.FunctionID)
			continue
		}
		mappingIDs[m.ID] = true
		pairs[pair] = true
		if m.Derivation == "" {
			// Mappings that already exist are edited, never re-derived.
			m.Derivation = domain.DerivationUserEdited
		}
		if m.VariableMappings == nil {
			m.VariableMappings = []domain.VariableMapping{}
		}
		mappings = append(mappings, m)
	}
	next.Mappings = mappings

	edges := make([]domain.Edge, 0, len(next.Edges))
	edgeIDs := make(map[string]bool)
	edgePairs := make(map[[2]string]bool)
	for _, e := range next.Edges {
		if e.ID == "" {
			e.ID = s.newID()
		}
		pair := [2]string{e.FromNodeID, e.ToNodeID}
		switch {
		case edgeIDs[e.ID]:
			report(domain.ErrDuplicateID, "edges", e.ID, "dropped repeated id")
			continue
		case e.FromNodeID == e.ToNodeID:
			report(domain.ErrSelfLoop, "edges", e.ID, "dropped self-loop on %q", e.FromNodeID)
			continue
		case !e.IsPlaceholder() && (!nodeIDs[e.FromNodeID] || !nodeIDs[e.ToNodeID]):
			report(domain.ErrDanglingReference, "edges", e.ID, "dropped edge %s -> %s", e.FromNodeID, e.ToNodeID)
			continue
		case edgePairs[pair]:
			report(domain.ErrDuplicateEdge, "edges", e.ID, "dropped repeated %s -> %s", e.FromNodeID, e.ToNodeID)
			continue
		}
		edgeIDs[e.ID] = true
		edgePairs[pair] = true
		edges = append(edges, e)
	}
	next.Edges = edges

	s.current = next
	return s, repairs, nil
}

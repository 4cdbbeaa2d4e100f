package store

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// EdgePatch edits an edge. Nil fields are left alone.
type EdgePatch struct {
	FromNodeID          *string
	ToNodeID            *string
	ValidationCondition *string
}

// AddEdge appends an edge. When the journey only holds the start→end placeholder,
// the placeholder is discarded first.
func (s *Store) AddEdge(edge domain.Edge) (domain.Edge, error) {
	e := edge
	if e.ID == "" {
		e.ID = s.newID()
	}
	err := s.apply("add_edge", func(j *domain.Journey) error {
		if _, taken := j.Edge(e.ID); taken {
			return fmt.Errorf("%w: edge %q", domain.ErrDuplicateID, e.ID)
		}
		if len(j.Edges) > 0 && onlyPlaceholders(j.Edges) {
			s.logger.Debug("Dropping placeholder edges", "journey_id", j.ID, "count", len(j.Edges))
			j.Edges = []domain.Edge{}
		}
		if err := checkEdge(j, e); err != nil {
			return err
		}
		j.Edges = append(j.Edges, e)
		return nil
	})
	if err != nil {
		return domain.Edge{}, err
	}
	return e, nil
}

// UpdateEdge edits an edge, re-checking every edge rule.
func (s *Store) UpdateEdge(id string, patch EdgePatch) error {
	return s.apply("update_edge", func(j *domain.Journey) error {
		i := indexOf(j.Edges, func(e domain.Edge) bool { return e.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: edge %q", domain.ErrNotFound, id)
		}
		e := j.Edges[i]
		if patch.FromNodeID != nil {
			e.FromNodeID = *patch.FromNodeID
		}
		if patch.ToNodeID != nil {
			e.ToNodeID = *patch.ToNodeID
		}
		if patch.ValidationCondition != nil {
			e.ValidationCondition = *patch.ValidationCondition
		}
		if err := checkEdge(j, e); err != nil {
			return err
		}
		j.Edges[i] = e
		return nil
	})
}

// DeleteEdge removes an edge.
func (s *Store) DeleteEdge(id string) error {
	return s.apply("delete_edge", func(j *domain.Journey) error {
		i := indexOf(j.Edges, func(e domain.Edge) bool { return e.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: edge %q", domain.ErrNotFound, id)
		}
		j.Edges = removeAt(j.Edges, i)
		return nil
	})
}

// checkEdge applies the edge rules in order: required endpoints, no self-loop,
// existing endpoints, no duplicate pair (other than e itself).
func checkEdge(j *domain.Journey, e domain.Edge) error {
	if err := validateEntity("edge", e); err != nil {
		return err
	}
	if e.FromNodeID == e.ToNodeID {
		return fmt.Errorf("%w: %q", domain.ErrSelfLoop, e.FromNodeID)
	}
	if _, ok := j.Node(e.FromNodeID); !ok {
		return fmt.Errorf("%w: edge source %q", domain.ErrDanglingReference, e.FromNodeID)
	}
	if _, ok := j.Node(e.ToNodeID); !ok {
		return fmt.Errorf("%w: edge target %q", domain.ErrDanglingReference, e.ToNodeID)
	}
	for _, other := range j.Edges {
		if other.ID != e.ID && other.FromNodeID == e.FromNodeID && other.ToNodeID == e.ToNodeID {
			return fmt.Errorf("%w: %s -> %s", domain.ErrDuplicateEdge, e.FromNodeID, e.ToNodeID)
		}
	}
	return nil
}

func onlyPlaceholders(edges []domain.Edge) bool {
	for _, e := range edges {
		if !e.IsPlaceholder() {
			return false
		}
	}
	return true
}

package store

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// NodePatch edits a node. Nil fields are left alone.
type NodePatch struct {
	Name        *string
	Type        *domain.NodeType
	Description *string
	Properties  *[]string

	// X and Y pin the node, each axis independently.
	X, Y *float64
	// Unpin clears a manual position. It wins over X and Y.
	Unpin bool
}

// AddNode appends a node. An empty ID is generated; a supplied one must be unused.
func (s *Store) AddNode(node domain.Node) (domain.Node, error) {
	n := node.Clone()
	if n.ID == "" {
		n.ID = s.newID()
	}
	if n.Properties == nil {
		n.Properties = []string{}
	}
	err := s.apply("add_node", func(j *domain.Journey) error {
		if _, taken := j.Node(n.ID); taken {
			return fmt.Errorf("%w: node %q", domain.ErrDuplicateID, n.ID)
		}
		if err := s.checkNode(j, &n); err != nil {
			return err
		}
		j.Nodes = append(j.Nodes, n)
		return nil
	})
	if err != nil {
		return domain.Node{}, err
	}
	return n.Clone(), nil
}

// UpdateNode edits a node.
func (s *Store) UpdateNode(id string, patch NodePatch) error {
	return s.apply("update_node", func(j *domain.Journey) error {
		i := indexOf(j.Nodes, func(n domain.Node) bool { return n.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: node %q", domain.ErrNotFound, id)
		}
		n := j.Nodes[i]
		if patch.Name != nil {
			n.Name = *patch.Name
		}
		if patch.Type != nil {
			n.Type = *patch.Type
		}
		if patch.Description != nil {
			n.Description = *patch.Description
		}
		if patch.Properties != nil {
			n.Properties = append([]string{}, (*patch.Properties)...)
		}
		if patch.X != nil {
			x := *patch.X
			n.X = &x
		}
		if patch.Y != nil {
			y := *patch.Y
			n.Y = &y
		}
		if patch.Unpin {
			n.X, n.Y = nil, nil
		}
		if err := s.checkNode(j, &n); err != nil {
			return err
		}
		j.Nodes[i] = n
		return nil
	})
}

// MoveNode pins a node at a manual canvas position.
func (s *Store) MoveNode(id string, x, y float64) error {
	return s.UpdateNode(id, NodePatch{X: &x, Y: &y})
}

// UnpinNode returns a node to its grid slot.
func (s *Store) UnpinNode(id string) error {
	return s.UpdateNode(id, NodePatch{Unpin: true})
}

// DeleteNode removes a node with its edges and mappings.
func (s *Store) DeleteNode(id string) error {
	return s.apply("delete_node", func(j *domain.Journey) error {
		i := indexOf(j.Nodes, func(n domain.Node) bool { return n.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: node %q", domain.ErrNotFound, id)
		}
		j.Nodes = removeAt(j.Nodes, i)
		j.Edges = filter(j.Edges, func(e domain.Edge) bool { return !e.Touches(id) })
		j.Mappings = filter(j.Mappings, func(m domain.NodeFunctionMapping) bool { return m.NodeID != id })
		return nil
	})
}

// checkNode validates n and collapses repeated property ids.
func (s *Store) checkNode(j *domain.Journey, n *domain.Node) error {
	if err := validateEntity("node", *n); err != nil {
		return err
	}
	seen := make(map[string]bool, len(n.Properties))
	props := make([]string, 0, len(n.Properties))
	for _, pid := range n.Properties {
		if seen[pid] {
			continue
		}
		if _, ok := j.Property(pid); !ok {
			return fmt.Errorf("%w: node %q lists unknown property %q", domain.ErrDanglingReference, n.ID, pid)
		}
		seen[pid] = true
		props = append(props, pid)
	}
	n.Properties = props
	return nil
}

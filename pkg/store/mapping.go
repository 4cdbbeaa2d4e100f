package store

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// MappingPatch edits a mapping. Nil fields are left alone. Setting VariableMappings
// marks the mapping as edited by hand.
type MappingPatch struct {
	Name             *string
	Description      *string
	Condition        *string
	NodeID           *string
	FunctionID       *string
	VariableMappings *[]domain.VariableMapping
}

// AddMapping binds a function to a node. When VariableMappings is nil the list is
// derived from the function contract.
func (s *Store) AddMapping(mapping domain.NodeFunctionMapping) (domain.NodeFunctionMapping, error) {
	m := mapping
	m.VariableMappings = domain.CloneVariableMappings(mapping.VariableMappings)
	if m.ID == "" {
		m.ID = s.newID()
	}
	err := s.apply("add_mapping", func(j *domain.Journey) error {
		if _, taken := j.Mapping(m.ID); taken {
			return fmt.Errorf("%w: mapping %q", domain.ErrDuplicateID, m.ID)
		}
		fn, err := checkMapping(j, m)
		if err != nil {
			return err
		}
		switch {
		case m.VariableMappings == nil:
			m.VariableMappings = domain.DeriveVariableMappings(fn, nil)
			m.Derivation = domain.DerivationAutoDerived
		case m.Derivation == "":
			m.Derivation = domain.DerivationUserEdited
		}
		j.Mappings = append(j.Mappings, m)
		return nil
	})
	if err != nil {
		return domain.NodeFunctionMapping{}, err
	}
	m.VariableMappings = domain.CloneVariableMappings(m.VariableMappings)
	return m, nil
}

// UpdateMapping edits a mapping. It never derives variable mappings.
func (s *Store) UpdateMapping(id string, patch MappingPatch) error {
	return s.apply("update_mapping", func(j *domain.Journey) error {
		i := indexOf(j.Mappings, func(m domain.NodeFunctionMapping) bool { return m.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: mapping %q", domain.ErrNotFound, id)
		}
		m := j.Mappings[i]
		if patch.Name != nil {
			m.Name = *patch.Name
		}
		if patch.Description != nil {
			m.Description = *patch.Description
		}
		if patch.Condition != nil {
			m.Condition = *patch.Condition
		}
		if patch.NodeID != nil {
			m.NodeID = *patch.NodeID
		}
		if patch.FunctionID != nil {
			m.FunctionID = *patch.FunctionID
		}
		if patch.VariableMappings != nil {
			m.VariableMappings = domain.CloneVariableMappings(*patch.VariableMappings)
			if m.VariableMappings == nil {
				m.VariableMappings = []domain.VariableMapping{}
			}
			m.Derivation = domain.DerivationUserEdited
		}
		if _, err := checkMapping(j, m); err != nil {
			return err
		}
		j.Mappings[i] = m
		return nil
	})
}

// DeleteMapping removes a mapping.
func (s *Store) DeleteMapping(id string) error {
	return s.apply("delete_mapping", func(j *domain.Journey) error {
		i := indexOf(j.Mappings, func(m domain.NodeFunctionMapping) bool { return m.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: mapping %q", domain.ErrNotFound, id)
		}
		j.Mappings = removeAt(j.Mappings, i)
		return nil
	})
}

// checkMapping validates m against j, ignoring m itself for the duplicate-pair rule,
// and returns the bound function.
func checkMapping(j *domain.Journey, m domain.NodeFunctionMapping) (domain.Function, error) {
	if err := validateEntity("mapping", m); err != nil {
		return domain.Function{}, err
	}
	switch m.Derivation {
	case "", domain.DerivationEmpty, domain.DerivationAutoDerived, domain.DerivationUserEdited:
	default:
		return domain.Function{}, fmt.Errorf("%w: mapping.derivation=%q", domain.ErrInvalidValue, m.Derivation)
	}
	if _, ok := j.Node(m.NodeID); !ok {
		return domain.Function{}, fmt.Errorf("%w: mapping node %q", domain.ErrDanglingReference, m.NodeID)
	}
	fn, ok := j.Function(m.FunctionID)
	if !ok {
		return domain.Function{}, fmt.Errorf("%w: mapping function %q", domain.ErrDanglingReference, m.FunctionID)
	}
	for _, other := range j.Mappings {
		if other.ID != m.ID && other.Binds(m.NodeID, m.FunctionID) {
			return domain.Function{}, fmt.Errorf("%w: node %q is already bound to function %q", domain.ErrDuplicateMapping, m.NodeID, m.FunctionID)
		}
	}
	return fn, nil
}

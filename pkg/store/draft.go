package store

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// MappingDraft is a mapping being composed in an editor before it is committed.
//
// It tracks the derivation state of the variable list:
//
//	Empty --SelectFunction--> AutoDerived --manual edit--> UserEdited
//	AutoDerived --SelectFunction(other)--> Empty --> AutoDerived
//
// UserEdited is final: later function changes keep the list as written.
type MappingDraft struct {
	mapping  domain.NodeFunctionMapping
	existing bool
}

// NewMappingDraft starts a draft for a new mapping on nodeID.
func NewMappingDraft(nodeID string) *MappingDraft {
	return &MappingDraft{mapping: domain.NodeFunctionMapping{
		NodeID:     nodeID,
		Derivation: domain.DerivationEmpty,
	}}
}

// EditMappingDraft opens a draft over an existing mapping. Editing never derives.
func EditMappingDraft(m domain.NodeFunctionMapping) *MappingDraft {
	m.VariableMappings = domain.CloneVariableMappings(m.VariableMappings)
	m.Derivation = domain.DerivationUserEdited
	return &MappingDraft{mapping: m, existing: true}
}

// State returns the derivation state.
func (d *MappingDraft) State() domain.DerivationState {
	return d.mapping.Derivation
}

// Mapping returns a copy of the draft content.
func (d *MappingDraft) Mapping() domain.NodeFunctionMapping {
	m := d.mapping
	m.VariableMappings = domain.CloneVariableMappings(m.VariableMappings)
	return m
}

// SetNode changes the node the draft binds.
func (d *MappingDraft) SetNode(nodeID string) {
	d.mapping.NodeID = nodeID
}

// SetDetails sets the descriptive fields.
func (d *MappingDraft) SetDetails(name, description, condition string) {
	d.mapping.Name = name
	d.mapping.Description = description
	d.mapping.Condition = condition
}

// SelectFunction binds fn and derives the variable list when the state allows it.
// Selecting the same function again is a no-op.
func (d *MappingDraft) SelectFunction(fn domain.Function) {
	switch d.mapping.Derivation {
	case domain.DerivationUserEdited:
		d.mapping.FunctionID = fn.ReferenceID
		return
	case domain.DerivationAutoDerived:
		if d.mapping.FunctionID == fn.ReferenceID {
			return
		}
		// Nothing was touched by hand: discard the generated rows.
		d.mapping.VariableMappings = nil
		d.mapping.Derivation = domain.DerivationEmpty
	}
	d.mapping.FunctionID = fn.ReferenceID
	d.mapping.VariableMappings = domain.DeriveVariableMappings(fn, nil)
	d.mapping.Derivation = domain.DerivationAutoDerived
}

// AddVariable appends a variable mapping.
func (d *MappingDraft) AddVariable(vm domain.VariableMapping) {
	d.mapping.VariableMappings = append(domain.CloneVariableMappings(d.mapping.VariableMappings), vm)
	d.mapping.Derivation = domain.DerivationUserEdited
}

// UpdateVariable replaces the variable mapping at index.
func (d *MappingDraft) UpdateVariable(index int, vm domain.VariableMapping) error {
	if index < 0 || index >= len(d.mapping.VariableMappings) {
		return fmt.Errorf("%w: %d", domain.ErrIndexOutOfRange, index)
	}
	d.mapping.VariableMappings = domain.CloneVariableMappings(d.mapping.VariableMappings)
	d.mapping.VariableMappings[index] = vm
	d.mapping.Derivation = domain.DerivationUserEdited
	return nil
}

// RemoveVariable drops the variable mapping at index.
func (d *MappingDraft) RemoveVariable(index int) error {
	if index < 0 || index >= len(d.mapping.VariableMappings) {
		return fmt.Errorf("%w: %d", domain.ErrIndexOutOfRange, index)
	}
	d.mapping.VariableMappings = removeAt(d.mapping.VariableMappings, index)
	d.mapping.Derivation = domain.DerivationUserEdited
	return nil
}

// CommitDraft adds or updates the mapping described by d.
// A draft that never selected a function is rejected before the store sees it.
func (s *Store) CommitDraft(d *MappingDraft) (domain.NodeFunctionMapping, error) {
	m := d.Mapping()
	if m.FunctionID == "" {
		return domain.NodeFunctionMapping{}, fmt.Errorf("%w: functionId", domain.ErrMissingRequiredField)
	}
	if !d.existing {
		if m.VariableMappings == nil {
			m.VariableMappings = []domain.VariableMapping{}
		}
		return s.AddMapping(m)
	}

	err := s.UpdateMapping(m.ID, MappingPatch{
		Name:             &m.Name,
		Description:      &m.Description,
		Condition:        &m.Condition,
		NodeID:           &m.NodeID,
		FunctionID:       &m.FunctionID,
		VariableMappings: &m.VariableMappings,
	})
	if err != nil {
		return domain.NodeFunctionMapping{}, err
	}
	committed, _ := s.Snapshot().Mapping(m.ID)
	return committed, nil
}

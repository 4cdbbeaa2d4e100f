package store

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeWithFunction(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t)
	mustNode(t, s, "N", domain.NodeTypeLoader)
	mustNode(t, s, "M", domain.NodeTypeLoader)
	_, err := s.AddFunction(domain.Function{
		ReferenceID:     "F",
		Name:            "age check",
		Type:            domain.FunctionAPI,
		InputProperties: domain.NewEntries("age", "NUMBER"),
	})
	require.NoError(t, err)
	_, err = s.AddFunction(domain.Function{
		ReferenceID:      "G",
		Name:             "scoring",
		Type:             domain.FunctionKafka,
		OutputProperties: domain.NewEntries("score", "NUMBER"),
	})
	require.NoError(t, err)
	return s
}

func TestAddMapping_AutoDerives(t *testing.T) {
	s := storeWithFunction(t)

	m, err := s.AddMapping(domain.NodeFunctionMapping{NodeID: "N", FunctionID: "F"})
	require.NoError(t, err)

	require.Len(t, m.VariableMappings, 1)
	vm := m.VariableMappings[0]
	assert.Equal(t, domain.MappingInput, vm.MappingType)
	assert.Equal(t, "age", vm.SourceVariableName)
	assert.Equal(t, "NUMBER", vm.SourceVariableType)
	assert.Empty(t, vm.TargetParameterName)
	assert.Equal(t, domain.DerivationAutoDerived, m.Derivation)
}

func TestAddMapping_SuppliedListIsKept(t *testing.T) {
	s := storeWithFunction(t)

	m, err := s.AddMapping(domain.NodeFunctionMapping{NodeID: "N", FunctionID: "F", VariableMappings: []domain.VariableMapping{}})
	require.NoError(t, err)
	assert.Empty(t, m.VariableMappings)
	assert.Equal(t, domain.DerivationUserEdited, m.Derivation)
}

func TestAddMapping_Rejections(t *testing.T) {
	s := storeWithFunction(t)
	_, err := s.AddMapping(domain.NodeFunctionMapping{NodeID: "N", FunctionID: "F"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		mapping domain.NodeFunctionMapping
		want    error
	}{
		{"duplicate pair", domain.NodeFunctionMapping{NodeID: "N", FunctionID: "F"}, domain.ErrDuplicateMapping},
		{"missing node", domain.NodeFunctionMapping{FunctionID: "F"}, domain.ErrMissingRequiredField},
		{"missing function", domain.NodeFunctionMapping{NodeID: "N"}, domain.ErrMissingRequiredField},
		{"unknown node", domain.NodeFunctionMapping{NodeID: "ghost", FunctionID: "F"}, domain.ErrDanglingReference},
		{"unknown function", domain.NodeFunctionMapping{NodeID: "N", FunctionID: "ghost"}, domain.ErrDanglingReference},
		{"bad variable type", domain.NodeFunctionMapping{NodeID: "M", FunctionID: "F",
			VariableMappings: []domain.VariableMapping{{ID: "v", MappingType: "BOTH"}}}, domain.ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddMapping(tt.mapping)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Len(t, s.Snapshot().Mappings, 1)
}

func TestUpdateMapping(t *testing.T) {
	s := storeWithFunction(t)
	m, _ := s.AddMapping(domain.NodeFunctionMapping{NodeID: "N", FunctionID: "F"})
	_, err := s.AddMapping(domain.NodeFunctionMapping{NodeID: "M", FunctionID: "F"})
	require.NoError(t, err)

	// Re-pointing never derives.
	g := "G"
	require.NoError(t, s.UpdateMapping(m.ID, MappingPatch{FunctionID: &g}))
	got, _ := s.Snapshot().Mapping(m.ID)
	require.Len(t, got.VariableMappings, 1)
	assert.Equal(t, "input_age", got.VariableMappings[0].ID)

	vms := []domain.VariableMapping{{ID: "custom", MappingType: domain.MappingOutput, SourceVariableName: "score"}}
	require.NoError(t, s.UpdateMapping(m.ID, MappingPatch{VariableMappings: &vms}))
	got, _ = s.Snapshot().Mapping(m.ID)
	assert.Equal(t, domain.DerivationUserEdited, got.Derivation)
	assert.Equal(t, vms, got.VariableMappings)

	n := "M"
	f := "F"
	err = s.UpdateMapping(m.ID, MappingPatch{NodeID: &n, FunctionID: &f})
	assert.ErrorIs(t, err, domain.ErrDuplicateMapping)

	require.NoError(t, s.DeleteMapping(m.ID))
	assert.ErrorIs(t, s.DeleteMapping(m.ID), domain.ErrNotFound)
}

func TestMappingDraft_StateMachine(t *testing.T) {
	s := storeWithFunction(t)
	f, _ := s.Snapshot().Function("F")
	g, _ := s.Snapshot().Function("G")

	d := NewMappingDraft("N")
	assert.Equal(t, domain.DerivationEmpty, d.State())

	d.SelectFunction(f)
	assert.Equal(t, domain.DerivationAutoDerived, d.State())
	first := d.Mapping().VariableMappings
	require.Len(t, first, 1)

	d.SelectFunction(f)
	assert.Equal(t, first, d.Mapping().VariableMappings, "same function is idempotent")

	d.SelectFunction(g)
	assert.Equal(t, domain.DerivationAutoDerived, d.State())
	require.Len(t, d.Mapping().VariableMappings, 1)
	assert.Equal(t, "output_score", d.Mapping().VariableMappings[0].ID, "generated rows are replaced")

	vm := d.Mapping().VariableMappings[0]
	vm.TargetParameterName = "risk"
	require.NoError(t, d.UpdateVariable(0, vm))
	assert.Equal(t, domain.DerivationUserEdited, d.State())

	d.SelectFunction(f)
	assert.Equal(t, "F", d.Mapping().FunctionID)
	assert.Equal(t, "output_score", d.Mapping().VariableMappings[0].ID, "edited rows are never re-derived")

	assert.ErrorIs(t, d.RemoveVariable(4), domain.ErrIndexOutOfRange)
}

func TestCommitDraft(t *testing.T) {
	s := storeWithFunction(t)
	f, _ := s.Snapshot().Function("F")

	d := NewMappingDraft("N")
	d.SetDetails("age gate", "", "age != null")
	d.SelectFunction(f)
	m, err := s.CommitDraft(d)
	require.NoError(t, err)
	assert.Equal(t, domain.DerivationAutoDerived, m.Derivation)
	assert.Equal(t, "age gate", m.Name)

	edit := EditMappingDraft(m)
	assert.Equal(t, domain.DerivationUserEdited, edit.State())
	require.NoError(t, edit.RemoveVariable(0))
	updated, err := s.CommitDraft(edit)
	require.NoError(t, err)
	assert.Empty(t, updated.VariableMappings)
	assert.Len(t, s.Snapshot().Mappings, 1)

	before := s.Snapshot()
	empty := NewMappingDraft("N")
	_, err = s.CommitDraft(empty)
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	assert.Contains(t, err.Error(), "functionId")
	assert.Same(t, before, s.Snapshot(), "a rejected draft leaves the snapshot alone")
	for _, m := range s.Snapshot().Mappings {
		assert.NotEqual(t, domain.DerivationEmpty, m.Derivation)
	}
}

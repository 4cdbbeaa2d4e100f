package store

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFunction(t *testing.T) {
	s := newTestStore(t)
	_, _ = s.AddProperty("age", domain.PropertyNumber, "")

	fn, err := s.AddFunction(domain.Function{
		Name: "score",
		Type: domain.FunctionAPI,
		Config: domain.FunctionConfig{
			Method:      "POST",
			Headers:     []domain.Header{{Key: "X-Age", Type: domain.HeaderProperty, Value: "age"}},
			RequestBody: []domain.RequestBodyField{{APIField: "customer", Property: "customer_id"}},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, fn.ReferenceID, "referenceId is generated")
	assert.NotEmpty(t, fn.Config.RequestBody[0].ID)
	assert.Equal(t, []string{"age", "customer_id"}, fn.InputProperties.Keys())
	v, _ := fn.InputProperties.Get("age")
	assert.Equal(t, "NUMBER", v)

	_, err = s.AddFunction(domain.Function{ReferenceID: fn.ReferenceID, Name: "again", Type: domain.FunctionAPI})
	assert.ErrorIs(t, err, domain.ErrDuplicateID)

	_, err = s.AddFunction(domain.Function{Type: domain.FunctionAPI})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)

	_, err = s.AddFunction(domain.Function{Name: "x", Type: domain.FunctionAPI, Config: domain.FunctionConfig{Method: "PATCH"}})
	assert.ErrorIs(t, err, domain.ErrInvalidValue)

	_, err = s.AddFunction(domain.Function{Name: "x", Type: domain.FunctionAPI, Config: domain.FunctionConfig{TimeoutMs: 10}})
	assert.ErrorIs(t, err, domain.ErrInvalidValue)
}

func TestUpdateFunction(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddFunction(domain.Function{ReferenceID: "F", Name: "f", Type: domain.FunctionAPI})
	require.NoError(t, err)

	name := "renamed"
	cfg := domain.FunctionConfig{
		Host:    "api.example.com",
		Headers: []domain.Header{{Key: "X-Id", Type: domain.HeaderProperty, Value: "id"}},
	}
	require.NoError(t, s.UpdateFunction("F", FunctionPatch{Name: &name, Config: &cfg}))

	fn, _ := s.Snapshot().Function("F")
	assert.Equal(t, "renamed", fn.Name)
	assert.True(t, fn.InputProperties.Has("id"), "header input is declared")

	assert.ErrorIs(t, s.UpdateFunction("ghost", FunctionPatch{Name: &name}), domain.ErrNotFound)
}

func TestDeleteFunction_CascadesMappings(t *testing.T) {
	s := newTestStore(t)
	mustNode(t, s, "a", domain.NodeTypeLoader)
	_, _ = s.AddFunction(domain.Function{ReferenceID: "F", Name: "f", Type: domain.FunctionAPI})
	_, _ = s.AddFunction(domain.Function{ReferenceID: "G", Name: "g", Type: domain.FunctionKafka})
	_, err := s.AddMapping(domain.NodeFunctionMapping{NodeID: "a", FunctionID: "F"})
	require.NoError(t, err)
	_, err = s.AddMapping(domain.NodeFunctionMapping{NodeID: "a", FunctionID: "G"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteFunction("F"))

	for _, m := range s.Snapshot().Mappings {
		assert.NotEqual(t, "F", m.FunctionID)
	}
	assert.Len(t, s.Snapshot().Mappings, 1)
}

func TestFunctionEntries(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddFunction(domain.Function{
		ReferenceID: "F",
		Name:        "f",
		Type:        domain.FunctionAPI,
		Config: domain.FunctionConfig{
			Headers: []domain.Header{{Key: "X-Age", Type: domain.HeaderProperty, Value: "age"}},
		},
	})
	require.NoError(t, err)

	require.NoError(t, s.AddFunctionEntry("F", domain.FieldOutputProperties, "score", "NUMBER"))
	require.NoError(t, s.AddFunctionEntry("F", domain.FieldRequestBodyPath, "score", "$.data.score"))
	assert.ErrorIs(t, s.AddFunctionEntry("F", domain.FieldOutputProperties, "score", "STRING"), domain.ErrDuplicateKey)

	// Renaming a bound input follows into the header.
	require.NoError(t, s.UpdateFunctionEntry("F", domain.FieldInputProperties, 0, "years", "NUMBER"))
	fn, _ := s.Snapshot().Function("F")
	assert.Equal(t, []string{"years"}, fn.InputProperties.Keys())
	assert.Equal(t, "years", fn.Config.Headers[0].Value)

	assert.ErrorIs(t, s.RemoveFunctionEntry("F", domain.FieldInputProperties, 0), domain.ErrDanglingReference)
	assert.ErrorIs(t, s.RemoveFunctionEntry("F", domain.FieldOutputProperties, 3), domain.ErrIndexOutOfRange)
	assert.ErrorIs(t, s.AddFunctionEntry("F", "bogus", "k", "v"), domain.ErrInvalidValue)
	assert.ErrorIs(t, s.AddFunctionEntry("ghost", domain.FieldHeaderParams, "k", "v"), domain.ErrNotFound)

	require.NoError(t, s.RemoveFunctionEntry("F", domain.FieldOutputProperties, 0))
	fn, _ = s.Snapshot().Function("F")
	assert.Empty(t, fn.OutputProperties)
	assert.Equal(t, []string{"score"}, fn.Config.RequestBodyPath.Keys())
}

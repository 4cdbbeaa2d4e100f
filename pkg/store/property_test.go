package store

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddProperty(t *testing.T) {
	s := newTestStore(t)

	p, err := s.AddProperty("age", domain.PropertyNumber, "age > 18")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "age > 18", p.ValidationCondition)

	_, err = s.AddProperty("age", domain.PropertyString, "")
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)

	_, err = s.AddProperty("", domain.PropertyString, "")
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)

	_, err = s.AddProperty("x", "FLOAT", "")
	assert.ErrorIs(t, err, domain.ErrInvalidValue)

	assert.Len(t, s.Snapshot().Properties, 1)
}

func TestUpdateProperty_RenameCascades(t *testing.T) {
	s := newTestStore(t)
	p, err := s.AddProperty("age", domain.PropertyNumber, "")
	require.NoError(t, err)
	_, err = s.AddProperty("name", domain.PropertyString, "")
	require.NoError(t, err)

	_, err = s.AddFunction(domain.Function{
		ReferenceID:      "F",
		Name:             "score",
		Type:             domain.FunctionAPI,
		InputProperties:  domain.NewEntries("age", "NUMBER", "name", "STRING"),
		OutputProperties: domain.NewEntries("age", "NUMBER"),
		Config: domain.FunctionConfig{
			Headers:     []domain.Header{{Key: "X-Age", Type: domain.HeaderProperty, Value: "age"}},
			RequestBody: []domain.RequestBodyField{{APIField: "years", Property: "age"}},
		},
	})
	require.NoError(t, err)

	newKey := "years"
	require.NoError(t, s.UpdateProperty(p.ID, PropertyPatch{Key: &newKey}))

	fn, _ := s.Snapshot().Function("F")
	assert.Equal(t, []string{"years", "name"}, fn.InputProperties.Keys(), "rename keeps position")
	assert.Equal(t, []string{"years"}, fn.OutputProperties.Keys())
	assert.Equal(t, "years", fn.Config.Headers[0].Value)
	assert.Equal(t, "years", fn.Config.RequestBody[0].Property)

	taken := "name"
	err = s.UpdateProperty(p.ID, PropertyPatch{Key: &taken})
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
}

func TestUpdateProperty_TypeFollowsMatchingEntries(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.AddProperty("age", domain.PropertyNumber, "")
	_, err := s.AddFunction(domain.Function{
		ReferenceID:      "F",
		Name:             "f",
		Type:             domain.FunctionKafka,
		InputProperties:  domain.NewEntries("age", "NUMBER"),
		OutputProperties: domain.NewEntries("age", "STRING"),
	})
	require.NoError(t, err)

	typ := domain.PropertyString
	require.NoError(t, s.UpdateProperty(p.ID, PropertyPatch{Type: &typ}))

	fn, _ := s.Snapshot().Function("F")
	v, _ := fn.InputProperties.Get("age")
	assert.Equal(t, "STRING", v)
}

func TestUpdateProperty_NotFound(t *testing.T) {
	s := newTestStore(t)
	key := "x"
	assert.ErrorIs(t, s.UpdateProperty("ghost", PropertyPatch{Key: &key}), domain.ErrNotFound)
}

func TestDeleteProperty_Cascades(t *testing.T) {
	s := newTestStore(t)
	age, _ := s.AddProperty("age", domain.PropertyNumber, "")
	name, _ := s.AddProperty("name", domain.PropertyString, "")

	_, err := s.AddNode(domain.Node{ID: "a", Name: "A", Type: domain.NodeTypeInput, Properties: []string{age.ID, name.ID}})
	require.NoError(t, err)
	_, err = s.AddFunction(domain.Function{
		ReferenceID:      "F",
		Name:             "f",
		Type:             domain.FunctionAPI,
		InputProperties:  domain.NewEntries("age", "NUMBER", "name", "STRING"),
		OutputProperties: domain.NewEntries("age", "NUMBER"),
		Config: domain.FunctionConfig{
			Headers: []domain.Header{
				{Key: "X-Age", Type: domain.HeaderProperty, Value: "age"},
				{Key: "X-Tenant", Type: domain.HeaderConstant, Value: "age"},
			},
			RequestBody: []domain.RequestBodyField{{APIField: "years", Property: "age"}},
		},
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteProperty(age.ID))

	j := s.Snapshot()
	for _, n := range j.Nodes {
		assert.NotContains(t, n.Properties, age.ID)
	}
	fn, _ := j.Function("F")
	assert.False(t, fn.InputProperties.Has("age"))
	assert.False(t, fn.OutputProperties.Has("age"))
	assert.True(t, fn.InputProperties.Has("name"))
	require.Len(t, fn.Config.Headers, 1, "constant headers survive")
	assert.Equal(t, "X-Tenant", fn.Config.Headers[0].Key)
	assert.Empty(t, fn.Config.RequestBody)
	assert.Empty(t, domain.Check(j))

	assert.ErrorIs(t, s.DeleteProperty(age.ID), domain.ErrNotFound)
}

package serialization

import (
	"bytes"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *domain.Journey {
	x, y := 10.0, 20.0
	expr := "value * 2"
	return &domain.Journey{
		ID:         "j1",
		Name:       "Onboarding",
		Properties: []domain.Property{{ID: "p1", Key: "age", Type: domain.PropertyNumber}},
		Nodes: []domain.Node{
			{ID: "n1", Name: "Ask", Type: domain.NodeTypeInput, Properties: []string{"p1"}, X: &x, Y: &y},
			{ID: "n2", Name: "Score", Type: domain.NodeTypeLoader},
		},
		Functions: []domain.Function{{
			ReferenceID:      "f1",
			Name:             "score",
			Type:             domain.FunctionAPI,
			Config:           domain.FunctionConfig{Host: "h", Method: "POST", HeaderParams: domain.NewEntries("z", "1", "a", "2")},
			InputProperties:  domain.NewEntries("zeta", "STRING", "age", "NUMBER"),
			OutputProperties: domain.NewEntries("score", "NUMBER"),
		}},
		Mappings: []domain.NodeFunctionMapping{{
			ID: "m1", NodeID: "n2", FunctionID: "f1", Derivation: domain.DerivationAutoDerived,
			VariableMappings: []domain.VariableMapping{{ID: "input_age", MappingType: domain.MappingInput, TransformationExpression: &expr}},
		}},
		Edges:     []domain.Edge{{ID: "e1", FromNodeID: "n1", ToNodeID: "n2", ValidationCondition: "age > 18"}},
		IsActive:  true,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC),
	}
}

func TestSerializer_Journey(t *testing.T) {
	pipelines := []struct {
		codec       Codec
		compression Compression
		name        string
	}{
		{NewJSONCodec(), CompressionNone, "json"},
		{NewMsgPackCodec(), CompressionNone, "msgpack"},
		{NewMsgPackCodec(), CompressionZstd, "msgpack+zstd"},
		{NewJSONCodec(), CompressionZstd, "json+zstd"},
	}
	for _, p := range pipelines {
		t.Run(p.name, func(t *testing.T) {
			s, err := New(p.codec, p.compression)
			require.NoError(t, err)
			assert.Equal(t, p.name, s.Name())

			want := fixture()
			data, err := s.MarshalJourney(want)
			require.NoError(t, err)

			got, err := s.UnmarshalJourney(data)
			require.NoError(t, err)

			assert.Equal(t, want.Name, got.Name)
			assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
			assert.Equal(t, time.UTC, got.UpdatedAt.Location())
			assert.Equal(t, want.Nodes, got.Nodes)
			assert.Equal(t, want.Edges, got.Edges)
			assert.Equal(t, want.Mappings, got.Mappings)
			// Entry order survives.
			assert.Equal(t, []string{"zeta", "age"}, got.Functions[0].InputProperties.Keys())
			assert.Equal(t, []string{"z", "a"}, got.Functions[0].Config.HeaderParams.Keys())
		})
	}
}

func TestSerializer_CompressionShrinksRepetitiveData(t *testing.T) {
	j := fixture()
	for i := 0; i < 200; i++ {
		j.Edges = append(j.Edges, domain.Edge{ID: "e", FromNodeID: "n1", ToNodeID: "n2", ValidationCondition: "age > 18"})
	}
	plain, err := New(NewMsgPackCodec(), CompressionNone)
	require.NoError(t, err)
	a, err := plain.MarshalJourney(j)
	require.NoError(t, err)
	b, err := Default().MarshalJourney(j)
	require.NoError(t, err)
	assert.Less(t, len(b), len(a))
}

func TestSerializer_Errors(t *testing.T) {
	_, err := New(NewJSONCodec(), "lz4")
	assert.Error(t, err)

	_, err = Default().UnmarshalJourney([]byte("not zstd"))
	assert.ErrorContains(t, err, "decompression failed")

	s, err := New(NewJSONCodec(), "")
	require.NoError(t, err)
	_, err = s.UnmarshalJourney(bytes.Repeat([]byte("{"), 3))
	assert.ErrorContains(t, err, "codec decoding failed")
}

func TestCodecByName(t *testing.T) {
	c, err := CodecByName("json")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())
	_, err = CodecByName("xml")
	assert.Error(t, err)
}

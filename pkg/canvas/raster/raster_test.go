package raster

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/aretw0/waypoint/pkg/canvas"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_PNG(t *testing.T) {
	j := &domain.Journey{
		Nodes: []domain.Node{
			{ID: "a", Name: "Ask", Type: domain.NodeTypeInput},
			{ID: "b", Name: "Reject", Type: domain.NodeTypeDeadEnd},
		},
		Edges: []domain.Edge{{ID: "e", FromNodeID: "a", ToNodeID: "b", ValidationCondition: "x"}},
	}
	r, err := New(400, 300)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, canvas.BuildScene(j, canvas.Identity(), "a", canvas.DefaultSceneOptions())))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())

	// The input node centred at (250,250) is filled with the input colour #3B82F6.
	cr, cg, cb, _ := img.At(250, 225).RGBA()
	assert.Equal(t, uint32(0x3B), cr>>8)
	assert.Equal(t, uint32(0x82), cg>>8)
	assert.Equal(t, uint32(0xF6), cb>>8)
}

func TestNew_DefaultSize(t *testing.T) {
	r, err := New(0, -1)
	require.NoError(t, err)
	assert.Equal(t, canvas.DefaultWidth, r.Width)
	assert.Equal(t, canvas.DefaultHeight, r.Height)
}

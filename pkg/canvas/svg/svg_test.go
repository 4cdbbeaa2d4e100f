package svg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"testing"

	"github.com/aretw0/waypoint/pkg/canvas"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func journey() *domain.Journey {
	return &domain.Journey{
		Nodes: []domain.Node{
			{ID: "a", Name: "Ask <age>", Type: domain.NodeTypeInput, Properties: []string{"p"}},
			{ID: "b", Name: "Score", Type: domain.NodeTypeLoader},
		},
		Mappings: []domain.NodeFunctionMapping{{ID: "m", NodeID: "b", FunctionID: "f"}},
		Edges: []domain.Edge{
			{ID: "e", FromNodeID: "a", ToNodeID: "b", ValidationCondition: `age >= 18 && name != ""`},
		},
	}
}

func TestRender(t *testing.T) {
	scene := canvas.BuildScene(journey(), canvas.Viewport{TranslateX: 10, TranslateY: -5, Scale: 1.5}, "b", canvas.DefaultSceneOptions())

	var buf bytes.Buffer
	require.NoError(t, New(0, 0).Render(&buf, scene))
	out := buf.String()

	assert.Contains(t, out, `width="800" height="600"`)
	assert.Contains(t, out, `transform="translate(10 -5) scale(1.5)"`)
	assert.Contains(t, out, `data-node-id="a" data-node-type="input"`)
	assert.Contains(t, out, `class="node selected" data-node-id="b"`)
	assert.Contains(t, out, `<line x1="285" y1="250" x2="365" y2="250"`)
	assert.Contains(t, out, "Ask &lt;age&gt;")
	assert.Contains(t, out, "age &gt;= 18 &amp;&amp; name != &#34;&#34;")
	assert.Contains(t, out, "1 props")
	assert.Contains(t, out, `class="badge"`)

	// Well-formed XML.
	dec := xml.NewDecoder(bytes.NewReader(buf.Bytes()))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}
}

func TestRender_EmptyScene(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(320, 240).Render(&buf, canvas.BuildScene(nil, canvas.Identity(), "", canvas.SceneOptions{})))
	assert.Contains(t, buf.String(), `viewBox="0 0 320 240"`)
	assert.NotContains(t, buf.String(), "<circle")
}

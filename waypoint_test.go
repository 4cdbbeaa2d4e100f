package waypoint_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/canvas/svg"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/aretw0/waypoint/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresPathWithoutStore(t *testing.T) {
	_, err := waypoint.New("")
	assert.Error(t, err)
}

func TestEditor_LoamRoundTrip(t *testing.T) {
	ctx := context.Background()
	editor, err := waypoint.New(t.TempDir())
	require.NoError(t, err)
	assert.NotEmpty(t, editor.Name)

	id, err := editor.Create(ctx, "Checkout")
	require.NoError(t, err)

	j, err := editor.Edit(ctx, id, func(st *store.Store) error {
		if _, err := st.AddProperty("email", domain.PropertyString, ""); err != nil {
			return err
		}
		_, err := st.AddNode(domain.Node{ID: "start", Name: "Start", Type: domain.NodeTypeInput})
		return err
	})
	require.NoError(t, err)
	assert.Len(t, j.Properties, 1)

	require.NoError(t, editor.Save(ctx, id))
	require.NoError(t, editor.Close(ctx, id))

	list, err := editor.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Checkout", list[0].Name)

	_, err = editor.Open(ctx, id)
	require.NoError(t, err)
	snap, err := editor.Snapshot(ctx, id)
	require.NoError(t, err)
	_, ok := snap.Node("start")
	assert.True(t, ok)
	editor.Shutdown(ctx)
}

func TestEditor_SessionRules(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore()
	editor, err := waypoint.New("", waypoint.WithStore(repo))
	require.NoError(t, err)
	require.NoError(t, editor.Import(ctx, ports.ContractJourney("j1")))

	_, err = editor.Open(ctx, "j1")
	require.NoError(t, err)
	_, err = editor.Open(ctx, "j1")
	assert.ErrorIs(t, err, session.ErrSessionBusy)

	_, err = editor.Edit(ctx, "j1", func(st *store.Store) error {
		_, err := st.AddEdge(domain.Edge{FromNodeID: "n-ask", ToNodeID: "n-score"})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateEdge)

	var buf bytes.Buffer
	require.NoError(t, editor.Render(ctx, "j1", &buf, svg.New(800, 600)))
	assert.Contains(t, buf.String(), "<svg")

	require.NoError(t, editor.Close(ctx, "j1"))
	_, err = editor.Snapshot(ctx, "j1")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.Same(t, repo, editor.Store())
}

func TestEditor_ImportRejectsBrokenJourney(t *testing.T) {
	editor, err := waypoint.New("", waypoint.WithStore(memory.NewStore()))
	require.NoError(t, err)

	j := ports.ContractJourney("broken")
	j.Edges = append(j.Edges, domain.Edge{ID: "e-loop", FromNodeID: "n-ask", ToNodeID: "n-ask"})
	err = editor.Import(context.Background(), j)
	assert.ErrorIs(t, err, domain.ErrSelfLoop)
}

func TestEditor_CatalogFunctions(t *testing.T) {
	ctx := context.Background()
	catalog := memory.NewCatalog(
		domain.Function{ReferenceID: "f-score", Name: "remote score", Type: domain.FunctionAPI},
		domain.Function{ReferenceID: "f-kyc", Name: "kyc", Type: domain.FunctionKafka,
			InputProperties: domain.NewEntries("name", "STRING")},
	)
	editor, err := waypoint.New("", waypoint.WithStore(memory.NewStore()), waypoint.WithCatalog(catalog))
	require.NoError(t, err)
	require.NoError(t, editor.Import(ctx, ports.ContractJourney("j1")))
	_, err = editor.Open(ctx, "j1")
	require.NoError(t, err)

	fns, err := editor.AvailableFunctions(ctx, "j1")
	require.NoError(t, err)
	require.Len(t, fns, 2)
	assert.Equal(t, "score", fns[0].Name, "journey functions win over the catalog")
	assert.Equal(t, "f-kyc", fns[1].ReferenceID)

	added, err := editor.ImportFunction(ctx, "j1", "f-kyc")
	require.NoError(t, err)
	assert.True(t, added.InputProperties.Has("name"))

	_, err = editor.ImportFunction(ctx, "j1", "f-kyc")
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
	_, err = editor.ImportFunction(ctx, "j1", "f-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

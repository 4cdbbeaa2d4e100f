package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name       string
		journey    *domain.Journey
		overlay    *graph.GraphOverlay
		contains   []string
		notContain []string
	}{
		{
			name: "Node Shapes",
			journey: &domain.Journey{Nodes: []domain.Node{
				{ID: "in", Name: "Ask", Type: domain.NodeTypeInput},
				{ID: "ld", Name: "Load", Type: domain.NodeTypeLoader},
				{ID: "de", Name: "Stop", Type: domain.NodeTypeDeadEnd},
			}},
			contains: []string{
				`in[/"Ask"/]`,
				`ld[["Load"]]`,
				`de{{"Stop"}}`,
			},
		},
		{
			name: "ID Sanitization",
			journey: &domain.Journey{Nodes: []domain.Node{
				{ID: "path/to/file.md", Name: "p"},
				{ID: "hyphen-ated", Name: "h"},
			}},
			contains: []string{
				`path_to_file_md["p"]`,
				`hyphen_ated["h"]`,
			},
		},
		{
			name: "Annotations",
			journey: &domain.Journey{
				Nodes:    []domain.Node{{ID: "a", Name: "A", Type: domain.NodeTypeLoader, Properties: []string{"p1", "p2"}}},
				Mappings: []domain.NodeFunctionMapping{{ID: "m", NodeID: "a", FunctionID: "f"}},
			},
			contains: []string{`a[["A ƒ <br/> 2 props"]]`},
		},
		{
			name: "Edge Escaping",
			journey: &domain.Journey{
				Nodes: []domain.Node{{ID: "A", Name: "A"}, {ID: "B", Name: "B"}},
				Edges: []domain.Edge{{ID: "e", FromNodeID: "A", ToNodeID: "B", ValidationCondition: `input == "yes"`}},
			},
			contains: []string{`A -- "input == 'yes'" --> B`},
		},
		{
			name: "Skipped Edges",
			journey: &domain.Journey{
				Nodes: []domain.Node{{ID: "X", Name: "X", Type: domain.NodeTypeDeadEnd}, {ID: "Y", Name: "Y"}},
				Edges: []domain.Edge{
					{ID: "e1", FromNodeID: "X", ToNodeID: "Y"},
					{ID: "e2", FromNodeID: "Y", ToNodeID: "ghost"},
				},
			},
			notContain: []string{"X --> Y", "ghost"},
		},
		{
			name: "Placeholder",
			journey: &domain.Journey{
				Edges: []domain.Edge{{ID: "e", FromNodeID: domain.StartMarker, ToNodeID: domain.EndMarker}},
			},
			contains: []string{"start --> end", `start(("start"))`, `end(("end"))`},
		},
		{
			name:    "Overlay",
			journey: &domain.Journey{Nodes: []domain.Node{{ID: "a-1", Name: "A"}}},
			overlay: &graph.GraphOverlay{SelectedNode: "a-1", Highlighted: []string{"a-1", "a-1"}},
			contains: []string{
				"class a_1 selected;",
				"class a_1 highlighted;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.journey, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, bad := range tt.notContain {
				if strings.Contains(got, bad) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, bad)
				}
			}
			if strings.Count(got, "class a_1 highlighted;") > 1 {
				t.Errorf("highlighted nodes must be deduplicated")
			}
		})
	}
}

func TestGenerateMermaid_Nil(t *testing.T) {
	if got := graph.GenerateMermaid(nil, nil); got != "graph TD\n" {
		t.Errorf("GenerateMermaid(nil) = %q", got)
	}
}

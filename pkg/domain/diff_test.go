package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	base := &Journey{
		ID:    "j1",
		Name:  "onboarding",
		Nodes: []Node{{ID: "a", Name: "A", Type: NodeTypeInput}},
		Edges: []Edge{},
	}

	t.Run("Initial Load (Old is Nil)", func(t *testing.T) {
		d := Diff(nil, base)
		if d == nil {
			t.Fatal("expected diff")
		}
		if d.Name == nil || *d.Name != "onboarding" {
			t.Errorf("Name = %v", d.Name)
		}
		if d.Nodes == nil || !reflect.DeepEqual(d.Nodes.Added, []string{"a"}) {
			t.Errorf("Nodes = %+v", d.Nodes)
		}
	})

	t.Run("Same Pointer", func(t *testing.T) {
		if d := Diff(base, base); d != nil {
			t.Errorf("expected nil, got %+v", d)
		}
	})

	t.Run("No Changes besides clone", func(t *testing.T) {
		if d := Diff(base, base.Clone()); d != nil {
			t.Errorf("expected nil, got %+v", d)
		}
	})

	t.Run("Added, Changed and Removed", func(t *testing.T) {
		next := base.Clone()
		next.Nodes[0].Name = "renamed"
		next.Nodes = append(next.Nodes, Node{ID: "b", Name: "B", Type: NodeTypeLoader})
		next.IsActive = true

		d := Diff(base, next)
		if d == nil {
			t.Fatal("expected diff")
		}
		if !reflect.DeepEqual(d.Nodes.Added, []string{"b"}) || !reflect.DeepEqual(d.Nodes.Changed, []string{"a"}) {
			t.Errorf("Nodes = %+v", d.Nodes)
		}
		if d.IsActive == nil || !*d.IsActive {
			t.Errorf("IsActive = %v", d.IsActive)
		}
		if d.Name != nil {
			t.Errorf("Name should be unchanged, got %v", *d.Name)
		}

		removed := Diff(next, base)
		if !reflect.DeepEqual(removed.Nodes.Removed, []string{"b"}) {
			t.Errorf("Removed = %+v", removed.Nodes)
		}
	})

	t.Run("JSON omits untouched collections", func(t *testing.T) {
		next := base.Clone()
		next.Edges = append(next.Edges, Edge{ID: "e1", FromNodeID: "a", ToNodeID: "b"})
		data, err := json.Marshal(Diff(base, next))
		if err != nil {
			t.Fatal(err)
		}
		s := string(data)
		if !strings.Contains(s, `"edges":{"added":["e1"]}`) {
			t.Errorf("unexpected json %s", s)
		}
		if strings.Contains(s, `"nodes"`) {
			t.Errorf("nodes should be omitted: %s", s)
		}
	})
}

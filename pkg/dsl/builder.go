package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/store"
)

type propertyDef struct {
	key       string
	typ       domain.PropertyType
	condition string
}

// Builder collects a journey definition. Nodes and functions are referred to by the
// ids given to Node and Function, so edges may point forward.
type Builder struct {
	name        string
	description string
	active      bool

	properties []propertyDef
	functions  []*FunctionBuilder
	nodes      []*NodeBuilder
	byID       map[string]*NodeBuilder
}

// New creates a new journey builder.
func New(name string) *Builder {
	return &Builder{
		name: name,
		byID: make(map[string]*NodeBuilder),
	}
}

// Describe sets the journey description.
func (b *Builder) Describe(description string) *Builder {
	b.description = description
	return b
}

// Active marks the journey active.
func (b *Builder) Active() *Builder {
	b.active = true
	return b
}

// Property declares a journey property.
func (b *Builder) Property(key string, typ domain.PropertyType) *Builder {
	return b.PropertyWhen(key, typ, "")
}

// PropertyWhen declares a journey property with a validation condition.
func (b *Builder) PropertyWhen(key string, typ domain.PropertyType, condition string) *Builder {
	b.properties = append(b.properties, propertyDef{key: key, typ: typ, condition: condition})
	return b
}

// Function declares a function with the given reference id.
func (b *Builder) Function(referenceID string) *FunctionBuilder {
	fb := &FunctionBuilder{fn: domain.Function{
		ReferenceID: referenceID,
		Name:        referenceID,
		Type:        domain.FunctionAPI,
	}}
	b.functions = append(b.functions, fb)
	return fb
}

// Node creates a node with the given id.
// If the node already exists, it returns the existing builder.
func (b *Builder) Node(id string) *NodeBuilder {
	if nb, ok := b.byID[id]; ok {
		return nb
	}
	nb := &NodeBuilder{node: domain.Node{ID: id, Name: id, Type: domain.NodeTypeLoader}}
	b.nodes = append(b.nodes, nb)
	b.byID[id] = nb
	return nb
}

// BuildStore replays the definition into a new model store.
// Errors from every step are joined; the store holds whatever succeeded.
func (b *Builder) BuildStore(opts ...store.Option) (*store.Store, error) {
	s := store.New(opts...)
	var errs []error
	fail := func(err error, format string, args ...any) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err))
		}
	}

	name, desc := b.name, b.description
	s.UpdateDetails(store.DetailsPatch{Name: &name, Description: &desc})
	if b.active {
		s.SetActive(true)
	}

	propIDs := make(map[string]string, len(b.properties))
	for _, p := range b.properties {
		added, err := s.AddProperty(p.key, p.typ, p.condition)
		fail(err, "property %q", p.key)
		if err == nil {
			propIDs[p.key] = added.ID
		}
	}

	for _, fb := range b.functions {
		_, err := s.AddFunction(fb.fn)
		fail(err, "function %q", fb.fn.ReferenceID)
	}

	for _, nb := range b.nodes {
		n := nb.node.Clone()
		n.Properties = make([]string, 0, len(nb.props))
		for _, key := range nb.props {
			id, ok := propIDs[key]
			if !ok {
				fail(fmt.Errorf("%w: property key %q", domain.ErrDanglingReference, key), "node %q", n.ID)
				continue
			}
			n.Properties = append(n.Properties, id)
		}
		_, err := s.AddNode(n)
		fail(err, "node %q", n.ID)
	}

	for _, nb := range b.nodes {
		for _, fnID := range nb.uses {
			fn, ok := s.Snapshot().Function(fnID)
			if !ok {
				fail(fmt.Errorf("%w: function %q", domain.ErrDanglingReference, fnID), "node %q", nb.node.ID)
				continue
			}
			draft := store.NewMappingDraft(nb.node.ID)
			draft.SetDetails(nb.node.Name+" → "+fn.Name, "", "")
			draft.SelectFunction(fn)
			_, err := s.CommitDraft(draft)
			fail(err, "mapping %q → %q", nb.node.ID, fnID)
		}
		for _, e := range nb.edges {
			e.FromNodeID = nb.node.ID
			_, err := s.AddEdge(e)
			fail(err, "edge %q → %q", e.FromNodeID, e.ToNodeID)
		}
	}

	return s, errors.Join(errs...)
}

// Build returns the resulting journey snapshot.
func (b *Builder) Build(opts ...store.Option) (*domain.Journey, error) {
	s, err := b.BuildStore(opts...)
	if err != nil {
		return nil, err
	}
	return s.Snapshot().Clone(), nil
}

// MustBuild is like Build but panics on error. It is meant for tests and fixtures.
func (b *Builder) MustBuild(opts ...store.Option) *domain.Journey {
	j, err := b.Build(opts...)
	if err != nil {
		panic(err)
	}
	return j
}

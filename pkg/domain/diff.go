package domain

import (
	"reflect"
	"time"
)

// JourneyDiff represents the changes between two journey snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type JourneyDiff struct {
	// JourneyID is always present to identify the target.
	JourneyID string `json:"journey_id"`

	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`

	Properties *Delta `json:"properties,omitempty"`
	Nodes      *Delta `json:"nodes,omitempty"`
	Functions  *Delta `json:"functions,omitempty"`
	Mappings   *Delta `json:"mappings,omitempty"`
	Edges      *Delta `json:"edges,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Delta lists ids per change kind within one collection.
type Delta struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Changed []string `json:"changed,omitempty"`
}

func (d *Delta) empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Diff calculates the difference between oldJ and newJ.
// If oldJ is nil, it returns a diff representing the entire newJ (initial load).
// It returns nil when nothing but the timestamps changed.
func Diff(oldJ, newJ *Journey) *JourneyDiff {
	if newJ == nil {
		return nil
	}
	if oldJ == newJ {
		return nil
	}

	diff := &JourneyDiff{JourneyID: newJ.ID, UpdatedAt: newJ.UpdatedAt}
	if oldJ == nil {
		oldJ = &Journey{}
		diff.Name = &newJ.Name
		diff.Description = &newJ.Description
		diff.IsActive = &newJ.IsActive
	} else {
		if oldJ.Name != newJ.Name {
			diff.Name = &newJ.Name
		}
		if oldJ.Description != newJ.Description {
			diff.Description = &newJ.Description
		}
		if oldJ.IsActive != newJ.IsActive {
			diff.IsActive = &newJ.IsActive
		}
	}

	diff.Properties = diffCollection(oldJ.Properties, newJ.Properties, func(p Property) string { return p.ID })
	diff.Nodes = diffCollection(oldJ.Nodes, newJ.Nodes, func(n Node) string { return n.ID })
	diff.Functions = diffCollection(oldJ.Functions, newJ.Functions, func(f Function) string { return f.ReferenceID })
	diff.Mappings = diffCollection(oldJ.Mappings, newJ.Mappings, func(m NodeFunctionMapping) string { return m.ID })
	diff.Edges = diffCollection(oldJ.Edges, newJ.Edges, func(e Edge) string { return e.ID })

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffCollection[T any](old, new []T, id func(T) string) *Delta {
	delta := &Delta{}
	before := make(map[string]T, len(old))
	for _, item := range old {
		before[id(item)] = item
	}

	seen := make(map[string]bool, len(new))
	for _, item := range new {
		key := id(item)
		seen[key] = true
		prev, exists := before[key]
		if !exists {
			delta.Added = append(delta.Added, key)
		} else if !reflect.DeepEqual(prev, item) {
			delta.Changed = append(delta.Changed, key)
		}
	}

	for _, item := range old {
		if key := id(item); !seen[key] {
			delta.Removed = append(delta.Removed, key)
		}
	}

	// Return nil if delta is empty so omitempty can remove the key
	if delta.empty() {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *JourneyDiff) IsEmpty() bool {
	return d.Name == nil &&
		d.Description == nil &&
		d.IsActive == nil &&
		d.Properties == nil &&
		d.Nodes == nil &&
		d.Functions == nil &&
		d.Mappings == nil &&
		d.Edges == nil
}

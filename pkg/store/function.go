package store

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// FunctionPatch edits a function. Nil fields are left alone. The reference id cannot
// change.
type FunctionPatch struct {
	Name             *string
	Type             *domain.FunctionType
	Config           *domain.FunctionConfig
	InputProperties  *domain.Entries
	OutputProperties *domain.Entries
}

// AddFunction appends a function. An empty ReferenceID is generated.
func (s *Store) AddFunction(fn domain.Function) (domain.Function, error) {
	f := fn.Clone()
	if f.ReferenceID == "" {
		f.ReferenceID = s.newID()
	}
	err := s.apply("add_function", func(j *domain.Journey) error {
		if _, taken := j.Function(f.ReferenceID); taken {
			return fmt.Errorf("%w: function %q", domain.ErrDuplicateID, f.ReferenceID)
		}
		checked, err := s.checkFunction(j, f)
		if err != nil {
			return err
		}
		f = checked
		j.Functions = append(j.Functions, f)
		return nil
	})
	if err != nil {
		return domain.Function{}, err
	}
	return f.Clone(), nil
}

// UpdateFunction edits a function.
func (s *Store) UpdateFunction(id string, patch FunctionPatch) error {
	return s.apply("update_function", func(j *domain.Journey) error {
		i := indexOf(j.Functions, func(f domain.Function) bool { return f.ReferenceID == id })
		if i < 0 {
			return fmt.Errorf("%w: function %q", domain.ErrNotFound, id)
		}
		f := j.Functions[i]
		if patch.Name != nil {
			f.Name = *patch.Name
		}
		if patch.Type != nil {
			f.Type = *patch.Type
		}
		if patch.Config != nil {
			f.Config = *patch.Config
		}
		if patch.InputProperties != nil {
			f.InputProperties = *patch.InputProperties
		}
		if patch.OutputProperties != nil {
			f.OutputProperties = *patch.OutputProperties
		}
		checked, err := s.checkFunction(j, f.Clone())
		if err != nil {
			return err
		}
		j.Functions[i] = checked
		return nil
	})
}

// DeleteFunction removes a function and the mappings bound to it.
func (s *Store) DeleteFunction(id string) error {
	return s.apply("delete_function", func(j *domain.Journey) error {
		i := indexOf(j.Functions, func(f domain.Function) bool { return f.ReferenceID == id })
		if i < 0 {
			return fmt.Errorf("%w: function %q", domain.ErrNotFound, id)
		}
		j.Functions = removeAt(j.Functions, i)
		j.Mappings = filter(j.Mappings, func(m domain.NodeFunctionMapping) bool { return m.FunctionID != id })
		return nil
	})
}

// AddFunctionEntry appends a key/value pair to one of the map-shaped fields.
func (s *Store) AddFunctionEntry(id string, field domain.FunctionField, key, value string) error {
	return s.editEntries("add_function_entry", id, field, func(f domain.Function, e domain.Entries) (domain.Function, domain.Entries, error) {
		e, err := e.Add(key, value)
		return f, e, err
	})
}

// UpdateFunctionEntry rewrites the pair at index. Renaming an input key also renames
// the headers and body bindings that feed it.
func (s *Store) UpdateFunctionEntry(id string, field domain.FunctionField, index int, key, value string) error {
	return s.editEntries("update_function_entry", id, field, func(f domain.Function, e domain.Entries) (domain.Function, domain.Entries, error) {
		var oldKey string
		if index >= 0 && index < len(e) {
			oldKey = e[index].Key
		}
		e, err := e.Update(index, key, value)
		if err != nil {
			return f, e, err
		}
		if field == domain.FieldInputProperties && oldKey != key {
			f = renameBindings(f, oldKey, key)
		}
		return f, e, nil
	})
}

// RemoveFunctionEntry drops the pair at index. An input still fed by a property
// header or body binding cannot be removed.
func (s *Store) RemoveFunctionEntry(id string, field domain.FunctionField, index int) error {
	return s.editEntries("remove_function_entry", id, field, func(f domain.Function, e domain.Entries) (domain.Function, domain.Entries, error) {
		if field == domain.FieldInputProperties && index >= 0 && index < len(e) {
			key := e[index].Key
			for _, used := range f.ReferencedInputKeys() {
				if used == key {
					return f, e, fmt.Errorf("%w: input %q is still bound by a header or body field", domain.ErrDanglingReference, key)
				}
			}
		}
		e, err := e.Remove(index)
		return f, e, err
	})
}

func (s *Store) editEntries(operation, id string, field domain.FunctionField,
	edit func(domain.Function, domain.Entries) (domain.Function, domain.Entries, error)) error {
	return s.apply(operation, func(j *domain.Journey) error {
		i := indexOf(j.Functions, func(f domain.Function) bool { return f.ReferenceID == id })
		if i < 0 {
			return fmt.Errorf("%w: function %q", domain.ErrNotFound, id)
		}
		f := j.Functions[i]
		current, ok := f.Entries(field)
		if !ok {
			return fmt.Errorf("%w: function field %q", domain.ErrInvalidValue, field)
		}
		f, updated, err := edit(f, current)
		if err != nil {
			return err
		}
		f, _ = f.WithEntries(field, updated)
		j.Functions[i] = domain.SyncInputs(f, j.Properties)
		return nil
	})
}

// renameBindings points property headers and body fields at newKey.
func renameBindings(f domain.Function, oldKey, newKey string) domain.Function {
	for hi, h := range f.Config.Headers {
		if h.Type == domain.HeaderProperty && h.Value == oldKey {
			f.Config.Headers[hi].Value = newKey
		}
	}
	for bi, b := range f.Config.RequestBody {
		if b.Property == oldKey {
			f.Config.RequestBody[bi].Property = newKey
		}
	}
	return f
}

// checkFunction validates f, fills body field ids and re-establishes the
// header/body → input declaration invariant.
func (s *Store) checkFunction(j *domain.Journey, f domain.Function) (domain.Function, error) {
	if err := validateEntity("function", f); err != nil {
		return f, err
	}
	for bi, b := range f.Config.RequestBody {
		if b.ID == "" {
			f.Config.RequestBody[bi].ID = s.newID()
		}
	}
	if f.InputProperties == nil {
		f.InputProperties = domain.Entries{}
	}
	if f.OutputProperties == nil {
		f.OutputProperties = domain.Entries{}
	}
	return domain.SyncInputs(f, j.Properties), nil
}

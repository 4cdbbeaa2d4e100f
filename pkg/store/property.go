package store

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// PropertyPatch edits a property. Nil fields are left alone.
type PropertyPatch struct {
	Key                 *string
	Type                *domain.PropertyType
	ValidationCondition *string
}

// AddProperty appends a property with a fresh id.
func (s *Store) AddProperty(key string, typ domain.PropertyType, validationCondition string) (domain.Property, error) {
	p := domain.Property{ID: s.newID(), Key: key, Type: typ, ValidationCondition: validationCondition}
	err := s.apply("add_property", func(j *domain.Journey) error {
		if err := validateEntity("property", p); err != nil {
			return err
		}
		if _, taken := j.PropertyByKey(p.Key); taken {
			return fmt.Errorf("%w: property %q", domain.ErrDuplicateKey, p.Key)
		}
		j.Properties = append(j.Properties, p)
		return nil
	})
	if err != nil {
		return domain.Property{}, err
	}
	return p, nil
}

// UpdateProperty edits a property. A key change is carried into every function that
// used the old key: input/output declarations, property headers and body bindings.
func (s *Store) UpdateProperty(id string, patch PropertyPatch) error {
	return s.apply("update_property", func(j *domain.Journey) error {
		i := indexOf(j.Properties, func(p domain.Property) bool { return p.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: property %q", domain.ErrNotFound, id)
		}
		old := j.Properties[i]
		p := old
		if patch.Key != nil {
			p.Key = *patch.Key
		}
		if patch.Type != nil {
			p.Type = *patch.Type
		}
		if patch.ValidationCondition != nil {
			p.ValidationCondition = *patch.ValidationCondition
		}
		if err := validateEntity("property", p); err != nil {
			return err
		}
		if p.Key != old.Key {
			if other, taken := j.PropertyByKey(p.Key); taken && other.ID != id {
				return fmt.Errorf("%w: property %q", domain.ErrDuplicateKey, p.Key)
			}
		}
		j.Properties[i] = p

		for fi, fn := range j.Functions {
			if p.Key != old.Key {
				fn = renameFunctionKey(fn, old.Key, p.Key)
			}
			if p.Type != old.Type {
				fn.InputProperties = retype(fn.InputProperties, p.Key, old.Type, p.Type)
				fn.OutputProperties = retype(fn.OutputProperties, p.Key, old.Type, p.Type)
			}
			j.Functions[fi] = fn
		}
		return nil
	})
}

// DeleteProperty removes a property and every reference to it.
func (s *Store) DeleteProperty(id string) error {
	return s.apply("delete_property", func(j *domain.Journey) error {
		i := indexOf(j.Properties, func(p domain.Property) bool { return p.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: property %q", domain.ErrNotFound, id)
		}
		key := j.Properties[i].Key
		j.Properties = removeAt(j.Properties, i)

		for ni, n := range j.Nodes {
			j.Nodes[ni].Properties = filter(n.Properties, func(pid string) bool { return pid != id })
		}
		for fi, fn := range j.Functions {
			j.Functions[fi] = dropFunctionKey(fn, key)
		}
		return nil
	})
}

// renameFunctionKey moves oldKey to newKey wherever fn refers to a property key.
// If fn already declares newKey, the old declaration is dropped instead.
func renameFunctionKey(fn domain.Function, oldKey, newKey string) domain.Function {
	fn.InputProperties = renameEntry(fn.InputProperties, oldKey, newKey)
	fn.OutputProperties = renameEntry(fn.OutputProperties, oldKey, newKey)
	for hi, h := range fn.Config.Headers {
		if h.Type == domain.HeaderProperty && h.Value == oldKey {
			fn.Config.Headers[hi].Value = newKey
		}
	}
	for bi, b := range fn.Config.RequestBody {
		if b.Property == oldKey {
			fn.Config.RequestBody[bi].Property = newKey
		}
	}
	return fn
}

func renameEntry(e domain.Entries, oldKey, newKey string) domain.Entries {
	if !e.Has(oldKey) {
		return e
	}
	if e.Has(newKey) {
		e, _ = e.Delete(oldKey)
		return e
	}
	return e.Rename(oldKey, newKey)
}

func retype(e domain.Entries, key string, from, to domain.PropertyType) domain.Entries {
	if v, ok := e.Get(key); ok && v == string(from) {
		return e.Set(key, string(to))
	}
	return e
}

// dropFunctionKey removes key from the contract of fn and from the headers and body
// bindings that feed it.
func dropFunctionKey(fn domain.Function, key string) domain.Function {
	fn.InputProperties, _ = fn.InputProperties.Delete(key)
	fn.OutputProperties, _ = fn.OutputProperties.Delete(key)
	if fn.Config.Headers != nil {
		fn.Config.Headers = filter(fn.Config.Headers, func(h domain.Header) bool {
			return !(h.Type == domain.HeaderProperty && h.Value == key)
		})
	}
	if fn.Config.RequestBody != nil {
		fn.Config.RequestBody = filter(fn.Config.RequestBody, func(b domain.RequestBodyField) bool {
			return b.Property != key
		})
	}
	return fn
}

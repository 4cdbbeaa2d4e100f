package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Entry is a single key/value pair of an Entries list.
type Entry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Entries is an ordered list of unique-key pairs. It replaces plain maps for every
// map-shaped field so that keys keep their position when renamed.
//
// Entries is treated as a value: mutating methods return a new list and leave the
// receiver untouched. On the wire it is an object whose member order is preserved.
type Entries []Entry

// NewEntries builds Entries from alternating key, value arguments.
// A trailing key without a value is ignored.
func NewEntries(pairs ...string) Entries {
	out := make(Entries, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = out.Set(pairs[i], pairs[i+1])
	}
	return out
}

// Len returns the number of pairs.
func (e Entries) Len() int { return len(e) }

// Index returns the position of key, or -1.
func (e Entries) Index(key string) int {
	for i, entry := range e {
		if entry.Key == key {
			return i
		}
	}
	return -1
}

// Get returns the value stored under key.
func (e Entries) Get(key string) (string, bool) {
	if i := e.Index(key); i >= 0 {
		return e[i].Value, true
	}
	return "", false
}

// Has reports whether key is present.
func (e Entries) Has(key string) bool {
	return e.Index(key) >= 0
}

// Keys returns the keys in order.
func (e Entries) Keys() []string {
	keys := make([]string, len(e))
	for i, entry := range e {
		keys[i] = entry.Key
	}
	return keys
}

// Clone returns an independent copy. Nil stays nil.
func (e Entries) Clone() Entries {
	if e == nil {
		return nil
	}
	out := make(Entries, len(e))
	copy(out, e)
	return out
}

// Add appends a new pair. The key must be non-empty and unused.
func (e Entries) Add(key, value string) (Entries, error) {
	if key == "" {
		return e, fmt.Errorf("%w: entry key", ErrMissingRequiredField)
	}
	if e.Has(key) {
		return e, fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	return append(e.Clone(), Entry{Key: key, Value: value}), nil
}

// Update replaces the pair at index i. Renaming keeps the position.
func (e Entries) Update(i int, key, value string) (Entries, error) {
	if i < 0 || i >= len(e) {
		return e, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(e))
	}
	if key == "" {
		return e, fmt.Errorf("%w: entry key", ErrMissingRequiredField)
	}
	if j := e.Index(key); j >= 0 && j != i {
		return e, fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	out := e.Clone()
	out[i] = Entry{Key: key, Value: value}
	return out, nil
}

// Remove drops the pair at index i.
func (e Entries) Remove(i int) (Entries, error) {
	if i < 0 || i >= len(e) {
		return e, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(e))
	}
	out := make(Entries, 0, len(e)-1)
	out = append(out, e[:i]...)
	return append(out, e[i+1:]...), nil
}

// Set stores value under key, in place when present, appended otherwise.
func (e Entries) Set(key, value string) Entries {
	out := e.Clone()
	if i := out.Index(key); i >= 0 {
		out[i].Value = value
		return out
	}
	return append(out, Entry{Key: key, Value: value})
}

// Delete removes key and reports whether it was present.
func (e Entries) Delete(key string) (Entries, bool) {
	i := e.Index(key)
	if i < 0 {
		return e, false
	}
	out, _ := e.Remove(i)
	return out, true
}

// Rename changes oldKey to newKey in place. It is a no-op when oldKey is absent
// or newKey is already taken.
func (e Entries) Rename(oldKey, newKey string) Entries {
	i := e.Index(oldKey)
	if i < 0 || e.Has(newKey) {
		return e
	}
	out := e.Clone()
	out[i].Key = newKey
	return out
}

// MarshalJSON writes the pairs as a JSON object, in order.
func (e Entries) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(entry.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping member order. Non-string values are kept
// in their JSON text form.
func (e *Entries) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*e = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("entries: expected object, got %v", tok)
	}

	out := Entries{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("entries: expected string key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			value = string(raw)
		}
		if out.Has(key) {
			return fmt.Errorf("entries: %w: %q", ErrDuplicateKey, key)
		}
		out = append(out, Entry{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*e = out
	return nil
}

// MarshalYAML writes the pairs as an ordered YAML mapping.
func (e Entries) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, entry := range e {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.Value},
		)
	}
	return node, nil
}

// UnmarshalYAML reads a YAML mapping keeping key order.
func (e *Entries) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		*e = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("entries: line %d: expected mapping", value.Line)
	}
	out := make(Entries, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		if out.Has(k.Value) {
			return fmt.Errorf("entries: line %d: %w: %q", k.Line, ErrDuplicateKey, k.Value)
		}
		out = append(out, Entry{Key: k.Value, Value: v.Value})
	}
	*e = out
	return nil
}

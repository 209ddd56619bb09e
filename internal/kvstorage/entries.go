package kvstorage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entries is an ordered mapping from key to a list of values.
// Keys keep their insertion order; replacing the values of an existing key
// does not move it. The zero value is an empty, usable Entries.
type Entries struct {
	order  []string
	values map[string][]string
}

// NewEntries returns an empty Entries.
func NewEntries() *Entries {
	return &Entries{values: make(map[string][]string)}
}

// Len returns the number of keys.
func (e *Entries) Len() int {
	return len(e.order)
}

// Has reports whether key is present.
func (e *Entries) Has(key string) bool {
	_, ok := e.values[key]
	return ok
}

// Get returns a copy of the values for key and whether the key exists.
func (e *Entries) Get(key string) ([]string, bool) {
	vals, ok := e.values[key]
	if !ok {
		return nil, false
	}
	return cloneValues(vals), true
}

// Put stores a copy of values under key. New keys are appended to the order.
func (e *Entries) Put(key string, values []string) {
	if e.values == nil {
		e.values = make(map[string][]string)
	}
	if _, ok := e.values[key]; !ok {
		e.order = append(e.order, key)
	}
	e.values[key] = cloneValues(values)
}

// Remove deletes key and reports whether it was present.
func (e *Entries) Remove(key string) bool {
	if _, ok := e.values[key]; !ok {
		return false
	}
	delete(e.values, key)
	for i, k := range e.order {
		if k == key {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns a copy of the keys in order.
func (e *Entries) Keys() []string {
	keys := make([]string, len(e.order))
	copy(keys, e.order)
	return keys
}

// Clone returns a deep copy.
func (e *Entries) Clone() *Entries {
	c := NewEntries()
	for _, k := range e.order {
		c.Put(k, e.values[k])
	}
	return c
}

// Map returns the entries as an unordered map.
func (e *Entries) Map() map[string][]string {
	m := make(map[string][]string, len(e.order))
	for _, k := range e.order {
		m[k] = cloneValues(e.values[k])
	}
	return m
}

// Overview returns one "<key>: <n> items" line per key, each terminated by
// a newline.
func (e *Entries) Overview() string {
	var b strings.Builder
	for _, k := range e.order {
		fmt.Fprintf(&b, "%s: %d items\n", k, len(e.values[k]))
	}
	return b.String()
}

// Search returns keys containing query and key/value pairs whose value
// contains query. An empty query matches nothing.
func (e *Entries) Search(query string) SearchResult {
	result := SearchResult{Keys: []string{}, Pairs: []Pair{}}
	if query == "" {
		return result
	}
	for _, k := range e.order {
		if strings.Contains(k, query) {
			result.Keys = append(result.Keys, k)
		}
	}
	for _, k := range e.order {
		for _, v := range e.values[k] {
			if strings.Contains(v, query) {
				result.Pairs = append(result.Pairs, Pair{Key: k, Value: v})
			}
		}
	}
	return result
}

// MarshalJSON encodes the entries as a JSON object in key order.
func (e *Entries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range e.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, cloneValues(e.values[k])); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeJSON appends the JSON encoding of v to buf without HTML escaping
// and without the encoder's trailing newline.
func writeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the input.
// A null object decodes as empty, a null list as an empty list, and null
// list elements as empty strings.
func (e *Entries) UnmarshalJSON(data []byte) error {
	*e = Entries{values: make(map[string][]string)}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var vals []string
		if err := dec.Decode(&vals); err != nil {
			return fmt.Errorf("decoding values for %q: %w", key, err)
		}
		e.Put(key, vals)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalYAML encodes the entries as a YAML mapping in key order.
func (e *Entries) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range e.order {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, v := range e.values[k] {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v})
		}
		if len(seq.Content) == 0 {
			seq.Style = yaml.FlowStyle
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			seq,
		)
	}
	return node, nil
}

// String renders the entries for debugging.
func (e *Entries) String() string {
	var parts []string
	for _, k := range e.order {
		parts = append(parts, strconv.Quote(k)+":"+fmt.Sprint(e.values[k]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func cloneValues(vals []string) []string {
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

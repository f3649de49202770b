package index

import "strings"

// SymbolMap is a multimap with case-insensitive keys that remembers the
// order in which keys were first inserted. Inserting an existing key adds
// another value instead of replacing the old one. The zero value is an
// empty map ready to use.
type SymbolMap[V any] struct {
	keys   []string
	values map[string][]V
}

// Element is a single key/value association.
type Element[V any] struct {
	Key   string
	Value V
}

// Entry is a key with all of its values.
type Entry[V any] struct {
	Key    string
	Values []V
}

func foldKey(name string) string {
	return strings.ToLower(name)
}

// Insert associates v with name.
func (m *SymbolMap[V]) Insert(name string, v V) {
	m.InsertMany(name, v)
}

// InsertMany associates all vs with name.
func (m *SymbolMap[V]) InsertMany(name string, vs ...V) {
	k := foldKey(name)
	if m.values == nil {
		m.values = make(map[string][]V)
	}
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = append(m.values[k], vs...)
}

// Get returns the first value associated with name.
func (m *SymbolMap[V]) Get(name string) (V, bool) {
	vs := m.values[foldKey(name)]
	if len(vs) == 0 {
		var zero V
		return zero, false
	}
	return vs[0], true
}

// GetAll returns every value associated with name.
func (m *SymbolMap[V]) GetAll(name string) []V {
	return m.values[foldKey(name)]
}

// ContainsKey reports whether name has at least one value.
func (m *SymbolMap[V]) ContainsKey(name string) bool {
	_, ok := m.values[foldKey(name)]
	return ok
}

// Keys returns the lower-cased keys in insertion order.
func (m *SymbolMap[V]) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Values returns all values grouped by key, keys in insertion order.
func (m *SymbolMap[V]) Values() []V {
	var out []V
	for _, k := range m.keys {
		out = append(out, m.values[k]...)
	}
	return out
}

// Elements returns one pair per value.
func (m *SymbolMap[V]) Elements() []Element[V] {
	var out []Element[V]
	for _, k := range m.keys {
		for _, v := range m.values[k] {
			out = append(out, Element[V]{Key: k, Value: v})
		}
	}
	return out
}

// Entries returns one pair per key.
func (m *SymbolMap[V]) Entries() []Entry[V] {
	out := make([]Entry[V], 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, Entry[V]{Key: k, Values: m.values[k]})
	}
	return out
}

// Extend inserts every association of other.
func (m *SymbolMap[V]) Extend(other *SymbolMap[V]) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		m.InsertMany(k, other.values[k]...)
	}
}

// Len returns the number of distinct keys.
func (m *SymbolMap[V]) Len() int {
	return len(m.keys)
}

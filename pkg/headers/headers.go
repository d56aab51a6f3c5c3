// Package headers implements the ordered, case-insensitive header
// multimap shared by the wire encoder, response parser, cookie jar and
// redirect driver.
package headers

import "strings"

// Value is a single header occurrence: the raw bytes as they will be
// (or were) sent on the wire, plus a sensitivity flag that the
// redirect driver consults when deciding whether to strip it across
// an origin change.
type Value struct {
	Raw       string
	Sensitive bool
}

// entry keeps the original-case name alongside its values so re-emission
// preserves what the caller wrote even though lookups are case-insensitive.
type entry struct {
	name   string
	values []Value
}

// Headers is an ordered multimap from header name to one or more
// values. Lookups are case-insensitive; iteration order follows first
// insertion order of each distinct name, and values within a name
// preserve append order.
type Headers struct {
	order   []string // lowercased names, in first-insertion order
	entries map[string]*entry
}

// New returns an empty header multimap.
func New() *Headers {
	return &Headers{entries: make(map[string]*entry)}
}

func key(name string) string {
	return strings.ToLower(name)
}

// Add appends a value under name, preserving any existing values.
func (h *Headers) Add(name, value string) {
	h.addValue(name, Value{Raw: value})
}

// AddSensitive appends a value flagged sensitive.
func (h *Headers) AddSensitive(name, value string) {
	h.addValue(name, Value{Raw: value, Sensitive: true})
}

func (h *Headers) addValue(name string, v Value) {
	k := key(name)
	e, ok := h.entries[k]
	if !ok {
		e = &entry{name: name}
		h.entries[k] = e
		h.order = append(h.order, k)
	}
	e.values = append(e.values, v)
}

// Set replaces all values for name with a single value, preserving the
// sensitivity of any prior values for that name (an append-only marker
// is never cleared by a plain Set; use Del first to truly reset it).
func (h *Headers) Set(name, value string) {
	k := key(name)
	e, ok := h.entries[k]
	if !ok {
		h.Add(name, value)
		return
	}
	sensitive := false
	for _, v := range e.values {
		if v.Sensitive {
			sensitive = true
			break
		}
	}
	e.name = name
	e.values = []Value{{Raw: value, Sensitive: sensitive}}
}

// Del removes all values for name.
func (h *Headers) Del(name string) {
	k := key(name)
	if _, ok := h.entries[k]; !ok {
		return
	}
	delete(h.entries, k)
	for i, n := range h.order {
		if n == k {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Get returns the first value for name, or "" if absent.
func (h *Headers) Get(name string) string {
	e, ok := h.entries[key(name)]
	if !ok || len(e.values) == 0 {
		return ""
	}
	return e.values[0].Raw
}

// Has reports whether name is present with at least one value.
func (h *Headers) Has(name string) bool {
	e, ok := h.entries[key(name)]
	return ok && len(e.values) > 0
}

// Values returns every value for name in append order.
func (h *Headers) Values(name string) []Value {
	e, ok := h.entries[key(name)]
	if !ok {
		return nil
	}
	out := make([]Value, len(e.values))
	copy(out, e.values)
	return out
}

// All returns every (name, value) pair in insertion order, with the
// original case of the name as first written.
func (h *Headers) All() []struct {
	Name  string
	Value Value
} {
	var out []struct {
		Name  string
		Value Value
	}
	for _, k := range h.order {
		e := h.entries[k]
		for _, v := range e.values {
			out = append(out, struct {
				Name  string
				Value Value
			}{Name: e.name, Value: v})
		}
	}
	return out
}

// Clone returns a deep copy.
func (h *Headers) Clone() *Headers {
	clone := New()
	for _, k := range h.order {
		e := h.entries[k]
		values := make([]Value, len(e.values))
		copy(values, e.values)
		clone.order = append(clone.order, k)
		clone.entries[k] = &entry{name: e.name, values: values}
	}
	return clone
}

// Merge appends every value from other whose name is not already
// present in h, matching the request driver's "merge defaults into
// any not already present" step (§4.I.3).
func (h *Headers) Merge(other *Headers) {
	for _, k := range other.order {
		if _, exists := h.entries[k]; exists {
			continue
		}
		e := other.entries[k]
		values := make([]Value, len(e.values))
		copy(values, e.values)
		h.order = append(h.order, k)
		h.entries[k] = &entry{name: e.name, values: values}
	}
}

// StripSensitive deletes every header named in fixedNames outright, plus
// any header carrying at least one value flagged sensitive (via
// AddSensitive or a RequestBuilder sensitive header call). Used by the
// redirect driver when the destination origin differs from the
// current one.
func (h *Headers) StripSensitive(fixedNames ...string) {
	for _, name := range fixedNames {
		h.Del(name)
	}
	var toDelete []string
	for _, k := range h.order {
		e := h.entries[k]
		for _, v := range e.values {
			if v.Sensitive {
				toDelete = append(toDelete, e.name)
				break
			}
		}
	}
	for _, name := range toDelete {
		h.Del(name)
	}
}

// Len reports the number of distinct header names.
func (h *Headers) Len() int {
	return len(h.order)
}

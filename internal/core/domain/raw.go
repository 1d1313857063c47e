package domain

import (
	"sort"
	"strings"
)

// RawFields maps backend attribute names to their values.
// It is the opaque traceability payload carried by a Record.
// Single-valued attributes hold a one-element slice.
type RawFields map[string][]string

// Add appends a value to the named attribute.
func (f RawFields) Add(name, value string) {
	f[name] = append(f[name], value)
}

// Set replaces the named attribute with a single value.
func (f RawFields) Set(name, value string) {
	f[name] = []string{value}
}

// Values returns the values of the named attribute.
// Lookup is exact first and falls back to a case-insensitive match,
// since directory attribute names are case-insensitive.
func (f RawFields) Values(name string) []string {
	if name == "" {
		return nil
	}
	if v, ok := f[name]; ok {
		return v
	}
	for k, v := range f {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

// First returns the first non-blank value of the named attribute.
func (f RawFields) First(name string) (string, bool) {
	for _, v := range f.Values(name) {
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}

// Has reports whether the named attribute carries a non-blank value.
func (f RawFields) Has(name string) bool {
	_, ok := f.First(name)
	return ok
}

// Names returns the attribute names in sorted order.
func (f RawFields) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy.
func (f RawFields) Clone() RawFields {
	if f == nil {
		return nil
	}
	out := make(RawFields, len(f))
	for k, v := range f {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Merge returns the union of f and other. On a key present in both,
// the values from f are kept. Neither operand is modified.
func (f RawFields) Merge(other RawFields) RawFields {
	if f == nil && other == nil {
		return nil
	}
	out := other.Clone()
	if out == nil {
		out = make(RawFields, len(f))
	}
	for k, v := range f {
		out[k] = append([]string(nil), v...)
	}
	return out
}

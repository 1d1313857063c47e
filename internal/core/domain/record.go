package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Output keys of a Record mapping, in presentation order.
const (
	KeyID       = "id"
	KeyUsername = "username"
	KeyAlias    = "alias"
	KeyEmail    = "email"
	KeyStatus   = "status"
	KeyName     = "name"
)

// OutputKeys lists every key ToMapping may produce, in order.
var OutputKeys = []string{KeyID, KeyUsername, KeyAlias, KeyEmail, KeyStatus, KeyName}

// optional is a field that is either set to a value or unset.
// The zero value is unset.
type optional struct {
	value string
	set   bool
}

func some(v string) optional {
	return optional{value: v, set: true}
}

func fromRaw(raw RawFields, name string) optional {
	if v, ok := raw.First(name); ok {
		return some(v)
	}
	return optional{}
}

func (o optional) or(other optional) optional {
	if o.set {
		return o
	}
	return other
}

func (o optional) get() (string, bool) {
	return o.value, o.set
}

// Record is the canonical identity record of one person.
// A Record is immutable once built: Merge returns a new value.
type Record struct {
	id          optional
	username    optional
	alias       optional
	email       optional
	status      optional
	displayName optional

	raw RawFields
}

// NewRecord builds a Record from a backend's raw attributes.
// Missing attributes leave the corresponding field unset.
func NewRecord(raw RawFields, m FieldMapping) Record {
	raw = raw.Clone()
	r := Record{
		id:          fromRaw(raw, m.ID),
		username:    fromRaw(raw, m.Username),
		alias:       fromRaw(raw, m.Alias),
		email:       fromRaw(raw, m.Email),
		status:      fromRaw(raw, m.Status),
		displayName: fromRaw(raw, m.DisplayName),
		raw:         raw,
	}

	if !r.email.set {
		if pn, ok := raw.First(m.PrincipalName); ok && strings.Contains(pn, "@") {
			r.email = some(pn)
		}
	}

	if r.alias.set {
		local, _, _ := strings.Cut(r.alias.value, "@")
		if local == "" {
			r.alias = optional{}
		} else {
			r.alias = some(local)
		}
	}

	return r
}

// ID returns the numeric directory identifier.
func (r Record) ID() (string, bool) { return r.id.get() }

// Username returns the short unique handle.
func (r Record) Username() (string, bool) { return r.username.get() }

// Alias returns the secondary handle.
func (r Record) Alias() (string, bool) { return r.alias.get() }

// Email returns the email address.
func (r Record) Email() (string, bool) { return r.email.get() }

// Status returns the affiliation tag.
func (r Record) Status() (string, bool) { return r.status.get() }

// DisplayName returns the person's display name.
func (r Record) DisplayName() (string, bool) { return r.displayName.get() }

// Raw returns a copy of the raw backend attributes behind the record.
func (r Record) Raw() RawFields { return r.raw.Clone() }

// HasAlias reports whether the alias carries information beyond the username.
func (r Record) HasAlias() bool {
	return r.alias.set && !(r.username.set && r.alias.value == r.username.value)
}

// IsComplete reports whether id, username and email are all set.
func (r Record) IsComplete() bool {
	return r.id.set && r.username.set && r.email.set
}

// IsEmpty reports whether no typed field is set.
func (r Record) IsEmpty() bool {
	return !(r.id.set || r.username.set || r.alias.set || r.email.set || r.status.set || r.displayName.set)
}

// Merge combines r with other. Every field set on r is kept; unset fields
// are taken from other. Raw attributes are unioned with r winning on
// conflicting names. Neither operand is modified.
func (r Record) Merge(other Record) Record {
	return Record{
		id:          r.id.or(other.id),
		username:    r.username.or(other.username),
		alias:       r.alias.or(other.alias),
		email:       r.email.or(other.email),
		status:      r.status.or(other.status),
		displayName: r.displayName.or(other.displayName),
		raw:         r.raw.Merge(other.raw),
	}
}

// ToMapping returns the set fields as an ordered mapping.
// The alias is left out when it equals the username.
func (r Record) ToMapping() Mapping {
	m := make(Mapping, 0, len(OutputKeys))
	add := func(key string, o optional) {
		if o.set {
			m = append(m, Entry{Key: key, Value: o.value})
		}
	}
	add(KeyID, r.id)
	add(KeyUsername, r.username)
	if r.HasAlias() {
		add(KeyAlias, r.alias)
	}
	add(KeyEmail, r.email)
	add(KeyStatus, r.status)
	add(KeyName, r.displayName)
	return m
}

// MarshalJSON encodes the record as its ordered mapping.
func (r Record) MarshalJSON() ([]byte, error) {
	return r.ToMapping().MarshalJSON()
}

// Entry is one key/value pair of a Mapping.
type Entry struct {
	Key   string
	Value string
}

// Mapping is an ordered list of record fields.
type Mapping []Entry

// Get returns the value stored under key.
func (m Mapping) Get(key string) (string, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Keys returns the keys in order.
func (m Mapping) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// Select returns the entries whose key is in keys, in the mapping's order.
func (m Mapping) Select(keys []string) Mapping {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	out := make(Mapping, 0, len(m))
	for _, e := range m {
		if want[e.Key] {
			out = append(out, e)
		}
	}
	return out
}

// MarshalJSON encodes the mapping as a JSON object, preserving key order.
func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
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

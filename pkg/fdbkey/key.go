package fdbkey

import (
	"fmt"
	"strings"
)

// Key is an insertion-ordered keyword→value map. Each keyword name appears
// at most once; the name list and the value map always have identical
// membership.
type Key struct {
	names  []string
	values map[string]string
}

// New returns an empty Key.
func New() *Key {
	return &Key{values: make(map[string]string)}
}

// FromPairs builds a Key from keyword/value pairs in the given order, e.g.
// FromPairs("class", "od", "stream", "oper").
func FromPairs(pairs ...string) *Key {
	k := New()
	for i := 0; i+1 < len(pairs); i += 2 {
		k.Push(pairs[i], pairs[i+1])
	}
	return k
}

// Set assigns a value to a keyword. If the keyword is new it is appended to
// the name list; if it already exists its value is replaced in place,
// preserving its original position (the duplicate-name insertion rule).
func (k *Key) Set(keyword, value string) {
	if _, ok := k.values[keyword]; !ok {
		k.names = append(k.names, keyword)
	}
	k.values[keyword] = value
}

// Push is an alias of Set kept for symmetry with Pop — it appends a new
// keyword or overwrites an existing one's value without moving it.
func (k *Key) Push(keyword, value string) {
	k.Set(keyword, value)
}

// Pop removes a keyword. Per the LIFO discipline, keyword must be the most
// recently pushed name still present; popping out of order is a
// programming error and panics, mirroring the source's ASSERT.
func (k *Key) Pop(keyword string) {
	if len(k.names) == 0 || k.names[len(k.names)-1] != keyword {
		panic(fmt.Sprintf("fdbkey: pop(%q) violates LIFO discipline", keyword))
	}
	k.names = k.names[:len(k.names)-1]
	delete(k.values, keyword)
}

// Get returns the value for a keyword and whether it is present.
func (k *Key) Get(keyword string) (string, bool) {
	v, ok := k.values[keyword]
	return v, ok
}

// MustGet returns the value for a keyword, panicking if absent — mirrors
// the source's Key::get() which asserts presence.
func (k *Key) MustGet(keyword string) string {
	v, ok := k.values[keyword]
	if !ok {
		panic(fmt.Sprintf("fdbkey: keyword %q not present", keyword))
	}
	return v
}

// Names returns the keyword names in insertion order. The returned slice
// must not be mutated by callers.
func (k *Key) Names() []string {
	return k.names
}

// Len returns the number of keywords currently set.
func (k *Key) Len() int {
	return len(k.names)
}

// Clear removes every keyword.
func (k *Key) Clear() {
	k.names = nil
	k.values = make(map[string]string)
}

// Clone returns an independent copy of the key.
func (k *Key) Clone() *Key {
	c := &Key{
		names:  append([]string(nil), k.names...),
		values: make(map[string]string, len(k.values)),
	}
	for n, v := range k.values {
		c.values[n] = v
	}
	return c
}

// Subkey projects the key onto a subset of keyword names, in the order
// given by pattern. Names absent from the key are skipped.
func (k *Key) Subkey(pattern []string) *Key {
	r := New()
	for _, name := range pattern {
		if v, ok := k.values[name]; ok {
			r.Set(name, v)
		}
	}
	return r
}

// Match reports whether every keyword in partial is present in k with an
// identical value. An empty partial always matches.
func (k *Key) Match(partial *Key) bool {
	for _, name := range partial.names {
		v, ok := k.values[name]
		if !ok || v != partial.values[name] {
			return false
		}
	}
	return true
}

// Equal reports ordered-pairwise equality: both keys must declare the same
// names in the same order with the same values.
func (k *Key) Equal(other *Key) bool {
	if len(k.names) != len(other.names) {
		return false
	}
	for i, name := range k.names {
		if other.names[i] != name {
			return false
		}
		if k.values[name] != other.values[name] {
			return false
		}
	}
	return true
}

// String renders the key as "k1=v1,k2=v2,...", the persisted/CLI form.
func (k *Key) String() string {
	var b strings.Builder
	for i, name := range k.names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(k.values[name])
	}
	return b.String()
}

// ValuesToString renders the colon-joined value form ("v1:v2:...") used as
// a B-tree key and in persisted fingerprints. Empty values are included as
// empty segments so the join remains positional.
func (k *Key) ValuesToString() string {
	parts := make([]string, len(k.names))
	for i, name := range k.names {
		parts[i] = k.values[name]
	}
	return strings.Join(parts, ":")
}

// Parse parses the "k1=v1,k2=v2" form produced by String back into a Key.
// Values may themselves contain '/' (multi-value request syntax is the
// caller's concern, not Key's); Parse keeps only the first value of any
// "v1/v2" group for a bare Key, since Key represents one concrete field.
func Parse(s string) (*Key, error) {
	k := New()
	if s == "" {
		return k, nil
	}
	for _, field := range strings.Split(s, ",") {
		eq := strings.IndexByte(field, '=')
		if eq < 0 {
			return nil, fmt.Errorf("fdbkey: invalid field %q (missing '=')", field)
		}
		name := field[:eq]
		value := field[eq+1:]
		if slash := strings.IndexByte(value, '/'); slash >= 0 {
			value = value[:slash]
		}
		k.Set(name, value)
	}
	return k, nil
}

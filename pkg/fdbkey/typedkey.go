package fdbkey

import "github.com/ecmwf/fdb-go/pkg/fdbtype"

// TypedKey is a Key bound to an fdbtype.Registry so that values set or pushed
// during schema expansion are canonicalised against the keyword's Type.
type TypedKey struct {
	*Key
	registry *fdbtype.Registry
}

// NewTypedKey returns an empty TypedKey bound to registry.
func NewTypedKey(registry *fdbtype.Registry) *TypedKey {
	return &TypedKey{Key: New(), registry: registry}
}

// Registry returns the bound type registry.
func (tk *TypedKey) Registry() *fdbtype.Registry {
	return tk.registry
}

// Set canonicalises raw through the keyword's Type permissively: if
// canonicalisation fails the raw value is kept as-is rather than rejecting
// the assignment outright.
func (tk *TypedKey) Set(keyword, raw string) {
	t := tk.registry.Lookup(keyword)
	if c, err := t.Canonicalise(raw); err == nil {
		tk.Key.Set(keyword, c)
	} else {
		tk.Key.Set(keyword, raw)
	}
}

// Push canonicalises raw strictly: an invalid value is rejected instead of
// stored.
func (tk *TypedKey) Push(keyword, raw string) error {
	t := tk.registry.Lookup(keyword)
	c, err := t.Canonicalise(raw)
	if err != nil {
		return err
	}
	tk.Key.Push(keyword, c)
	return nil
}

// Canonical returns a new TypedKey with every value re-canonicalised
// through its Type. Canonicalisation is idempotent, so
// tk.Canonical().Canonical() always equals tk.Canonical().
func (tk *TypedKey) Canonical() (*TypedKey, error) {
	out := NewTypedKey(tk.registry)
	for _, name := range tk.Names() {
		v, _ := tk.Get(name)
		c, err := tk.registry.Lookup(name).Canonicalise(v)
		if err != nil {
			return nil, err
		}
		out.Key.Set(name, c)
	}
	return out, nil
}

// ToKey projects the TypedKey to a plain Key, applying each keyword's
// Type.ToKey to its canonical value.
func (tk *TypedKey) ToKey() *Key {
	out := New()
	for _, name := range tk.Names() {
		v, _ := tk.Get(name)
		out.Set(name, tk.registry.Lookup(name).ToKey(v))
	}
	return out
}

// Match reports whether every keyword in partial matches k using the
// keyword's Type.Match rather than plain string equality — this is what
// lets a Step "60m" match an archived "1", or a bare Param match a tabled
// one with the same identity.
func (tk *TypedKey) Match(partial *Key) bool {
	for _, name := range partial.names {
		v, ok := tk.Get(name)
		if !ok {
			return false
		}
		if !tk.registry.Lookup(name).Match(v, partial.values[name]) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy sharing the same registry.
func (tk *TypedKey) Clone() *TypedKey {
	return &TypedKey{Key: tk.Key.Clone(), registry: tk.registry}
}

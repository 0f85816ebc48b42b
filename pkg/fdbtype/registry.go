package fdbtype

import (
	"fmt"
	"sync"
)

// Axis gives a Type read access to the set of canonical values already
// observed for its keyword in the database currently being expanded
// against. Implemented by pkg/index's per-keyword axis.
type Axis interface {
	// Has reports whether canonical has already been observed.
	Has(canonical string) bool
	// Values returns every canonical value observed, in no particular order.
	Values() []string
}

// Type is the capability set every keyword value type implements.
type Type interface {
	// Name returns the type's registered name, e.g. "Date", "Step".
	Name() string

	// Canonicalise converts a raw (user- or disk-supplied) value into its
	// canonical form. Called permissively from TypedKey.Set and strictly
	// (validated at match time) from TypedKey.Push.
	Canonicalise(raw string) (string, error)

	// ToKey projects a canonical value to its on-disk form. For every
	// built-in type except Ignore (which projects to the empty string) this
	// is the identity.
	ToKey(canonical string) string

	// Match reports whether two canonical values refer to the same field.
	Match(a, b string) bool

	// ExpandRequest returns the candidate canonical values a request's raw
	// value list expands to for this keyword. axis is nil unless the type
	// needs database-specific context (Step, Param).
	ExpandRequest(raw []string, axis Axis) ([]string, error)
}

// Builder constructs a Type instance from its registered name and an
// optional parameter string taken from the schema grammar (e.g. "3" for
// First3, written in the grammar as "keyword:First[3]" — see pkg/schema).
type Builder func(name string, param string) (Type, error)

var (
	registryMu sync.Mutex
	builders   = map[string]Builder{}
)

// Register adds a factory for a named type. Called from this package's
// init() for the built-in types, or by callers that need to add their own
// — the runtime contract (name → builder) is identical either way.
func Register(name string, b Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	builders[name] = b
}

func build(name, param string) (Type, error) {
	registryMu.Lock()
	b, ok := builders[name]
	registryMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("fdbtype: unknown type %q", name)
	}
	return b(name, param)
}

func init() {
	Register("Default", func(name, _ string) (Type, error) { return defaultType{}, nil })
	Register("Integer", func(name, _ string) (Type, error) { return integerType{}, nil })
	Register("Double", func(name, _ string) (Type, error) { return doubleType{}, nil })
	Register("Date", func(name, _ string) (Type, error) { return dateType{}, nil })
	Register("Time", func(name, _ string) (Type, error) { return timeType{}, nil })
	Register("Year", func(name, _ string) (Type, error) { return yearType{}, nil })
	Register("Month", func(name, _ string) (Type, error) { return monthType{}, nil })
	Register("MonthOfDate", func(name, _ string) (Type, error) { return monthOfDateType{}, nil })
	Register("Step", func(name, _ string) (Type, error) { return stepType{}, nil })
	Register("Param", func(name, _ string) (Type, error) { return paramType{}, nil })
	Register("Grid", func(name, _ string) (Type, error) { return gridType{}, nil })
	Register("Expver", func(name, _ string) (Type, error) { return expverType{}, nil })
	Register("Lowercase", func(name, _ string) (Type, error) { return lowercaseType{}, nil })
	Register("ClimateDaily", func(name, _ string) (Type, error) { return climateDailyType{}, nil })
	Register("ClimateMonthly", func(name, _ string) (Type, error) { return climateMonthlyType{}, nil })
	Register("Ignore", func(name, _ string) (Type, error) { return ignoreType{}, nil })
	Register("First", newFirstN)
}

// Registry resolves keyword names to Types. Registries chain to a parent,
// with the schema's root registry as the ultimate ancestor; lookups that
// miss every level fall back to Default. A Schema's registries are shared
// by every Archiver/Retriever call reading it, so lookups (which cache into
// byName on first resolution) and declarations are mutex-guarded.
type Registry struct {
	mu     sync.RWMutex
	parent *Registry
	byName map[string]Type
}

// NewRegistry returns a registry chained to parent (nil for the root).
func NewRegistry(parent *Registry) *Registry {
	return &Registry{parent: parent, byName: make(map[string]Type)}
}

// Declare builds and associates a type with a keyword in this registry
// (not the parent), per the schema grammar's "declare keyword as
// TypeName[param];" and inline "keyword:TypeName[param]" forms.
func (r *Registry) Declare(keyword, typeName, param string) error {
	t, err := build(typeName, param)
	if err != nil {
		return fmt.Errorf("fdbtype: declaring %q: %w", keyword, err)
	}
	r.mu.Lock()
	r.byName[keyword] = t
	r.mu.Unlock()
	return nil
}

// Lookup resolves keyword to a Type, walking the parent chain and falling
// back to Default. The result is cached on first resolution.
func (r *Registry) Lookup(keyword string) Type {
	r.mu.RLock()
	t, ok := r.byName[keyword]
	r.mu.RUnlock()
	if ok {
		return t
	}

	for p := r.parent; p != nil; p = p.parent {
		p.mu.RLock()
		t, ok := p.byName[keyword]
		p.mu.RUnlock()
		if ok {
			r.mu.Lock()
			r.byName[keyword] = t
			r.mu.Unlock()
			return t
		}
	}

	d := defaultType{}
	r.mu.Lock()
	r.byName[keyword] = d
	r.mu.Unlock()
	return d
}

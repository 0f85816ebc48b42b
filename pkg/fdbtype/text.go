package fdbtype

import (
	"fmt"
	"strconv"
	"strings"
)

// defaultType canonicalises by trimming surrounding whitespace only.
type defaultType struct{}

func (defaultType) Name() string { return "Default" }

func (defaultType) Canonicalise(raw string) (string, error) {
	return strings.TrimSpace(raw), nil
}

func (defaultType) ToKey(canonical string) string { return canonical }

func (defaultType) Match(a, b string) bool { return a == b }

func (t defaultType) ExpandRequest(raw []string, _ Axis) ([]string, error) {
	return canonicaliseAll(t, raw)
}

// lowercaseType lowercases the value.
type lowercaseType struct{}

func (lowercaseType) Name() string { return "Lowercase" }

func (lowercaseType) Canonicalise(raw string) (string, error) {
	return strings.ToLower(strings.TrimSpace(raw)), nil
}

func (lowercaseType) ToKey(canonical string) string { return canonical }

func (lowercaseType) Match(a, b string) bool { return a == b }

func (t lowercaseType) ExpandRequest(raw []string, _ Axis) ([]string, error) {
	return canonicaliseAll(t, raw)
}

// ignoreType canonicalises everything to the empty string and never
// participates in matching.
type ignoreType struct{}

func (ignoreType) Name() string { return "Ignore" }

func (ignoreType) Canonicalise(string) (string, error) { return "", nil }

func (ignoreType) ToKey(string) string { return "" }

func (ignoreType) Match(string, string) bool { return true }

func (ignoreType) ExpandRequest([]string, Axis) ([]string, error) {
	return []string{""}, nil
}

// firstNType truncates a value to its first N characters ("abbreviation"
// types). First3 is the common instance, registered under "First" with
// param "3".
type firstNType struct {
	n int
}

func newFirstN(name, param string) (Type, error) {
	n := 3
	if param != "" {
		v, err := strconv.Atoi(param)
		if err != nil {
			return nil, fmt.Errorf("fdbtype: First type needs an integer length, got %q: %w", param, err)
		}
		n = v
	}
	if n <= 0 {
		return nil, fmt.Errorf("fdbtype: First type length must be positive, got %d", n)
	}
	return firstNType{n: n}, nil
}

func (t firstNType) Name() string { return fmt.Sprintf("First%d", t.n) }

func (t firstNType) Canonicalise(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) <= t.n {
		return raw, nil
	}
	return raw[:t.n], nil
}

func (firstNType) ToKey(canonical string) string { return canonical }

func (firstNType) Match(a, b string) bool { return a == b }

func (t firstNType) ExpandRequest(raw []string, _ Axis) ([]string, error) {
	return canonicaliseAll(t, raw)
}

func canonicaliseAll(t Type, raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		c, err := t.Canonicalise(v)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

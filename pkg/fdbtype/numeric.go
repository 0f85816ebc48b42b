package fdbtype

import (
	"fmt"
	"strconv"
)

// integerType canonicalises to Go's default decimal rendering, collapsing
// forms like "007" and "7" to the same canonical "7".
type integerType struct{}

func (integerType) Name() string { return "Integer" }

func (integerType) Canonicalise(raw string) (string, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", fmt.Errorf("fdbtype: Integer: %q is not an integer: %w", raw, err)
	}
	return strconv.FormatInt(v, 10), nil
}

func (integerType) ToKey(canonical string) string { return canonical }

func (integerType) Match(a, b string) bool { return a == b }

func (t integerType) ExpandRequest(raw []string, _ Axis) ([]string, error) {
	return canonicaliseAll(t, raw)
}

// doubleType canonicalises to Go's shortest round-tripping float format.
type doubleType struct{}

func (doubleType) Name() string { return "Double" }

func (doubleType) Canonicalise(raw string) (string, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", fmt.Errorf("fdbtype: Double: %q is not a number: %w", raw, err)
	}
	return strconv.FormatFloat(v, 'g', -1, 64), nil
}

func (doubleType) ToKey(canonical string) string { return canonical }

func (doubleType) Match(a, b string) bool { return a == b }

func (t doubleType) ExpandRequest(raw []string, _ Axis) ([]string, error) {
	return canonicaliseAll(t, raw)
}

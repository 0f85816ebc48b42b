package schema

import "github.com/ecmwf/fdb-go/pkg/fdbtype"

// MatcherKind is the flattened tag for the seven predicate matchers: Always,
// Any, Value, None, ExcludeAll, Optional, and Hidden. Kept as a closed sum
// rather than an interface hierarchy — the same flattening applied to Type
// applies just as well to matchers.
type MatcherKind int

const (
	MatchAlways MatcherKind = iota
	MatchAny
	MatchValue
	MatchNone
	MatchExcludeAll
	MatchOptional
	MatchHidden
)

func (k MatcherKind) String() string {
	switch k {
	case MatchAlways:
		return "Always"
	case MatchAny:
		return "Any"
	case MatchValue:
		return "Value"
	case MatchNone:
		return "None"
	case MatchExcludeAll:
		return "ExcludeAll"
	case MatchOptional:
		return "Optional"
	case MatchHidden:
		return "Hidden"
	default:
		return "Unknown"
	}
}

// Matcher is a predicate's value filter. Any/Value/None/ExcludeAll carry a
// fixed set of declared values; Optional/Hidden carry a default used when
// the keyword is absent from the request or field key.
type Matcher struct {
	Kind    MatcherKind
	Values  []string
	Default []string
}

// Always matches every value unconditionally.
func Always() Matcher { return Matcher{Kind: MatchAlways} }

// Any matches when the candidate equals one of values.
func Any(values ...string) Matcher { return Matcher{Kind: MatchAny, Values: values} }

// Value matches only the single given value.
func Value(v string) Matcher { return Matcher{Kind: MatchValue, Values: []string{v}} }

// None matches when the candidate equals none of values (an exclusion set).
func None(values ...string) Matcher { return Matcher{Kind: MatchNone, Values: values} }

// ExcludeAll behaves like None; kept as a distinct constructor because the
// grammar distinguishes "k!=v1/v2" (None) from the stricter "exclude
// everything in this set, even across sub-requests" ExcludeAll form.
func ExcludeAll(values ...string) Matcher { return Matcher{Kind: MatchExcludeAll, Values: values} }

// Optional matches any value but supplies a default when the keyword is
// absent.
func Optional(def string) Matcher { return Matcher{Kind: MatchOptional, Default: []string{def}} }

// Hidden behaves like Optional but its values never contribute to the
// database/index path.
func Hidden(defaults ...string) Matcher { return Matcher{Kind: MatchHidden, Default: defaults} }

// HasDefault reports whether the keyword may be absent and still match,
// taking its default value.
func (m Matcher) HasDefault() bool {
	return m.Kind == MatchOptional || m.Kind == MatchHidden
}

// IsHidden reports whether matched values of this predicate are excluded
// from the projected database/index/datum path.
func (m Matcher) IsHidden() bool { return m.Kind == MatchHidden }

// Matches reports whether a single canonical value satisfies the matcher,
// using typ.Match so type-aware equality (Step, Param) is honoured.
func (m Matcher) Matches(value string, typ fdbtype.Type) bool {
	switch m.Kind {
	case MatchAlways, MatchOptional, MatchHidden:
		return true
	case MatchValue, MatchAny:
		for _, c := range m.Values {
			if typ.Match(value, c) {
				return true
			}
		}
		return false
	case MatchNone, MatchExcludeAll:
		for _, c := range m.Values {
			if typ.Match(value, c) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Filter narrows a candidate list down to those the matcher allows.
func (m Matcher) Filter(candidates []string, typ fdbtype.Type) []string {
	if m.Kind == MatchAlways || m.Kind == MatchOptional || m.Kind == MatchHidden {
		return candidates
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if m.Matches(c, typ) {
			out = append(out, c)
		}
	}
	return out
}

// StaticCandidates returns the matcher's own declared value set: the fixed
// values for Any/Value, or the default(s) for Optional/Hidden. None and
// ExcludeAll have no positive candidate set (they only exclude) and Always
// has none either, since it imposes no constraint of its own.
func (m Matcher) StaticCandidates() []string {
	switch m.Kind {
	case MatchAny, MatchValue:
		return m.Values
	case MatchOptional, MatchHidden:
		return m.Default
	default:
		return nil
	}
}

// Predicate pairs a keyword with its matcher.
type Predicate struct {
	Keyword string
	Matcher Matcher
}

package schema

import (
	"github.com/ecmwf/fdb-go/pkg/fdbkey"
	"github.com/ecmwf/fdb-go/pkg/fdbtype"
)

// Level identifies which of the three tree tiers a Rule occupies.
type Level int

const (
	LevelDatabase Level = iota
	LevelIndex
	LevelDatum
)

func (l Level) String() string {
	switch l {
	case LevelDatabase:
		return "database"
	case LevelIndex:
		return "index"
	case LevelDatum:
		return "datum"
	default:
		return "unknown"
	}
}

// Rule is one node of the 3-level schema tree. A RuleDatabase has
// RuleIndex children, a RuleIndex has RuleDatum children, and a RuleDatum
// is a leaf. Registry overlays keyword type declarations local to this
// rule's subtree, falling back to its parent's registry.
type Rule struct {
	Level      Level
	Predicates []Predicate
	Children   []*Rule
	Registry   *fdbtype.Registry
}

// NewRule builds a rule node at the given level with the given predicates
// and registry. Children are attached separately via AddChild so database
// files can be parsed top-down.
func NewRule(level Level, registry *fdbtype.Registry, predicates ...Predicate) *Rule {
	return &Rule{Level: level, Predicates: predicates, Registry: registry}
}

// AddChild appends a child rule. Panics if called on a datum-level rule,
// which cannot have children.
func (r *Rule) AddChild(child *Rule) {
	if r.Level == LevelDatum {
		panic("schema: cannot attach a child to a datum rule")
	}
	r.Children = append(r.Children, child)
}

// Keywords returns the predicate keywords declared directly on this rule,
// in declaration order.
func (r *Rule) Keywords() []string {
	out := make([]string, len(r.Predicates))
	for i, p := range r.Predicates {
		out[i] = p.Keyword
	}
	return out
}

// matchWrite checks every predicate against tk, pushing default values for
// absent Optional/Hidden keywords as it goes. It reports whether the rule
// matched and the list of keywords it pushed, which the caller must pop
// once finished with this rule regardless of the match outcome.
func (r *Rule) matchWrite(tk *fdbkey.TypedKey) (ok bool, pushed []string) {
	for _, p := range r.Predicates {
		v, present := tk.Get(p.Keyword)
		if !present {
			if !p.Matcher.HasDefault() {
				return false, pushed
			}
			defaults := p.Matcher.StaticCandidates()
			if len(defaults) == 0 {
				return false, pushed
			}
			if err := tk.Push(p.Keyword, defaults[0]); err != nil {
				return false, pushed
			}
			pushed = append(pushed, p.Keyword)
			v = defaults[0]
		}
		typ := r.Registry.Lookup(p.Keyword)
		if !p.Matcher.Matches(v, typ) {
			return false, pushed
		}
	}
	return true, pushed
}

// unwind pops, in reverse order, the keywords matchWrite pushed.
func unwind(tk *fdbkey.TypedKey, pushed []string) {
	for i := len(pushed) - 1; i >= 0; i-- {
		tk.Pop(pushed[i])
	}
}

// projectKey builds the Key contributed by this rule alone: its
// predicate keywords (skipping Hidden ones) mapped through each keyword's
// Type.ToKey.
func (r *Rule) projectKey(tk *fdbkey.TypedKey) *fdbkey.Key {
	out := fdbkey.New()
	for _, p := range r.Predicates {
		if p.Matcher.IsHidden() {
			continue
		}
		v, ok := tk.Get(p.Keyword)
		if !ok {
			continue
		}
		typ := r.Registry.Lookup(p.Keyword)
		out.Set(p.Keyword, typ.ToKey(v))
	}
	return out
}

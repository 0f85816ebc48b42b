package schema

import (
	"fmt"
	"os"

	"github.com/ecmwf/fdb-go/pkg/fdbkey"
	"github.com/ecmwf/fdb-go/pkg/fdbtype"
	"github.com/ecmwf/fdb-go/pkg/ferrors"
	"github.com/ecmwf/fdb-go/pkg/visitor"
)

// Schema is the parsed, in-memory rule tree for one schema file: an
// ordered list of RuleDatabase rules, each carrying its RuleIndex and
// RuleDatum descendants, rooted in a shared type Registry.
type Schema struct {
	Path      string
	Databases []*Rule
	Root      *fdbtype.Registry
}

// Load reads and parses a schema file from disk.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ferrors.IOError{Op: "read", Path: path, Err: err}
	}
	s, err := Parse(string(data))
	if err != nil {
		return nil, err
	}
	s.Path = path
	return s, nil
}

// AxisSource supplies the set of archived values for a keyword within the
// database currently being expanded, so Step/Param expansion can prefer
// forms already present on disk. It returns nil when no axis information
// is available (e.g. before any database has been selected).
type AxisSource func(keyword string) fdbtype.Axis

// ExpandWrite walks the rule tree against a fully specified field key,
// invoking wv at each matching level. With matchFirst, the walk stops at
// the first datum rule that matches; otherwise every rule is tried and a
// second match is a fatal SchemaError rather than a silent overwrite.
func (s *Schema) ExpandWrite(tk *fdbkey.TypedKey, wv visitor.WriteVisitor, matchFirst bool) error {
	matches := 0
	var walkErr error

	var walk func(rule *Rule) (stop bool)
	walk = func(rule *Rule) bool {
		ok, pushed := rule.matchWrite(tk)
		defer unwind(tk, pushed)
		if !ok {
			return false
		}

		levelKey := rule.projectKey(tk)
		var descend bool
		var err error
		switch rule.Level {
		case LevelDatabase:
			descend, err = wv.SelectDatabase(levelKey, tk.Key)
		case LevelIndex:
			descend, err = wv.SelectIndex(levelKey, tk.Key)
		case LevelDatum:
			descend, err = wv.SelectDatum(levelKey, tk.Key)
			if err == nil {
				matches++
				if matchFirst {
					return true
				}
				if matches > 1 {
					walkErr = &ferrors.SchemaError{Reason: "more than one rule matched this field", Key: tk.String()}
					return true
				}
			}
		}
		if err != nil {
			walkErr = err
			return true
		}
		if !descend || rule.Level == LevelDatum {
			return false
		}
		for _, child := range rule.Children {
			if walk(child) {
				return true
			}
		}
		return false
	}

	for _, dbRule := range s.Databases {
		if walk(dbRule) {
			break
		}
	}
	if walkErr != nil {
		return walkErr
	}
	if matches == 0 {
		return &ferrors.SchemaError{Reason: "no matching rule for key", Key: tk.String()}
	}
	return nil
}

// ExpandRead walks the rule tree against a retrieval Request, expanding
// every predicate to its candidate set (via the keyword's Type and, for
// Step/Param, axisFor) and visiting the Cartesian product of candidates at
// each level. Unlike ExpandWrite, any number of datum leaves may match: a
// request legitimately fans out to many fields.
func (s *Schema) ExpandRead(req *Request, rv visitor.ReadVisitor, axisFor AxisSource) error {
	tk := fdbkey.NewTypedKey(s.Root)

	var walk func(rule *Rule) error
	walk = func(rule *Rule) error {
		candidates := make([][]string, len(rule.Predicates))
		for i, p := range rule.Predicates {
			typ := rule.Registry.Lookup(p.Keyword)

			var raw []string
			if vals, ok := req.Values[p.Keyword]; ok {
				raw = vals
			} else if declared := p.Matcher.StaticCandidates(); len(declared) > 0 {
				raw = declared
			}

			var axis fdbtype.Axis
			if axisFor != nil {
				axis = axisFor(p.Keyword)
			}
			expanded, err := typ.ExpandRequest(raw, axis)
			if err != nil {
				return fmt.Errorf("expanding %q: %w", p.Keyword, err)
			}
			filtered := p.Matcher.Filter(expanded, typ)
			if len(filtered) == 0 {
				return nil
			}
			candidates[i] = filtered
		}

		return cartesian(candidates, func(combo []string) error {
			pushed := make([]string, 0, len(rule.Predicates))
			defer func() { unwind(tk, pushed) }()
			for i, p := range rule.Predicates {
				if err := tk.Push(p.Keyword, combo[i]); err != nil {
					return err
				}
				pushed = append(pushed, p.Keyword)
			}

			levelKey := rule.projectKey(tk)
			var descend bool
			var err error
			switch rule.Level {
			case LevelDatabase:
				descend, err = rv.SelectDatabase(levelKey, tk.Key)
			case LevelIndex:
				descend, err = rv.SelectIndex(levelKey, tk.Key)
			case LevelDatum:
				descend, err = rv.SelectDatum(levelKey, tk.Key)
			}
			if err != nil || !descend || rule.Level == LevelDatum {
				return err
			}
			for _, child := range rule.Children {
				if err := walk(child); err != nil {
					return err
				}
			}
			return nil
		})
	}

	for _, dbRule := range s.Databases {
		if err := walk(dbRule); err != nil {
			return err
		}
	}
	return nil
}

// cartesian invokes visit once per combination of sets, in lexicographic
// order over the slice of slices. An empty sets list invokes visit once
// with an empty combination, so a rule with zero predicates still fires.
func cartesian(sets [][]string, visit func([]string) error) error {
	combo := make([]string, len(sets))
	var recurse func(i int) error
	recurse = func(i int) error {
		if i == len(sets) {
			return visit(combo)
		}
		for _, v := range sets[i] {
			combo[i] = v
			if err := recurse(i + 1); err != nil {
				return err
			}
		}
		return nil
	}
	return recurse(0)
}

package schema

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ecmwf/fdb-go/pkg/fdbtype"
)

// The schema grammar is a flattened version of FDB5's: a handful of
// "declare k as Type[param];" lines assigning a Type to a keyword, followed
// by one or more bracketed rule trees.
//
//	declare step as Step;
//	declare param as Param;
//
//	[ class=od, expver, stream=oper/dcda, date, time
//	    [ type, levtype
//	        [ step, param ]
//	    ]
//	]
//
// A bare keyword (no modifier) is Always. "=v" or "=v1/v2" is Value/Any.
// "!=v1/v2" is None, "!!v1/v2" is ExcludeAll, "?def" is Optional with
// default def, "~def" is Hidden with default def.
// A predicate keyword may carry an inline "keyword:TypeName" or
// "keyword:TypeName[param]" type declaration, scoping that type to the
// rule's own subtree instead of the schema-wide "declare" list — the
// grammar's per-rule TypesRegistry overlay (spec §3 Rule: "its own
// TypesRegistry overlay").
var schemaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\n\r]+`},
	{Name: "NotEqual", Pattern: `!=`},
	{Name: "ExcludeAll", Pattern: `!!`},
	{Name: "Ident", Pattern: `[A-Za-z0-9_][A-Za-z0-9_.]*`},
	{Name: "Punct", Pattern: `[\[\]=,/?~:;]`},
})

// Modifier is the optional operator+value-list suffix of a predicate.
type Modifier struct {
	Op     string   `parser:"@(\"=\" | \"!=\" | \"!!\" | \"?\" | \"~\")"`
	Values []string `parser:"(@Ident (\"/\" @Ident)*)?"`
}

func (m *Modifier) matcher() Matcher {
	if m == nil {
		return Always()
	}
	switch m.Op {
	case "=":
		if len(m.Values) == 1 {
			return Value(m.Values[0])
		}
		return Any(m.Values...)
	case "!=":
		return None(m.Values...)
	case "!!":
		return ExcludeAll(m.Values...)
	case "?":
		if len(m.Values) == 0 {
			return Optional("")
		}
		return Optional(m.Values[0])
	case "~":
		return Hidden(m.Values...)
	default:
		return Always()
	}
}

// TypeSpec is a predicate's optional inline "TypeName" or
// "TypeName[param]" type declaration, e.g. "abbrev:First[3]".
type TypeSpec struct {
	Name  string `parser:"@Ident"`
	Param string `parser:"(\"[\" @Ident \"]\")?"`
}

// PredicateNode is one comma-separated clause inside a rule's brackets.
type PredicateNode struct {
	Keyword  string    `parser:"@Ident"`
	Type     *TypeSpec `parser:"(\":\" @@)?"`
	Modifier *Modifier `parser:"@@?"`
}

// RuleNode is one bracketed rule, its predicates and its nested children.
type RuleNode struct {
	Predicates []*PredicateNode `parser:"\"[\" @@ (\",\" @@)*"`
	Children   []*RuleNode      `parser:"@@* \"]\""`
}

// DeclarationNode assigns a Type (with an optional bracketed parameter) to
// a keyword, scoped to the whole schema file.
type DeclarationNode struct {
	Keyword  string `parser:"\"declare\" @Ident \"as\" "`
	TypeName string `parser:"@Ident"`
	Param    string `parser:"(\"[\" @Ident \"]\")? \";\""`
}

// Document is a whole parsed schema file.
type Document struct {
	Declarations []*DeclarationNode `parser:"@@*"`
	Rules        []*RuleNode        `parser:"@@*"`
}

var schemaParser = participle.MustBuild[Document](
	participle.Lexer(schemaLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

// Parse parses schema grammar text into a Schema.
func Parse(text string) (*Schema, error) {
	doc, err := schemaParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("schema: parse error: %w", err)
	}

	root := fdbtype.NewRegistry(nil)
	for _, d := range doc.Declarations {
		if err := root.Declare(d.Keyword, d.TypeName, d.Param); err != nil {
			return nil, fmt.Errorf("schema: declaring %q: %w", d.Keyword, err)
		}
	}

	s := &Schema{Root: root}
	for _, rn := range doc.Rules {
		rule, err := buildRule(rn, root, LevelDatabase)
		if err != nil {
			return nil, err
		}
		s.Databases = append(s.Databases, rule)
	}
	return s, nil
}

func buildRule(rn *RuleNode, registry *fdbtype.Registry, level Level) (*Rule, error) {
	if level > LevelDatum {
		return nil, fmt.Errorf("schema: rule nesting exceeds the database/index/datum tree")
	}

	// A rule whose predicates carry inline "keyword:TypeName" declarations
	// gets its own registry overlaying the parent passed in, so those
	// declarations are scoped to this rule and its descendants without
	// disturbing sibling rules sharing the same parent registry.
	local := registry
	for _, pn := range rn.Predicates {
		if pn.Type != nil {
			local = fdbtype.NewRegistry(registry)
			break
		}
	}

	predicates := make([]Predicate, len(rn.Predicates))
	for i, pn := range rn.Predicates {
		if pn.Type != nil {
			if err := local.Declare(pn.Keyword, pn.Type.Name, pn.Type.Param); err != nil {
				return nil, fmt.Errorf("schema: declaring %q: %w", pn.Keyword, err)
			}
		}
		predicates[i] = Predicate{Keyword: pn.Keyword, Matcher: pn.Modifier.matcher()}
	}
	rule := NewRule(level, local, predicates...)
	for _, child := range rn.Children {
		childRule, err := buildRule(child, local, level+1)
		if err != nil {
			return nil, err
		}
		rule.AddChild(childRule)
	}
	return rule, nil
}

// Package schema implements the declarative 3-level rule tree (database,
// index, datum) that governs where a field lands on archive and how a
// retrieval request fans out to fields.
//
//	schema file                     Schema
//	declare param as Param;   ──▶   Root *fdbtype.Registry
//	[ class, stream           ──▶   Databases []*Rule  (Level = database)
//	    [ type, levtype       ──▶     .Children         (Level = index)
//	        [ step, param ]   ──▶       .Children        (Level = datum)
//	    ]
//	]
//
// Matcher is the closed sum of the seven predicate kinds (Always, Any,
// Value, None, ExcludeAll, Optional, Hidden); Rule pairs a Predicate list
// with child rules and a Registry. ExpandWrite drives a visitor.WriteVisitor
// across a single fully-specified key, enforcing that at most one datum
// rule matches. ExpandRead drives a visitor.ReadVisitor across the
// Cartesian product of every predicate's candidate values, computed from
// the Request and, for axis-aware types like Step and Param, the
// currently open database's on-disk values.
package schema

package visitor

import "github.com/ecmwf/fdb-go/pkg/fdbkey"

// Visitor is offered each tree level schema expansion matches. levelKey is
// the projection contributed by the matching rule alone; fullKey is the
// complete field key (write path) or the combination currently being
// expanded (read path). Returning false vetoes descent into that node's
// children without being an error.
type Visitor interface {
	SelectDatabase(levelKey, fullKey *fdbkey.Key) (descend bool, err error)
	SelectIndex(levelKey, fullKey *fdbkey.Key) (descend bool, err error)
	SelectDatum(levelKey, fullKey *fdbkey.Key) (descend bool, err error)
}

// WriteVisitor is the archive-path specialisation of Visitor. It is a
// distinct name, not a distinct shape, so archiver code reads as archiving
// even though the interface it satisfies is identical to ReadVisitor.
type WriteVisitor interface {
	Visitor
}

// ReadVisitor is the retrieval-path specialisation of Visitor.
type ReadVisitor interface {
	Visitor
}

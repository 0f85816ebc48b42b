package retriever

// DataHandle locates one field's bytes on disk, resolved from a FieldRef
// through the index's interned path table.
type DataHandle struct {
	Key             string
	Path            string
	Offset          uint64
	Length          uint64
	NeedsSynthesis  bool
	SynthesisParams []string
}

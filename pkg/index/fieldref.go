package index

// FieldRef locates one archived field: the interned data-file path and the
// byte range within it.
type FieldRef struct {
	PathID uint32
	Offset uint64
	Length uint64
}

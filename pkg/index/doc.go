// Package index implements the per-index B-tree: the mapping from a
// datum's canonical key string to the FieldRef locating its bytes in a
// data file, the FileStore path-interning table, and the per-keyword Axis
// of values actually archived.
//
// The B-tree is realised on top of go.etcd.io/bbolt: one bbolt database
// per .idx file, with dedicated buckets for field records, interned
// data-file paths, and axis values. google/btree backs the in-memory Axis
// so Step/Param request expansion can binary-search the ordered value set
// without walking bbolt on every lookup.
package index

// Package archiver drives the write path: given a fully specified field
// key and its payload bytes, it walks the schema to select (and create,
// if necessary) the database, index, and datum location for the field,
// appends the bytes to that database's current data file, and records
// the resulting FieldRef in the index's B-tree.
//
// Archiver keeps its own small LRU of {DB, DataFile} sessions, bounded by
// the same fdbconfig.Config.MaxNbDBsOpen used for database.Manager's read
// cache, because eviction on the write path must run the pinned close
// sequence (flush-data, flush-index, write-TOC_INDEX, close-index,
// close-data) rather than database.DB's plain Close.
package archiver

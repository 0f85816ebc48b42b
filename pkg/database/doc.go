// Package database owns the per-DB lifecycle: selecting which configured
// root a database key belongs under, a pluggable Engine registry so the
// on-disk backend can be swapped without touching callers, and the
// open/dirty/flushed/closed state machine each open DB moves through
// while being written or read.
//
// Manager keeps an LRU-by-last-access cache of open ModeRead DBs bounded
// by fdbconfig.Config.MaxNbDBsOpen, evicting (and properly closing) the
// least recently touched DB when a new one needs a slot. ModeWrite opens
// bypass this cache entirely: the Archiver owns writer lifetime with its
// own bounded cache and pinned close sequence, and a second cache here
// would let the two evict the same DB out from under each other.
//
// Close ordering is pinned, not incidental: flush-data, flush-index,
// write-TOC_INDEX, close-index, close-data. FinishWriting accepts the
// archiver's own data-file close as a callback invoked last, so the TOC
// always records an index before the bytes it points at stop being
// flushed, but the data file itself outlives the index close that
// references it.
package database

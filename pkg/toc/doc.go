// Package toc implements the append-only table-of-contents log each
// database keeps: a sequence of fixed-size-header records recording index
// creation, index clearing, a full wipe, or a link to a sub-TOC file.
//
// Records are appended with O_WRONLY|O_APPEND so concurrent writers never
// corrupt each other's entries, and each record's variable payload is
// padded up to a configurable round size to keep entries aligned on disk.
// Payloads are encoded with vmihailenco/msgpack rather than encoding/gob,
// matching the compact, language-neutral wire format FDB tooling outside
// this module also needs to read.
//
// Reconstructing the live index list is a single forward scan: TOC_INDEX
// records add an index keyed by its canonical key string, TOC_CLEAR
// removes one by path, TOC_WIPE drops everything seen so far, and
// TOC_SUB_TOC recurses into a nested TOC file before continuing the
// parent scan. The result is then reversed, so Live() yields the
// most-recently-written index for a given key first — the order a reader
// should consult them in.
package toc

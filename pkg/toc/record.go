package toc

import (
	"encoding/binary"
	"fmt"
)

// Tag identifies the kind of record stored at a given offset.
type Tag uint16

const (
	TagInit Tag = iota + 1
	TagIndex
	TagClear
	TagWipe
	TagSubToc
)

func (t Tag) String() string {
	switch t {
	case TagInit:
		return "TOC_INIT"
	case TagIndex:
		return "TOC_INDEX"
	case TagClear:
		return "TOC_CLEAR"
	case TagWipe:
		return "TOC_WIPE"
	case TagSubToc:
		return "TOC_SUB_TOC"
	default:
		return "TOC_UNKNOWN"
	}
}

// FormatVersion is the current on-disk record format. VersionError is
// raised for anything greater.
const FormatVersion uint16 = 1

// HeaderSize is the fixed size, in bytes, of every record's header. A
// payload's length is rounded so that (HeaderSize + len(payload) + pad) is
// a multiple of the writer's configured round size.
const HeaderSize = 64

// Header is the fixed-width prefix of every TOC record. Stride is the
// full on-disk size of the record (header + payload + padding), letting a
// reader skip straight to the next record without knowing the writer's
// round size. Timestamp, UID and PID identify when and by which writer
// process the record was appended; the remainder of the 64 bytes is
// reserved padding.
type Header struct {
	Tag         Tag
	Version     uint16
	PayloadSize uint32
	Stride      uint32
	Timestamp   int64
	UID         uint32
	PID         uint32
}

func (h Header) marshal() []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(buf[0:2], uint16(h.Tag))
	binary.BigEndian.PutUint16(buf[2:4], h.Version)
	binary.BigEndian.PutUint32(buf[4:8], h.PayloadSize)
	binary.BigEndian.PutUint32(buf[8:12], h.Stride)
	binary.BigEndian.PutUint64(buf[12:20], uint64(h.Timestamp))
	binary.BigEndian.PutUint32(buf[20:24], h.UID)
	binary.BigEndian.PutUint32(buf[24:28], h.PID)
	return buf
}

func unmarshalHeader(buf []byte) (Header, error) {
	if len(buf) != HeaderSize {
		return Header{}, fmt.Errorf("toc: short header (%d bytes)", len(buf))
	}
	return Header{
		Tag:         Tag(binary.BigEndian.Uint16(buf[0:2])),
		Version:     binary.BigEndian.Uint16(buf[2:4]),
		PayloadSize: binary.BigEndian.Uint32(buf[4:8]),
		Stride:      binary.BigEndian.Uint32(buf[8:12]),
		Timestamp:   int64(binary.BigEndian.Uint64(buf[12:20])),
		UID:         binary.BigEndian.Uint32(buf[20:24]),
		PID:         binary.BigEndian.Uint32(buf[24:28]),
	}, nil
}

// Record is one decoded entry: its header and raw msgpack payload bytes.
// Decode into the tag-specific payload type with Decode.
type Record struct {
	Header  Header
	Payload []byte
}

// InitPayload is the first record of every TOC, written exactly once by
// whichever writer wins the O_CREAT|O_EXCL race to create the file.
// IsSubToc distinguishes a per-writer sub-TOC from a database's master
// TOC.
type InitPayload struct {
	FDBVersion string
	CreatedUID uint32
	IsSubToc   bool
}

// IndexPayload records that an index was created, keyed by the canonical
// string of the index-level Key (e.g. "type=an,levtype=sfc") and the path
// of its .idx file, relative to the database directory.
type IndexPayload struct {
	Key       string
	IndexPath string
}

// ClearPayload masks a previously recorded index out of the live set,
// e.g. after it has been superseded by a fresh archive for the same key.
type ClearPayload struct {
	IndexPath string
}

// WipePayload drops every index recorded so far; used when a database is
// fully re-archived from scratch.
type WipePayload struct{}

// SubTocPayload links to a nested TOC file, relative to the database
// directory, that the scan should recurse into before continuing past
// this record.
type SubTocPayload struct {
	Path string
}

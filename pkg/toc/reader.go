package toc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ecmwf/fdb-go/pkg/ferrors"
)

// ReadAll reads every record of the TOC file at path, in append order.
func ReadAll(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ferrors.IOError{Op: "open toc", Path: path, Err: err}
	}
	defer f.Close()

	var records []Record
	header := make([]byte, HeaderSize)
	for {
		if _, err := io.ReadFull(f, header); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ferrors.IOError{Op: "read toc header", Path: path, Err: err}
		}
		h, err := unmarshalHeader(header)
		if err != nil {
			return nil, &ferrors.IOError{Op: "decode toc header", Path: path, Err: err}
		}
		if h.Version > FormatVersion {
			return nil, &ferrors.VersionError{Path: path, Version: h.Version, Max: FormatVersion}
		}
		payload := make([]byte, h.PayloadSize)
		if _, err := io.ReadFull(f, payload); err != nil {
			return nil, &ferrors.IOError{Op: "read toc payload", Path: path, Err: err}
		}
		padding := int64(h.Stride) - int64(HeaderSize) - int64(h.PayloadSize)
		if padding > 0 {
			if _, err := f.Seek(padding, io.SeekCurrent); err != nil {
				return nil, &ferrors.IOError{Op: "skip toc padding", Path: path, Err: err}
			}
		}
		records = append(records, Record{Header: h, Payload: payload})
	}
	return records, nil
}

// Decode unmarshals a record's payload into the type matching its tag.
func Decode(r Record) (any, error) {
	switch r.Header.Tag {
	case TagInit:
		var p InitPayload
		return p, msgpack.Unmarshal(r.Payload, &p)
	case TagIndex:
		var p IndexPayload
		return p, msgpack.Unmarshal(r.Payload, &p)
	case TagClear:
		var p ClearPayload
		return p, msgpack.Unmarshal(r.Payload, &p)
	case TagWipe:
		var p WipePayload
		return p, msgpack.Unmarshal(r.Payload, &p)
	case TagSubToc:
		var p SubTocPayload
		return p, msgpack.Unmarshal(r.Payload, &p)
	default:
		return nil, fmt.Errorf("toc: unknown record tag %d", r.Header.Tag)
	}
}

// CreatorUID returns the uid recorded in the TOC_INIT record of the TOC
// at path — the user that created the database. found is false when the
// file has no TOC_INIT record (a truncated or foreign file).
func CreatorUID(path string) (uid uint32, found bool, err error) {
	records, err := ReadAll(path)
	if err != nil {
		return 0, false, err
	}
	for _, r := range records {
		if r.Header.Tag != TagInit {
			continue
		}
		decoded, err := Decode(r)
		if err != nil {
			return 0, false, err
		}
		return decoded.(InitPayload).CreatedUID, true, nil
	}
	return 0, false, nil
}

// Live reconstructs the set of currently live indexes for the TOC rooted
// at path: a forward scan applying TOC_INDEX/TOC_CLEAR/TOC_WIPE/TOC_SUB_TOC
// in order, recursing into sub-TOCs as they're encountered, followed by a
// reversal so the most recently written index for a given key comes first.
func Live(path string) ([]IndexPayload, error) {
	ordered, err := liveOrdered(path, map[string]bool{})
	if err != nil {
		return nil, err
	}
	out := make([]IndexPayload, len(ordered))
	for i, ip := range ordered {
		out[len(ordered)-1-i] = ip
	}
	return out, nil
}

func liveOrdered(path string, visited map[string]bool) ([]IndexPayload, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if visited[abs] {
		return nil, fmt.Errorf("toc: cyclic sub-TOC reference at %s", path)
	}
	visited[abs] = true

	records, err := ReadAll(path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	var live []IndexPayload
	var cleared []bool
	byPath := map[string]int{} // IndexPath -> position in live, for TOC_CLEAR

	for _, r := range records {
		decoded, err := Decode(r)
		if err != nil {
			return nil, err
		}
		switch p := decoded.(type) {
		case IndexPayload:
			byPath[p.IndexPath] = len(live)
			live = append(live, p)
			cleared = append(cleared, false)
		case ClearPayload:
			if i, ok := byPath[p.IndexPath]; ok {
				cleared[i] = true
				delete(byPath, p.IndexPath)
			}
		case WipePayload:
			live = nil
			cleared = nil
			byPath = map[string]int{}
		case SubTocPayload:
			// A missing sub-TOC means its writer never flushed anything;
			// skip it rather than failing the whole scan.
			subPath := filepath.Join(dir, p.Path)
			if _, serr := os.Stat(subPath); serr != nil {
				continue
			}
			sub, err := liveOrdered(subPath, visited)
			if err != nil {
				return nil, err
			}
			// Splice the sub-TOC's surviving records inline, in append
			// order, as if they had been written to this file directly.
			// They stay addressable by path so a later TOC_CLEAR in this
			// file can still mask them.
			for _, ip := range sub {
				byPath[ip.IndexPath] = len(live)
				live = append(live, ip)
				cleared = append(cleared, false)
			}
		}
	}

	filtered := live[:0]
	for i, ip := range live {
		if !cleared[i] {
			filtered = append(filtered, ip)
		}
	}
	return filtered, nil
}

package toc

import (
	"path/filepath"

	"github.com/google/uuid"
)

// NewSubTocName returns a UUID-suffixed sub-TOC filename, unique per
// writer session so concurrent writers never collide on the same sub-TOC
// file.
func NewSubTocName() string {
	return "subtoc." + uuid.New().String()
}

// CreateSubToc opens a new sub-TOC file inside dir, writing a TOC_INIT
// record flagged as a sub-TOC, and returns its writer together with the
// filename (relative to dir) so the caller can link it into the parent
// TOC with LinkSubToc.
func CreateSubToc(dir string, roundSize int, fdbVersion string, uid uint32) (*Writer, string, error) {
	name := NewSubTocName()
	w, err := openWriter(filepath.Join(dir, name), roundSize, InitPayload{
		FDBVersion: fdbVersion,
		CreatedUID: uid,
		IsSubToc:   true,
	})
	if err != nil {
		return nil, "", err
	}
	return w, name, nil
}

// LinkSubToc appends a TOC_SUB_TOC record to parent pointing at the given
// sub-TOC filename.
func LinkSubToc(parent *Writer, subTocName string) error {
	return parent.Append(TagSubToc, SubTocPayload{Path: subTocName})
}

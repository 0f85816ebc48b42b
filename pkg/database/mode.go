package database

// Mode distinguishes why a DB was opened. A read-mode DB never creates a
// TOC writer or new indexes; a write-mode DB may not be opened against a
// read-only root.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

func (m Mode) String() string {
	if m == ModeWrite {
		return "write"
	}
	return "read"
}

package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ecmwf/fdb-go/pkg/fdbconfig"
	"github.com/ecmwf/fdb-go/pkg/fdbkey"
	"github.com/ecmwf/fdb-go/pkg/ferrors"
	"github.com/ecmwf/fdb-go/pkg/index"
	"github.com/ecmwf/fdb-go/pkg/toc"
)

// DB is one open database directory: its TOC and the indexes it has
// created or opened so far.
type DB interface {
	Key() *fdbkey.Key
	Dir() string
	Mode() Mode
	State() State

	// Index returns the open index for indexKey, opening it on first use.
	// In ModeRead a missing index file is a NotFound; in ModeWrite the
	// file is created, and FinishWriting records it in the TOC.
	Index(indexKey *fdbkey.Key) (*index.Index, error)

	// MarkDirty moves the DB out of StateFlushed so a subsequent
	// FinishWriting knows there is unflushed work.
	MarkDirty()

	// FinishWriting performs the pinned close sequence — flush every open
	// index, append any not-yet-recorded TOC_INDEX entries, close every
	// index, and only then invoke closeData, which the archiver supplies
	// to close the data file it was writing into.
	FinishWriting(closeData func() error) error

	// SchemaPath returns the path of the schema file copied into this
	// database's directory at init time — the authoritative schema for
	// reading (and schema-drift detection for writing) this DB, decoupled
	// from whatever the process-wide master schema has since become.
	SchemaPath() string

	// Wipe appends a TOC_WIPE record, masking every index this DB has
	// recorded so far. Only valid in ModeWrite.
	Wipe() error

	Close() error
}

func init() {
	RegisterEngine(tocEngine{})
}

// tocEngine is the only storage engine this module implements: a plain
// TOC-backed database directory, the Go analogue of FDB5's default
// on-disk layout.
type tocEngine struct{}

func (tocEngine) Name() string { return "toc" }

func (tocEngine) Open(dir string, key *fdbkey.Key, mode Mode, cfg fdbconfig.Config) (DB, error) {
	if mode == ModeWrite {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &ferrors.IOError{Op: "mkdir database", Path: dir, Err: err}
		}
	}

	tocPath := filepath.Join(dir, "toc")
	schemaPath := filepath.Join(dir, "schema")
	d := &tocDB{
		dir:        dir,
		key:        key,
		mode:       mode,
		cfg:        cfg,
		state:      StateOpened,
		schemaPath: schemaPath,
		indexes:    map[string]*openIndex{},
		recorded:   map[string]bool{},
	}

	if mode == ModeWrite {
		if err := checkWriteACL(tocPath, key, cfg); err != nil {
			return nil, err
		}
		uid := uint32(os.Getuid())
		master, err := toc.OpenWriter(tocPath, cfg.RoundTocRecords, "1.0.0", uid)
		if err != nil {
			return nil, err
		}
		d.master = master
		d.writer = master
		if cfg.UseSubToc {
			sub, name, err := toc.CreateSubToc(dir, cfg.RoundTocRecords, "1.0.0", uid)
			if err != nil {
				_ = master.Close()
				return nil, err
			}
			if err := toc.LinkSubToc(master, name); err != nil {
				_ = sub.Close()
				_ = master.Close()
				return nil, err
			}
			d.writer = sub
		}
		if cfg.SchemaFile != "" {
			if err := copySchemaIfAbsent(cfg.SchemaFile, schemaPath); err != nil {
				_ = d.closeWriters()
				return nil, err
			}
		}
	}
	return d, nil
}

// checkWriteACL enforces the creator-only write policy: when enabled,
// an existing database may only be written by the uid recorded in its
// TOC_INIT record, or by a configured super-user. A database that does
// not exist yet is always writable — the caller becomes its creator.
func checkWriteACL(tocPath string, key *fdbkey.Key, cfg fdbconfig.Config) error {
	if !cfg.OnlyCreatorCanWrite {
		return nil
	}
	if _, err := os.Stat(tocPath); err != nil {
		return nil
	}
	creator, found, err := toc.CreatorUID(tocPath)
	if err != nil || !found {
		return err
	}
	uid := uint32(os.Getuid())
	if uid == creator {
		return nil
	}
	for _, su := range cfg.SuperUsers {
		if uid == su {
			return nil
		}
	}
	return &ferrors.PermissionError{DBKey: key.String(), UID: uid}
}

// copySchemaIfAbsent copies the master schema to dst exactly once, the
// first time a database directory is created: write to a temp sibling,
// then rename into place, so a reader never observes a partially written
// schema file. If dst already exists — because another writer won the
// TOC_INIT race and copied it first — this is a silent no-op.
func copySchemaIfAbsent(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return &ferrors.IOError{Op: "read master schema", Path: src, Err: err}
	}
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &ferrors.IOError{Op: "write schema copy", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, dst); err != nil {
		if os.IsExist(err) {
			_ = os.Remove(tmp)
			return nil
		}
		_ = os.Remove(tmp)
		return &ferrors.IOError{Op: "rename schema copy", Path: dst, Err: err}
	}
	return nil
}

type tocDB struct {
	mu         sync.Mutex
	dir        string
	key        *fdbkey.Key
	mode       Mode
	cfg        fdbconfig.Config
	state      State
	writer     *toc.Writer // where INDEX/CLEAR records go (the sub-TOC when enabled)
	master     *toc.Writer // the database's own toc file
	schemaPath string
	indexes    map[string]*openIndex // indexKey.String() -> Index
	recorded   map[string]bool       // indexKey.String() -> already in TOC
}

type openIndex struct {
	idx      *index.Index
	fileName string
}

func (d *tocDB) Key() *fdbkey.Key    { return d.key }
func (d *tocDB) Dir() string        { return d.dir }
func (d *tocDB) Mode() Mode         { return d.mode }
func (d *tocDB) SchemaPath() string { return d.schemaPath }

func (d *tocDB) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *tocDB) MarkDirty() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateFlushed || d.state == StateOpened {
		d.state = StateDirty
	}
}

func (d *tocDB) Index(indexKey *fdbkey.Key) (*index.Index, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name := indexKey.String()
	if entry, ok := d.indexes[name]; ok {
		return entry.idx, nil
	}

	fileName := indexFileName(indexKey)
	path := filepath.Join(d.dir, fileName)
	if d.mode == ModeRead {
		if _, err := os.Stat(path); err != nil {
			return nil, &ferrors.NotFound{Key: name}
		}
	}
	idx, err := index.Open(path, d.cfg.CheckDoubleInsert)
	if err != nil {
		return nil, err
	}
	d.indexes[name] = &openIndex{idx: idx, fileName: fileName}
	if d.mode == ModeWrite {
		d.state = StateDirty
	}
	return idx, nil
}

func indexFileName(indexKey *fdbkey.Key) string {
	return indexKey.ValuesToString() + ".idx"
}

// FinishWriting performs flush-index, write-TOC_INDEX, close-index, and
// finally invokes closeData.
func (d *tocDB) FinishWriting(closeData func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for name, entry := range d.indexes {
		if err := entry.idx.Flush(); err != nil {
			return fmt.Errorf("database: flushing index %s: %w", name, err)
		}
	}
	for name, entry := range d.indexes {
		if d.recorded[name] {
			continue
		}
		if d.writer != nil {
			if err := d.writer.Append(toc.TagIndex, toc.IndexPayload{Key: name, IndexPath: entry.fileName}); err != nil {
				return fmt.Errorf("database: recording index %s: %w", name, err)
			}
		}
		d.recorded[name] = true
	}
	for name, entry := range d.indexes {
		if err := entry.idx.Close(); err != nil {
			return fmt.Errorf("database: closing index %s: %w", name, err)
		}
		delete(d.indexes, name)
	}
	d.state = StateFlushed

	if closeData != nil {
		if err := closeData(); err != nil {
			return fmt.Errorf("database: closing data file: %w", err)
		}
	}
	return nil
}

// Wipe appends a TOC_WIPE record to the master TOC, masking everything —
// including sub-TOC contributions. The caller is responsible for
// reclaiming the now-unreachable index and data files separately (see
// pkg/toc.Execute).
func (d *tocDB) Wipe() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.master == nil {
		return fmt.Errorf("database: wipe requires ModeWrite")
	}
	if err := d.master.Wipe(); err != nil {
		return err
	}
	d.state = StateDirty
	return nil
}

// closeWriters closes the sub-TOC writer (when distinct) and the master.
func (d *tocDB) closeWriters() error {
	var firstErr error
	if d.writer != nil && d.writer != d.master {
		if err := d.writer.Close(); err != nil {
			firstErr = err
		}
	}
	if d.master != nil {
		if err := d.master.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	d.writer = nil
	d.master = nil
	return firstErr
}

func (d *tocDB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateClosed {
		return nil
	}
	for _, entry := range d.indexes {
		_ = entry.idx.Close()
	}
	d.indexes = map[string]*openIndex{}
	if err := d.closeWriters(); err != nil {
		return err
	}
	d.state = StateClosed
	return nil
}

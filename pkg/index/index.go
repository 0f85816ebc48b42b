package index

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"

	"github.com/ecmwf/fdb-go/pkg/ferrors"
	"github.com/ecmwf/fdb-go/pkg/metrics"
)

var (
	fieldsBucket = []byte("fields")
	pathsBucket  = []byte("paths")
	pathIDBucket = []byte("path_ids")
	axisBucket   = []byte("axes")
)

// Index is one open .idx B-tree file: the datum-key to FieldRef map, the
// interned data-file path table, and the per-keyword Axis set.
type Index struct {
	mu                sync.RWMutex
	db                *bolt.DB
	path              string
	checkDoubleInsert bool
	axes              map[string]*Axis
	nextPathID        uint32
}

// Open opens (creating if absent) the bbolt-backed index file at path.
// checkDoubleInsert gates whether Put on an existing datum key is fatal
// (the default writer behaviour) or a silent overwrite.
func Open(path string, checkDoubleInsert bool) (*Index, error) {
	db, err := bolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, &ferrors.IOError{Op: "open index", Path: path, Err: err}
	}
	idx := &Index{db: db, path: path, checkDoubleInsert: checkDoubleInsert, axes: map[string]*Axis{}}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{fieldsBucket, pathsBucket, pathIDBucket, axisBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, &ferrors.IOError{Op: "initialise index buckets", Path: path, Err: err}
	}

	if err := idx.loadPathIDs(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := idx.loadAxes(); err != nil {
		_ = db.Close()
		return nil, err
	}
	metrics.IndexesOpen.Inc()
	return idx, nil
}

func (idx *Index) loadPathIDs() error {
	return idx.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(pathIDBucket)
		return b.ForEach(func(k, v []byte) error {
			id := binary.BigEndian.Uint32(v)
			if id >= idx.nextPathID {
				idx.nextPathID = id + 1
			}
			return nil
		})
	})
}

func (idx *Index) loadAxes() error {
	return idx.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(axisBucket)
		return b.ForEach(func(k, _ []byte) error {
			keyword, value, ok := splitAxisKey(k)
			if !ok {
				return nil
			}
			idx.axisFor(keyword).insert(value)
			return nil
		})
	})
}

func axisKey(keyword, value string) []byte {
	return []byte(keyword + "\x00" + value)
}

func splitAxisKey(k []byte) (keyword, value string, ok bool) {
	s := string(k)
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// axisFor returns (creating if necessary) the in-memory Axis for keyword.
// Callers must hold idx.mu.
func (idx *Index) axisFor(keyword string) *Axis {
	a, ok := idx.axes[keyword]
	if !ok {
		a = newAxis()
		idx.axes[keyword] = a
	}
	return a
}

// Axis returns the Axis tracking archived values for keyword.
func (idx *Index) Axis(keyword string) *Axis {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if a, ok := idx.axes[keyword]; ok {
		return a
	}
	return newAxis()
}

// RecordAxisValue adds value to keyword's axis, in memory and on disk.
func (idx *Index) RecordAxisValue(keyword, value string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	err := idx.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(axisBucket).Put(axisKey(keyword, value), []byte{1})
	})
	if err != nil {
		return &ferrors.IOError{Op: "record axis value", Path: idx.path, Err: err}
	}
	idx.axisFor(keyword).insert(value)
	return nil
}

// InternPath returns the integer ID for path, assigning a new one if this
// is the first time the index has seen it.
func (idx *Index) InternPath(path string) (uint32, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var id uint32
	err := idx.db.Update(func(tx *bolt.Tx) error {
		paths := tx.Bucket(pathsBucket)
		ids := tx.Bucket(pathIDBucket)
		if existing := ids.Get([]byte(path)); existing != nil {
			id = binary.BigEndian.Uint32(existing)
			return nil
		}
		id = idx.nextPathID
		idx.nextPathID++
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, id)
		if err := ids.Put([]byte(path), buf); err != nil {
			return err
		}
		return paths.Put(buf, []byte(path))
	})
	if err != nil {
		return 0, &ferrors.IOError{Op: "intern path", Path: idx.path, Err: err}
	}
	return id, nil
}

// PathFor resolves a previously interned path ID back to its string.
func (idx *Index) PathFor(id uint32) (string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var path string
	err := idx.db.View(func(tx *bolt.Tx) error {
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, id)
		v := tx.Bucket(pathsBucket).Get(buf)
		if v == nil {
			return fmt.Errorf("index: no path interned for id %d", id)
		}
		path = string(v)
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// Put inserts ref for datumKey. If checkDoubleInsert is set and datumKey
// already exists, it returns a fatal ferrors.DoubleInsert instead of
// overwriting.
func (idx *Index) Put(datumKey string, ref FieldRef) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	payload, err := msgpack.Marshal(ref)
	if err != nil {
		return fmt.Errorf("index: encoding field ref: %w", err)
	}
	err = idx.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(fieldsBucket)
		if idx.checkDoubleInsert && b.Get([]byte(datumKey)) != nil {
			return &ferrors.DoubleInsert{IndexPath: idx.path, DatumKey: datumKey}
		}
		return b.Put([]byte(datumKey), payload)
	})
	if err != nil {
		if _, ok := err.(*ferrors.DoubleInsert); ok {
			metrics.IndexDoubleInsertsTotal.Inc()
			return err
		}
		return &ferrors.IOError{Op: "put field", Path: idx.path, Err: err}
	}
	metrics.IndexPutsTotal.Inc()
	return nil
}

// Get looks up the FieldRef for datumKey.
func (idx *Index) Get(datumKey string) (FieldRef, bool, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var ref FieldRef
	var found bool
	err := idx.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(fieldsBucket).Get([]byte(datumKey))
		if v == nil {
			return nil
		}
		found = true
		return msgpack.Unmarshal(v, &ref)
	})
	if err != nil {
		return FieldRef{}, false, fmt.Errorf("index: decoding field ref for %q: %w", datumKey, err)
	}
	return ref, found, nil
}

// Remove deletes the entry for datumKey, used by purge when reclaiming
// superseded fields.
func (idx *Index) Remove(datumKey string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	err := idx.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(fieldsBucket).Delete([]byte(datumKey))
	})
	if err != nil {
		return &ferrors.IOError{Op: "remove field", Path: idx.path, Err: err}
	}
	return nil
}

// Range visits every (datumKey, FieldRef) pair in key order. Stops early
// if fn returns false.
func (idx *Index) Range(fn func(datumKey string, ref FieldRef) bool) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(fieldsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var ref FieldRef
			if err := msgpack.Unmarshal(v, &ref); err != nil {
				return fmt.Errorf("index: decoding field ref for %q: %w", k, err)
			}
			if !fn(string(k), ref) {
				break
			}
		}
		return nil
	})
}

// Flush commits any pending bbolt writes to disk. bbolt fsyncs at the end
// of every Update transaction, so this mainly exists to give callers an
// explicit point to call out in their own flush sequencing.
func (idx *Index) Flush() error { return nil }

// Close closes the underlying bbolt database.
func (idx *Index) Close() error {
	if err := idx.db.Close(); err != nil {
		return &ferrors.IOError{Op: "close index", Path: idx.path, Err: err}
	}
	metrics.IndexesOpen.Dec()
	return nil
}

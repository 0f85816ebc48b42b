package archiver

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/ecmwf/fdb-go/pkg/ferrors"
)

// asyncBufferSize is the write-behind buffer used when asynchronous data
// writes are enabled.
const asyncBufferSize = 1 << 20

// DataFile is one append-only data file a DB's fields are written into.
// Writes are padded up to blockSize so each field starts on a block
// boundary; blockSize comes from fdbconfig.Config.BlockSize. With async enabled, writes land in a buffer that
// is drained to the file on Sync — callers observe the same durability
// at flush time, deferred rather than per-field.
type DataFile struct {
	mu        sync.Mutex
	f         *os.File
	w         io.Writer
	buf       *bufio.Writer
	path      string
	offset    uint64
	blockSize int
}

// CreateDataFile opens a new, uniquely named data file inside dir.
func CreateDataFile(dir string, blockSize int, async bool) (*DataFile, error) {
	if blockSize <= 0 {
		blockSize = 4096
	}
	name := uuid.New().String() + ".data"
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, &ferrors.IOError{Op: "create data file", Path: path, Err: err}
	}
	d := &DataFile{f: f, w: f, path: path, blockSize: blockSize}
	if async {
		d.buf = bufio.NewWriterSize(f, asyncBufferSize)
		d.w = d.buf
	}
	return d, nil
}

// Path returns the data file's path.
func (d *DataFile) Path() string { return d.path }

// Write appends payload, padded to the next block boundary, and returns
// the (offset, length) of the unpadded payload within the file.
func (d *DataFile) Write(payload []byte) (offset uint64, length uint64, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	offset = d.offset
	length = uint64(len(payload))

	if _, err := d.w.Write(payload); err != nil {
		return 0, 0, &ferrors.IOError{Op: "write field", Path: d.path, Offset: int64(offset), Err: err}
	}
	written := len(payload)
	if pad := written % d.blockSize; pad != 0 {
		padding := d.blockSize - pad
		if _, err := d.w.Write(make([]byte, padding)); err != nil {
			return 0, 0, &ferrors.IOError{Op: "pad field", Path: d.path, Offset: int64(offset), Err: err}
		}
		written += padding
	}
	d.offset += uint64(written)
	return offset, length, nil
}

// Sync drains any buffered writes and flushes the data file to stable
// storage — the "flush-data" step of the pinned close ordering, performed
// before any index flush.
func (d *DataFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.buf != nil {
		if err := d.buf.Flush(); err != nil {
			return &ferrors.IOError{Op: "flush data buffer", Path: d.path, Err: err}
		}
	}
	if err := d.f.Sync(); err != nil {
		return &ferrors.IOError{Op: "sync data file", Path: d.path, Err: err}
	}
	return nil
}

// Close closes the data file. Called last in the pinned close ordering,
// after every index referencing it has already been closed.
func (d *DataFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.buf != nil {
		if err := d.buf.Flush(); err != nil {
			return &ferrors.IOError{Op: "flush data buffer", Path: d.path, Err: err}
		}
	}
	if err := d.f.Close(); err != nil {
		return &ferrors.IOError{Op: "close data file", Path: d.path, Err: err}
	}
	return nil
}

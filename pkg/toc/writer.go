package toc

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ecmwf/fdb-go/pkg/ferrors"
	"github.com/ecmwf/fdb-go/pkg/metrics"
)

// DefaultRoundSize is the padding granularity applied to every record
// when the writer isn't configured otherwise.
const DefaultRoundSize = 1024

// pipeBuf is the POSIX minimum atomic-write size for O_APPEND files.
// A record larger than this could interleave with a concurrent writer's
// append, so Append refuses it.
const pipeBuf = 4096

// Writer appends records to one TOC file. All writes go through
// O_WRONLY|O_APPEND so concurrent writers on shared storage (e.g. NFS,
// Lustre) never interleave partial records.
type Writer struct {
	mu        sync.Mutex
	f         *os.File
	path      string
	roundSize int
	uid       uint32
}

// OpenWriter opens path for appending, creating it (and writing the
// initial TOC_INIT record) if this call wins the O_CREAT|O_EXCL race.
// Every other concurrent opener simply appends to the file the winner
// created.
func OpenWriter(path string, roundSize int, fdbVersion string, uid uint32) (*Writer, error) {
	return openWriter(path, roundSize, InitPayload{FDBVersion: fdbVersion, CreatedUID: uid})
}

func openWriter(path string, roundSize int, init InitPayload) (*Writer, error) {
	if roundSize <= 0 {
		roundSize = DefaultRoundSize
	}
	w := &Writer{path: path, roundSize: roundSize, uid: init.CreatedUID}

	created := false
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE|os.O_EXCL, 0o644)
	switch {
	case err == nil:
		created = true
	case os.IsExist(err):
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, &ferrors.IOError{Op: "open toc", Path: path, Err: err}
		}
	default:
		return nil, &ferrors.IOError{Op: "create toc", Path: path, Err: err}
	}
	w.f = f

	if created {
		if err := w.append(TagInit, init); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return w, nil
}

// Append writes one record. payload is encoded with msgpack and padded up
// to the writer's round size.
func (w *Writer) Append(tag Tag, payload any) error {
	return w.append(tag, payload)
}

func (w *Writer) append(tag Tag, payload any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	body, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("toc: encoding %s payload: %w", tag, err)
	}

	total := HeaderSize + len(body)
	if pad := total % w.roundSize; pad != 0 {
		total += w.roundSize - pad
	}
	if total > pipeBuf {
		return fmt.Errorf("toc: %s record of %d bytes exceeds the %d byte atomic append limit", tag, total, pipeBuf)
	}
	padding := total - HeaderSize - len(body)

	header := Header{
		Tag:         tag,
		Version:     FormatVersion,
		PayloadSize: uint32(len(body)),
		Stride:      uint32(total),
		Timestamp:   time.Now().Unix(),
		UID:         w.uid,
		PID:         uint32(os.Getpid()),
	}
	record := make([]byte, 0, total)
	record = append(record, header.marshal()...)
	record = append(record, body...)
	record = append(record, make([]byte, padding)...)

	if _, err := w.f.Write(record); err != nil {
		return &ferrors.IOError{Op: "append toc record", Path: w.path, Err: err}
	}
	metrics.TOCRecordsTotal.WithLabelValues(tag.String()).Inc()
	return nil
}

// Wipe appends a TOC_WIPE record, masking every index this TOC (and its
// sub-TOCs) has recorded so far.
func (w *Writer) Wipe() error {
	if err := w.Append(TagWipe, WipePayload{}); err != nil {
		return err
	}
	metrics.WipeTotal.Inc()
	return nil
}

// Sync flushes the file to stable storage.
func (w *Writer) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.f.Sync(); err != nil {
		return &ferrors.IOError{Op: "sync toc", Path: w.path, Err: err}
	}
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.f.Close(); err != nil {
		return &ferrors.IOError{Op: "close toc", Path: w.path, Err: err}
	}
	return nil
}

package archiver

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/ecmwf/fdb-go/pkg/database"
	"github.com/ecmwf/fdb-go/pkg/fdbconfig"
	"github.com/ecmwf/fdb-go/pkg/fdbkey"
	"github.com/ecmwf/fdb-go/pkg/ferrors"
	"github.com/ecmwf/fdb-go/pkg/metrics"
	"github.com/ecmwf/fdb-go/pkg/schema"
	"github.com/ecmwf/fdb-go/pkg/visitor"
)

// Archiver writes fields into the databases selected by a Schema.
type Archiver struct {
	cfg     fdbconfig.Config
	schema  *schema.Schema
	manager *database.Manager

	mu       sync.Mutex
	sessions map[string]*session // db dir -> session
	lru      *list.List
	elements map[string]*list.Element
}

type session struct {
	db   database.DB
	data *DataFile
}

// New builds an Archiver writing according to s, using manager to open
// databases and cfg for block size and DB cache bounds.
func New(s *schema.Schema, manager *database.Manager, cfg fdbconfig.Config) *Archiver {
	return &Archiver{
		cfg:      cfg,
		schema:   s,
		manager:  manager,
		sessions: map[string]*session{},
		lru:      list.New(),
		elements: map[string]*list.Element{},
	}
}

// Archive canonicalises key and writes payload to the field it resolves
// to. key must have every keyword the schema's rules require; a partially
// specified key surfaces as a SchemaError.
func (a *Archiver) Archive(key *fdbkey.Key, payload []byte) error {
	timer := metrics.NewTimer()
	err := a.archive(key, payload)
	timer.ObserveDuration(metrics.ArchiveDuration)
	if err != nil {
		metrics.ArchiveTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.ArchiveTotal.WithLabelValues("success").Inc()
	return nil
}

func (a *Archiver) archive(key *fdbkey.Key, payload []byte) error {
	tk := fdbkey.NewTypedKey(a.schema.Root)
	for _, name := range key.Names() {
		v, _ := key.Get(name)
		if a.cfg.CheckMissingKeysOnWrite && v == "" {
			return &ferrors.KeyError{Keyword: name, Reason: "empty value at archive time"}
		}
		if err := tk.Push(name, v); err != nil {
			return fmt.Errorf("archiver: %q: %w", name, err)
		}
	}

	v := &archiveVisitor{a: a, payload: payload}
	return a.schema.ExpandWrite(tk, visitor.WriteVisitor(v), a.cfg.MatchFirstRule)
}

// session returns the open {DB, DataFile} pair for the database dbKey
// resolves to, opening both (and evicting the least-recently-used session
// if the cache is full) on first use.
//
// dir is resolved via SelectRoot before touching the Manager, so a cache
// hit never calls Manager.Open — the Manager no longer caches ModeWrite
// DBs itself (the Archiver is their sole owner), and opening one costs a
// fresh file descriptor every time, so a cache hit must short-circuit
// before that call, not after it.
func (a *Archiver) session(dbKey *fdbkey.Key) (*session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, dir, err := database.SelectRoot(dbKey, a.cfg.Roots, database.ModeWrite)
	if err != nil {
		return nil, err
	}

	if el, ok := a.elements[dir]; ok {
		a.lru.MoveToFront(el)
		return el.Value.(*session), nil
	}

	db, err := a.manager.Open(dbKey, database.ModeWrite)
	if err != nil {
		return nil, err
	}

	data, err := CreateDataFile(dir, a.cfg.BlockSize, a.cfg.AsyncWrite)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	sess := &session{db: db, data: data}
	el := a.lru.PushFront(sess)
	a.elements[dir] = el
	a.sessions[dir] = sess
	a.evictLocked()
	return sess, nil
}

func (a *Archiver) evictLocked() {
	max := a.cfg.MaxNbDBsOpen
	if max <= 0 {
		max = 64
	}
	for a.lru.Len() > max {
		back := a.lru.Back()
		if back == nil {
			return
		}
		sess := back.Value.(*session)
		a.lru.Remove(back)
		for dir, el := range a.elements {
			if el == back {
				delete(a.elements, dir)
				delete(a.sessions, dir)
				break
			}
		}
		_ = closeSession(sess)
	}
}

// closeSession runs the pinned close sequence: flush-data, then
// FinishWriting (flush-index, write-TOC_INDEX, close-index, close-data),
// then DB.Close.
func closeSession(sess *session) error {
	if err := sess.data.Sync(); err != nil {
		return err
	}
	if err := sess.db.FinishWriting(sess.data.Close); err != nil {
		return err
	}
	return sess.db.Close()
}

// Flush closes every open session, running the pinned close sequence on
// each. Callers should call this before process exit so every archived
// field is durably recorded in its index and TOC.
func (a *Archiver) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var firstErr error
	for el := a.lru.Front(); el != nil; el = el.Next() {
		if err := closeSession(el.Value.(*session)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.sessions = map[string]*session{}
	a.elements = map[string]*list.Element{}
	a.lru = list.New()
	return firstErr
}

package database

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/ecmwf/fdb-go/pkg/fdbconfig"
	"github.com/ecmwf/fdb-go/pkg/fdbkey"
)

// Manager opens DBs and caches the ModeRead ones, bounded to
// cfg.MaxNbDBsOpen, evicting the least-recently-used DB (closing it
// properly) when a new one needs a slot.
type Manager struct {
	cfg        fdbconfig.Config
	engineName string

	mu      sync.Mutex
	entries map[string]*list.Element // db directory -> lru element
	lru     *list.List                // front = most recently used
}

type managerEntry struct {
	dir string
	db  DB
}

// NewManager builds a Manager using cfg's root list and the named engine
// (normally "toc").
func NewManager(cfg fdbconfig.Config, engineName string) *Manager {
	if engineName == "" {
		engineName = "toc"
	}
	return &Manager{
		cfg:        cfg,
		engineName: engineName,
		entries:    map[string]*list.Element{},
		lru:        list.New(),
	}
}

// Open returns a DB for dbKey, opening it (after selecting its root) on
// first use.
//
// ModeRead DBs are cached and LRU-evicted here, by request scope — a
// reading DB never needs the pinned flush/close sequence a writer does,
// so the Manager is free to close and reopen it transparently. ModeWrite
// DBs are never cached by the Manager: the Archiver is their sole owner,
// running its own bounded cache with the pinned close sequence, and a
// second independent cache here would let the two evict the same DB out
// from under each other.
func (m *Manager) Open(dbKey *fdbkey.Key, mode Mode) (DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	root, dir, err := SelectRoot(dbKey, m.cfg.Roots, mode)
	if err != nil {
		return nil, err
	}
	_ = root

	if mode != ModeRead {
		engine, err := LookupEngine(m.engineName)
		if err != nil {
			return nil, err
		}
		return engine.Open(dir, dbKey, mode, m.cfg)
	}

	if el, ok := m.entries[dir]; ok {
		m.lru.MoveToFront(el)
		return el.Value.(*managerEntry).db, nil
	}

	engine, err := LookupEngine(m.engineName)
	if err != nil {
		return nil, err
	}
	db, err := engine.Open(dir, dbKey, mode, m.cfg)
	if err != nil {
		return nil, err
	}

	el := m.lru.PushFront(&managerEntry{dir: dir, db: db})
	m.entries[dir] = el
	m.evictLocked()
	return db, nil
}

func (m *Manager) evictLocked() {
	max := m.cfg.MaxNbDBsOpen
	if max <= 0 {
		max = 64
	}
	for m.lru.Len() > max {
		back := m.lru.Back()
		if back == nil {
			return
		}
		entry := back.Value.(*managerEntry)
		m.lru.Remove(back)
		delete(m.entries, entry.dir)
		_ = entry.db.Close()
	}
}

// CloseAll closes every cached DB, returning the first error encountered.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for el := m.lru.Front(); el != nil; el = el.Next() {
		entry := el.Value.(*managerEntry)
		if err := entry.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("database: closing %s: %w", entry.dir, err)
		}
	}
	m.entries = map[string]*list.Element{}
	m.lru = list.New()
	return firstErr
}

// Len reports how many DBs are currently cached open.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

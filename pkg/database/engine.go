package database

import (
	"sync"

	"github.com/ecmwf/fdb-go/pkg/fdbconfig"
	"github.com/ecmwf/fdb-go/pkg/fdbkey"
	"github.com/ecmwf/fdb-go/pkg/ferrors"
)

// Engine opens a DB of one on-disk storage flavour.
type Engine interface {
	Name() string
	Open(dir string, key *fdbkey.Key, mode Mode, cfg fdbconfig.Config) (DB, error)
}

var (
	enginesMu sync.Mutex
	engines   = map[string]Engine{}
)

// RegisterEngine makes e available to Manager.Open under e.Name(). Called
// from engine package init functions (e.g. the toc engine).
func RegisterEngine(e Engine) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	engines[e.Name()] = e
}

// LookupEngine resolves a registered engine by name, returning
// ferrors.NoEngine if nothing is registered under it.
func LookupEngine(name string) (Engine, error) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	e, ok := engines[name]
	if !ok {
		return nil, &ferrors.NoEngine{Path: name}
	}
	return e, nil
}

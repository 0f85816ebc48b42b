package database

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	"github.com/ecmwf/fdb-go/pkg/fdbconfig"
	"github.com/ecmwf/fdb-go/pkg/fdbkey"
)

// SelectRoot picks which configured root a database key belongs under.
// For ModeRead it returns the first visitable root that already has a
// directory for this key; for ModeWrite it deterministically hashes the
// key across the writable (non-read-only) roots, so repeated writes of
// the same key always land in the same root without needing a central
// allocator.
func SelectRoot(dbKey *fdbkey.Key, roots []fdbconfig.RootSpec, mode Mode) (fdbconfig.RootSpec, string, error) {
	dirName := dbKey.ValuesToString()

	if mode == ModeRead {
		for _, r := range roots {
			if !r.Visit {
				continue
			}
			dir := filepath.Join(r.Path, dirName)
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				return r, dir, nil
			}
		}
		return fdbconfig.RootSpec{}, "", fmt.Errorf("database: no root holds %s", dbKey.String())
	}

	var writable []fdbconfig.RootSpec
	for _, r := range roots {
		if !r.ReadOnly {
			writable = append(writable, r)
		}
	}
	if len(writable) == 0 {
		return fdbconfig.RootSpec{}, "", fmt.Errorf("database: no writable root configured")
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(dirName))
	chosen := writable[h.Sum32()%uint32(len(writable))]
	return chosen, filepath.Join(chosen.Path, dirName), nil
}

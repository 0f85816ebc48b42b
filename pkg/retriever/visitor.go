package retriever

import (
	"fmt"

	"github.com/ecmwf/fdb-go/pkg/database"
	"github.com/ecmwf/fdb-go/pkg/fdbkey"
	"github.com/ecmwf/fdb-go/pkg/fdbtype"
	"github.com/ecmwf/fdb-go/pkg/index"
	"github.com/ecmwf/fdb-go/pkg/log"
	"github.com/ecmwf/fdb-go/pkg/schema"
)

// retrieveVisitor implements visitor.ReadVisitor for one Retrieve call,
// opening databases and indexes read-only as the schema expansion
// descends and gathering a DataHandle for every datum that resolves to an
// archived field.
type retrieveVisitor struct {
	r       *Retriever
	handles []DataHandle

	windsWanted bool

	db  database.DB
	idx *index.Index
}

func (v *retrieveVisitor) SelectDatabase(levelKey, fullKey *fdbkey.Key) (bool, error) {
	db, err := v.r.manager.Open(levelKey, database.ModeRead)
	if err != nil {
		return false, nil // no database for this candidate key; simply don't descend
	}
	if master := v.r.schemaPath(); master != "" {
		if drifted, derr := schema.Drifted(master, db.SchemaPath()); derr == nil && drifted {
			retrieverLog := log.WithComponent("retriever")
			retrieverLog.Warn().
				Str("db", db.Dir()).
				Str("on_disk_schema", db.SchemaPath()).
				Msg("database schema differs from master schema; reading with the database's own copy")
		}
	}
	v.db = db
	return true, nil
}

func (v *retrieveVisitor) SelectIndex(levelKey, fullKey *fdbkey.Key) (bool, error) {
	if v.db == nil {
		return false, fmt.Errorf("retriever: no open database for index %s", levelKey.String())
	}
	idx, err := v.db.Index(levelKey)
	if err != nil {
		return false, nil
	}
	v.idx = idx
	return true, nil
}

func (v *retrieveVisitor) SelectDatum(levelKey, fullKey *fdbkey.Key) (bool, error) {
	if v.idx == nil {
		return false, fmt.Errorf("retriever: no open index for datum %s", levelKey.String())
	}

	param, hasParam := levelKey.Get("param")
	if hasParam {
		if sources, needsSynthesis := windSources(param); needsSynthesis {
			return v.gatherWindSources(fullKey, sources)
		}
	}

	ref, found, err := v.idx.Get(fullKey.String())
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	path, err := v.idx.PathFor(ref.PathID)
	if err != nil {
		return false, err
	}

	v.handles = append(v.handles, DataHandle{
		Key:    fullKey.String(),
		Path:   path,
		Offset: ref.Offset,
		Length: ref.Length,
	})
	return false, nil
}

// gatherWindSources resolves a U/V datum to the archived vorticity and
// divergence fields it must be synthesised from, gathering a handle for
// each that exists and raising the winds-wanted notification when at
// least one was found.
func (v *retrieveVisitor) gatherWindSources(fullKey *fdbkey.Key, sources []string) (bool, error) {
	found := false
	for _, archivedParam := range sources {
		lookupKey := fullKey.Clone()
		lookupKey.Set("param", archivedParam)

		ref, ok, err := v.idx.Get(lookupKey.String())
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		path, err := v.idx.PathFor(ref.PathID)
		if err != nil {
			return false, err
		}
		v.handles = append(v.handles, DataHandle{
			Key:             lookupKey.String(),
			Path:            path,
			Offset:          ref.Offset,
			Length:          ref.Length,
			NeedsSynthesis:  true,
			SynthesisParams: sources,
		})
		found = true
	}
	if found {
		v.windsWanted = true
	}
	return false, nil
}

// axisFor resolves keyword's archived values against the currently open
// index, so Step/Param expansion prefers forms already on disk.
func (v *retrieveVisitor) axisFor(keyword string) fdbtype.Axis {
	if v.idx == nil {
		return nil
	}
	return v.idx.Axis(keyword)
}

package archiver

import (
	"fmt"

	"github.com/ecmwf/fdb-go/pkg/fdbkey"
	"github.com/ecmwf/fdb-go/pkg/ferrors"
	"github.com/ecmwf/fdb-go/pkg/index"
	"github.com/ecmwf/fdb-go/pkg/schema"
)

// archiveVisitor implements visitor.WriteVisitor for one Archive call. It
// descends database -> index -> datum, opening the database and index as
// it goes, and on SelectDatum writes payload into the database's current
// data file and records the FieldRef.
type archiveVisitor struct {
	a       *Archiver
	payload []byte

	sess *session
	idx  *index.Index
}

func (v *archiveVisitor) SelectDatabase(levelKey, fullKey *fdbkey.Key) (bool, error) {
	sess, err := v.a.session(levelKey)
	if err != nil {
		return false, err
	}
	if v.a.cfg.SchemaFile != "" {
		drifted, derr := schema.Drifted(v.a.cfg.SchemaFile, sess.db.SchemaPath())
		if derr == nil && drifted {
			return false, &ferrors.SchemaError{
				Reason:     "database schema differs from master schema; writes against this database must use its own schema",
				Key:        fullKey.String(),
				OnDiskPath: sess.db.SchemaPath(),
			}
		}
	}
	v.sess = sess
	return true, nil
}

func (v *archiveVisitor) SelectIndex(levelKey, fullKey *fdbkey.Key) (bool, error) {
	if v.sess == nil {
		return false, fmt.Errorf("archiver: no open database session for %s", fullKey.String())
	}
	idx, err := v.sess.db.Index(levelKey)
	if err != nil {
		return false, err
	}
	v.idx = idx
	return true, nil
}

func (v *archiveVisitor) SelectDatum(levelKey, fullKey *fdbkey.Key) (bool, error) {
	sess := v.sess
	if sess == nil {
		return false, fmt.Errorf("archiver: no open database session for %s", fullKey.String())
	}

	offset, length, err := sess.data.Write(v.payload)
	if err != nil {
		return false, err
	}
	pathID, err := v.idx.InternPath(sess.data.Path())
	if err != nil {
		return false, err
	}

	datumKey := fullKey.String()
	if err := v.idx.Put(datumKey, index.FieldRef{PathID: pathID, Offset: offset, Length: length}); err != nil {
		return false, err
	}
	for _, name := range levelKey.Names() {
		value, _ := levelKey.Get(name)
		if err := v.idx.RecordAxisValue(name, value); err != nil {
			return false, err
		}
	}

	sess.db.MarkDirty()
	return false, nil
}

package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmwf/fdb-go/pkg/fdbconfig"
	"github.com/ecmwf/fdb-go/pkg/fdbkey"
	"github.com/ecmwf/fdb-go/pkg/ferrors"
	"github.com/ecmwf/fdb-go/pkg/toc"
)

func TestLookupEngineReturnsNoEngineForUnknownName(t *testing.T) {
	_, err := LookupEngine("does-not-exist")
	assert.Error(t, err)
	var noEngine *ferrors.NoEngine
	assert.ErrorAs(t, err, &noEngine)
}

func TestSelectRootHashesWriteConsistently(t *testing.T) {
	roots := []fdbconfig.RootSpec{
		{Path: "/data/a", Visit: true},
		{Path: "/data/b", Visit: true},
	}
	key := fdbkey.FromPairs("class", "od", "stream", "oper")

	r1, dir1, err := SelectRoot(key, roots, ModeWrite)
	require.NoError(t, err)
	r2, dir2, err := SelectRoot(key, roots, ModeWrite)
	require.NoError(t, err)
	assert.Equal(t, r1.Path, r2.Path)
	assert.Equal(t, dir1, dir2)
}

func TestSelectRootSkipsReadOnlyForWrite(t *testing.T) {
	roots := []fdbconfig.RootSpec{
		{Path: "/data/ro", ReadOnly: true, Visit: true},
	}
	_, _, err := SelectRoot(fdbkey.FromPairs("class", "od"), roots, ModeWrite)
	assert.Error(t, err)
}

func TestManagerWriteDBsAreNeverCached(t *testing.T) {
	dir := t.TempDir()
	cfg := fdbconfig.Default()
	cfg.Roots = []fdbconfig.RootSpec{{Path: dir, Visit: true}}
	cfg.MaxNbDBsOpen = 2

	mgr := NewManager(cfg, "toc")
	key := fdbkey.FromPairs("class", "od", "stream", "oper")

	db1, err := mgr.Open(key, ModeWrite)
	require.NoError(t, err)
	db2, err := mgr.Open(key, ModeWrite)
	require.NoError(t, err)
	assert.NotSame(t, db1, db2)
	assert.Equal(t, 0, mgr.Len())

	require.NoError(t, db1.Close())
	require.NoError(t, db2.Close())
}

func TestManagerCachesAndEvictsReadDBs(t *testing.T) {
	dir := t.TempDir()
	cfg := fdbconfig.Default()
	cfg.Roots = []fdbconfig.RootSpec{{Path: dir, Visit: true}}
	cfg.MaxNbDBsOpen = 1

	mgr := NewManager(cfg, "toc")
	keyA := fdbkey.FromPairs("class", "od", "stream", "oper")
	keyB := fdbkey.FromPairs("class", "rd", "stream", "enfo")

	// ModeWrite creates the on-disk directories ModeRead will then find.
	for _, k := range []*fdbkey.Key{keyA, keyB} {
		wdb, err := mgr.Open(k, ModeWrite)
		require.NoError(t, err)
		require.NoError(t, wdb.Close())
	}

	rdb1, err := mgr.Open(keyA, ModeRead)
	require.NoError(t, err)
	rdb1Again, err := mgr.Open(keyA, ModeRead)
	require.NoError(t, err)
	assert.Same(t, rdb1, rdb1Again)
	assert.Equal(t, 1, mgr.Len())

	_, err = mgr.Open(keyB, ModeRead)
	require.NoError(t, err)
	assert.Equal(t, 1, mgr.Len())

	require.NoError(t, mgr.CloseAll())
}

func TestFinishWritingRecordsIndexBeforeClosingData(t *testing.T) {
	dir := t.TempDir()
	cfg := fdbconfig.Default()
	cfg.Roots = []fdbconfig.RootSpec{{Path: dir, Visit: true}}

	mgr := NewManager(cfg, "toc")
	dbKey := fdbkey.FromPairs("class", "od", "stream", "oper")
	db, err := mgr.Open(dbKey, ModeWrite)
	require.NoError(t, err)

	indexKey := fdbkey.FromPairs("type", "an", "levtype", "sfc")
	_, err = db.Index(indexKey)
	require.NoError(t, err)

	dataClosedAfterIndexRecorded := false
	err = db.FinishWriting(func() error {
		live, lerr := toc.Live(filepath.Join(db.Dir(), "toc"))
		dataClosedAfterIndexRecorded = lerr == nil && len(live) == 1
		return nil
	})
	require.NoError(t, err)
	assert.True(t, dataClosedAfterIndexRecorded)

	require.NoError(t, db.Close())
	_ = filepath.Join(dir)
}

func TestWipeMasksLiveIndexes(t *testing.T) {
	dir := t.TempDir()
	cfg := fdbconfig.Default()
	cfg.Roots = []fdbconfig.RootSpec{{Path: dir, Visit: true}}

	mgr := NewManager(cfg, "toc")
	dbKey := fdbkey.FromPairs("class", "od", "stream", "oper")
	db, err := mgr.Open(dbKey, ModeWrite)
	require.NoError(t, err)

	indexKey := fdbkey.FromPairs("type", "an", "levtype", "sfc")
	_, err = db.Index(indexKey)
	require.NoError(t, err)
	require.NoError(t, db.FinishWriting(func() error { return nil }))

	require.NoError(t, db.Wipe())
	tocPath := filepath.Join(db.Dir(), "toc")
	require.NoError(t, db.Close())

	live, err := toc.Live(tocPath)
	require.NoError(t, err)
	assert.Empty(t, live)
}

func TestOnlyCreatorCanWriteRejectsForeignUID(t *testing.T) {
	dir := t.TempDir()
	foreignUID := uint32(os.Getuid()) + 1
	w, err := toc.OpenWriter(filepath.Join(dir, "toc"), 0, "1.0.0", foreignUID)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	cfg := fdbconfig.Default()
	cfg.OnlyCreatorCanWrite = true

	key := fdbkey.FromPairs("class", "od", "stream", "oper")
	_, err = tocEngine{}.Open(dir, key, ModeWrite, cfg)
	require.Error(t, err)
	var permErr *ferrors.PermissionError
	assert.ErrorAs(t, err, &permErr)

	// A super-user listing the current uid bypasses the creator check.
	cfg.SuperUsers = []uint32{uint32(os.Getuid())}
	db, err := tocEngine{}.Open(dir, key, ModeWrite, cfg)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestUseSubTocRoutesIndexRecordsThroughSubToc(t *testing.T) {
	dir := t.TempDir()
	cfg := fdbconfig.Default()
	cfg.Roots = []fdbconfig.RootSpec{{Path: dir, Visit: true}}
	cfg.UseSubToc = true

	mgr := NewManager(cfg, "toc")
	db, err := mgr.Open(fdbkey.FromPairs("class", "od", "stream", "oper"), ModeWrite)
	require.NoError(t, err)

	_, err = db.Index(fdbkey.FromPairs("type", "an", "levtype", "sfc"))
	require.NoError(t, err)
	require.NoError(t, db.FinishWriting(func() error { return nil }))
	tocPath := filepath.Join(db.Dir(), "toc")
	require.NoError(t, db.Close())

	// The master TOC carries only the init and the sub-TOC link; the
	// TOC_INDEX record lives in the sub-TOC, found via the link.
	records, err := toc.ReadAll(tocPath)
	require.NoError(t, err)
	tags := make([]toc.Tag, len(records))
	for i, r := range records {
		tags[i] = r.Header.Tag
	}
	assert.Equal(t, []toc.Tag{toc.TagInit, toc.TagSubToc}, tags)

	live, err := toc.Live(tocPath)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "type=an,levtype=sfc", live[0].Key)
}

func TestConcurrentSubTocWritersAreBothVisible(t *testing.T) {
	dir := t.TempDir()
	cfg := fdbconfig.Default()
	cfg.Roots = []fdbconfig.RootSpec{{Path: dir, Visit: true}}
	cfg.UseSubToc = true

	mgr := NewManager(cfg, "toc")
	dbKey := fdbkey.FromPairs("class", "od", "stream", "oper")

	db1, err := mgr.Open(dbKey, ModeWrite)
	require.NoError(t, err)
	db2, err := mgr.Open(dbKey, ModeWrite)
	require.NoError(t, err)

	_, err = db1.Index(fdbkey.FromPairs("type", "an", "levtype", "sfc"))
	require.NoError(t, err)
	_, err = db2.Index(fdbkey.FromPairs("type", "fc", "levtype", "pl"))
	require.NoError(t, err)

	require.NoError(t, db1.FinishWriting(func() error { return nil }))
	require.NoError(t, db2.FinishWriting(func() error { return nil }))
	tocPath := filepath.Join(db1.Dir(), "toc")
	require.NoError(t, db1.Close())
	require.NoError(t, db2.Close())

	live, err := toc.Live(tocPath)
	require.NoError(t, err)
	keys := []string{live[0].Key, live[1].Key}
	assert.ElementsMatch(t, []string{"type=an,levtype=sfc", "type=fc,levtype=pl"}, keys)
}

func TestOpenWriteCopiesMasterSchemaOnce(t *testing.T) {
	root := t.TempDir()
	schemaFile := filepath.Join(t.TempDir(), "schema")
	require.NoError(t, os.WriteFile(schemaFile, []byte("[ class=od [ type [ step ] ] ]"), 0o644))

	cfg := fdbconfig.Default()
	cfg.Roots = []fdbconfig.RootSpec{{Path: root, Visit: true}}
	cfg.SchemaFile = schemaFile

	mgr := NewManager(cfg, "toc")
	db, err := mgr.Open(fdbkey.FromPairs("class", "od", "stream", "oper"), ModeWrite)
	require.NoError(t, err)

	copied, err := os.ReadFile(db.SchemaPath())
	require.NoError(t, err)
	original, err := os.ReadFile(schemaFile)
	require.NoError(t, err)
	assert.Equal(t, original, copied)

	require.NoError(t, mgr.CloseAll())
}

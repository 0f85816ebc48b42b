package archiver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmwf/fdb-go/pkg/database"
	"github.com/ecmwf/fdb-go/pkg/fdbconfig"
	"github.com/ecmwf/fdb-go/pkg/fdbkey"
	"github.com/ecmwf/fdb-go/pkg/ferrors"
	"github.com/ecmwf/fdb-go/pkg/schema"
)

const testArchiverSchema = `
declare step as Step;
declare param as Param;

[ class=od, stream=oper, expver
    [ type, levtype
        [ step, param ]
    ]
]
`

func newTestArchiver(t *testing.T) (*Archiver, *database.Manager) {
	t.Helper()
	s, err := schema.Parse(testArchiverSchema)
	require.NoError(t, err)

	cfg := fdbconfig.Default()
	cfg.Roots = []fdbconfig.RootSpec{{Path: t.TempDir(), Visit: true}}
	cfg.MaxNbDBsOpen = 4

	mgr := database.NewManager(cfg, "toc")
	return New(s, mgr, cfg), mgr
}

func testKey() *fdbkey.Key {
	return fdbkey.FromPairs(
		"class", "od",
		"stream", "oper",
		"expver", "0001",
		"type", "an",
		"levtype", "sfc",
		"step", "0",
		"param", "167",
	)
}

func TestArchiveWritesRetrievableField(t *testing.T) {
	a, _ := newTestArchiver(t)
	payload := []byte("grib-bytes-stand-in")
	require.NoError(t, a.Archive(testKey(), payload))
	require.NoError(t, a.Flush())
}

func TestArchiveRejectsIncompleteKey(t *testing.T) {
	a, _ := newTestArchiver(t)
	incomplete := fdbkey.FromPairs("class", "od", "stream", "oper")
	err := a.Archive(incomplete, []byte("x"))
	assert.Error(t, err)
}

func TestArchiveReusesSessionForSameDatabase(t *testing.T) {
	a, _ := newTestArchiver(t)
	require.NoError(t, a.Archive(testKey(), []byte("a")))

	k2 := testKey()
	k2.Set("step", "6")
	require.NoError(t, a.Archive(k2, []byte("b")))

	assert.Equal(t, 1, a.lru.Len())
	require.NoError(t, a.Flush())
}

func TestArchiveRejectsEmptyValueWhenCheckingMissingKeys(t *testing.T) {
	a, _ := newTestArchiver(t)
	key := testKey()
	key.Set("param", "")
	err := a.Archive(key, []byte("x"))
	require.Error(t, err)
	var keyErr *ferrors.KeyError
	assert.ErrorAs(t, err, &keyErr)
}

func TestArchiveAsyncWriteIsDurableAfterFlush(t *testing.T) {
	s, err := schema.Parse(testArchiverSchema)
	require.NoError(t, err)

	root := t.TempDir()
	cfg := fdbconfig.Default()
	cfg.Roots = []fdbconfig.RootSpec{{Path: root, Visit: true}}
	cfg.AsyncWrite = true

	mgr := database.NewManager(cfg, "toc")
	a := New(s, mgr, cfg)

	payload := []byte("buffered-field-bytes")
	require.NoError(t, a.Archive(testKey(), payload))
	require.NoError(t, a.Flush())

	var dataFiles []string
	require.NoError(t, filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() && filepath.Ext(path) == ".data" {
			dataFiles = append(dataFiles, path)
		}
		return nil
	}))
	require.Len(t, dataFiles, 1)
	written, err := os.ReadFile(dataFiles[0])
	require.NoError(t, err)
	assert.Equal(t, payload, written[:len(payload)])
}

func TestArchiveRejectsWriteAfterMasterSchemaDrifts(t *testing.T) {
	schemaFile := filepath.Join(t.TempDir(), "schema")
	require.NoError(t, os.WriteFile(schemaFile, []byte(testArchiverSchema), 0o644))

	s, err := schema.Load(schemaFile)
	require.NoError(t, err)

	cfg := fdbconfig.Default()
	cfg.Roots = []fdbconfig.RootSpec{{Path: t.TempDir(), Visit: true}}
	cfg.SchemaFile = schemaFile
	mgr := database.NewManager(cfg, "toc")
	a := New(s, mgr, cfg)

	require.NoError(t, a.Archive(testKey(), []byte("first")))
	require.NoError(t, a.Flush())

	// The master schema evolves after this database was created; its own
	// copy on disk is now stale relative to the in-memory schema driving
	// this archiver.
	require.NoError(t, os.WriteFile(schemaFile, []byte(testArchiverSchema+"\n[ class=rd [ type [ step ] ] ]"), 0o644))
	s2, err := schema.Load(schemaFile)
	require.NoError(t, err)
	a2 := New(s2, mgr, cfg)

	err = a2.Archive(testKey(), []byte("second"))
	require.Error(t, err)
	var schemaErr *ferrors.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

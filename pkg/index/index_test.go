package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmwf/fdb-go/pkg/ferrors"
)

func openTestIndex(t *testing.T, checkDoubleInsert bool) *Index {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "test.idx"), checkDoubleInsert)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestPutGetRoundTrip(t *testing.T) {
	idx := openTestIndex(t, true)
	ref := FieldRef{PathID: 3, Offset: 128, Length: 64}
	require.NoError(t, idx.Put("step=0,param=167", ref))

	got, found, err := idx.Get("step=0,param=167")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, ref, got)
}

func TestPutRejectsDoubleInsertWhenEnabled(t *testing.T) {
	idx := openTestIndex(t, true)
	require.NoError(t, idx.Put("k", FieldRef{Offset: 0}))
	err := idx.Put("k", FieldRef{Offset: 1})
	var dup *ferrors.DoubleInsert
	assert.ErrorAs(t, err, &dup)
}

func TestPutOverwritesWhenDoubleInsertCheckDisabled(t *testing.T) {
	idx := openTestIndex(t, false)
	require.NoError(t, idx.Put("k", FieldRef{Offset: 0}))
	require.NoError(t, idx.Put("k", FieldRef{Offset: 99}))

	got, found, err := idx.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(99), got.Offset)
}

func TestInternPathDeduplicates(t *testing.T) {
	idx := openTestIndex(t, true)
	id1, err := idx.InternPath("/data/20260101/a.data")
	require.NoError(t, err)
	id2, err := idx.InternPath("/data/20260101/a.data")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	id3, err := idx.InternPath("/data/20260101/b.data")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)

	resolved, err := idx.PathFor(id3)
	require.NoError(t, err)
	assert.Equal(t, "/data/20260101/b.data", resolved)
}

func TestAxisPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.idx")

	idx, err := Open(path, true)
	require.NoError(t, err)
	require.NoError(t, idx.RecordAxisValue("step", "0"))
	require.NoError(t, idx.RecordAxisValue("step", "6"))
	require.NoError(t, idx.Close())

	reopened, err := Open(path, true)
	require.NoError(t, err)
	defer reopened.Close()

	axis := reopened.Axis("step")
	assert.True(t, axis.Has("0"))
	assert.True(t, axis.Has("6"))
	assert.ElementsMatch(t, []string{"0", "6"}, axis.Values())
}

func TestRangeVisitsInKeyOrder(t *testing.T) {
	idx := openTestIndex(t, true)
	require.NoError(t, idx.Put("b", FieldRef{Offset: 2}))
	require.NoError(t, idx.Put("a", FieldRef{Offset: 1}))

	var seen []string
	require.NoError(t, idx.Range(func(datumKey string, ref FieldRef) bool {
		seen = append(seen, datumKey)
		return true
	}))
	assert.Equal(t, []string{"a", "b"}, seen)
}

package toc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toc")
	w, err := OpenWriter(path, 128, "1.0.0", 1000)
	require.NoError(t, err)
	require.NoError(t, w.Append(TagIndex, IndexPayload{Key: "type=an", IndexPath: "a.idx"}))
	require.NoError(t, w.Close())

	records, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, records, 2) // TOC_INIT + TOC_INDEX

	assert.Equal(t, TagInit, records[0].Header.Tag)
	assert.EqualValues(t, 1000, records[0].Header.UID)
	assert.NotZero(t, records[0].Header.PID)
	assert.NotZero(t, records[0].Header.Timestamp)
	decoded, err := Decode(records[1])
	require.NoError(t, err)
	idxPayload, ok := decoded.(IndexPayload)
	require.True(t, ok)
	assert.Equal(t, "a.idx", idxPayload.IndexPath)
}

func TestSecondOpenerAppendsRatherThanReinitialising(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toc")
	w1, err := OpenWriter(path, 128, "1.0.0", 1000)
	require.NoError(t, err)
	require.NoError(t, w1.Close())

	w2, err := OpenWriter(path, 128, "1.0.0", 1000)
	require.NoError(t, err)
	require.NoError(t, w2.Close())

	records, err := ReadAll(path)
	require.NoError(t, err)
	assert.Len(t, records, 1) // only the first opener's TOC_INIT
}

func TestLiveAppliesClearAndReversesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toc")
	w, err := OpenWriter(path, 128, "1.0.0", 1000)
	require.NoError(t, err)
	require.NoError(t, w.Append(TagIndex, IndexPayload{Key: "k1", IndexPath: "1.idx"}))
	require.NoError(t, w.Append(TagIndex, IndexPayload{Key: "k2", IndexPath: "2.idx"}))
	require.NoError(t, w.Append(TagClear, ClearPayload{IndexPath: "1.idx"}))
	require.NoError(t, w.Append(TagIndex, IndexPayload{Key: "k3", IndexPath: "3.idx"}))
	require.NoError(t, w.Close())

	live, err := Live(path)
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.Equal(t, "3.idx", live[0].IndexPath)
	assert.Equal(t, "2.idx", live[1].IndexPath)
}

func TestLiveEmptiedByWipe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toc")
	w, err := OpenWriter(path, 128, "1.0.0", 1000)
	require.NoError(t, err)
	require.NoError(t, w.Append(TagIndex, IndexPayload{Key: "k1", IndexPath: "1.idx"}))
	require.NoError(t, w.Append(TagWipe, WipePayload{}))
	require.NoError(t, w.Append(TagIndex, IndexPayload{Key: "k2", IndexPath: "2.idx"}))
	require.NoError(t, w.Close())

	live, err := Live(path)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "2.idx", live[0].IndexPath)
}

func TestSubTocIsFollowedDuringLiveScan(t *testing.T) {
	dir := t.TempDir()
	parentPath := filepath.Join(dir, "toc")
	parent, err := OpenWriter(parentPath, 128, "1.0.0", 1000)
	require.NoError(t, err)

	sub, name, err := CreateSubToc(dir, 128, "1.0.0", 1000)
	require.NoError(t, err)
	require.NoError(t, sub.Append(TagIndex, IndexPayload{Key: "sub", IndexPath: "sub.idx"}))
	require.NoError(t, sub.Close())

	subRecords, err := ReadAll(filepath.Join(dir, name))
	require.NoError(t, err)
	subInit, err := Decode(subRecords[0])
	require.NoError(t, err)
	assert.True(t, subInit.(InitPayload).IsSubToc)

	require.NoError(t, LinkSubToc(parent, name))
	require.NoError(t, parent.Append(TagIndex, IndexPayload{Key: "top", IndexPath: "top.idx"}))
	require.NoError(t, parent.Close())

	live, err := Live(parentPath)
	require.NoError(t, err)
	paths := []string{live[0].IndexPath, live[1].IndexPath}
	assert.ElementsMatch(t, []string{"sub.idx", "top.idx"}, paths)
}

func TestClassifyMarksReachableDuplicateAndOrphan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toc")
	w, err := OpenWriter(path, 128, "1.0.0", 1000)
	require.NoError(t, err)
	require.NoError(t, w.Append(TagIndex, IndexPayload{Key: "k1", IndexPath: "1.idx"}))
	require.NoError(t, w.Append(TagClear, ClearPayload{IndexPath: "1.idx"}))
	require.NoError(t, w.Append(TagIndex, IndexPayload{Key: "k2", IndexPath: "2.idx"}))
	require.NoError(t, w.Close())

	report, err := Classify(path, []string{"1.idx", "2.idx", "stray.idx"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2.idx"}, report.Reachable)
	assert.Equal(t, []string{"1.idx"}, report.Duplicate)
	assert.Equal(t, []string{"stray.idx"}, report.Orphan)
}

func TestExecuteListsWithoutRemovingThenReclaimsWhenDoit(t *testing.T) {
	dir := t.TempDir()
	dupPath := filepath.Join(dir, "1.idx")
	orphanPath := filepath.Join(dir, "stray.idx")
	require.NoError(t, os.WriteFile(dupPath, []byte("dddd"), 0o644))
	require.NoError(t, os.WriteFile(orphanPath, []byte("oo"), 0o644))

	report := &PurgeReport{Duplicate: []string{"1.idx"}, Orphan: []string{"stray.idx"}}

	listed, err := Execute(dir, report, false)
	require.NoError(t, err)
	assert.EqualValues(t, 6, listed)
	assert.FileExists(t, dupPath)
	assert.FileExists(t, orphanPath)

	reclaimed, err := Execute(dir, report, true)
	require.NoError(t, err)
	assert.EqualValues(t, 6, reclaimed)
	assert.NoFileExists(t, dupPath)
	assert.NoFileExists(t, orphanPath)

	// Re-running against the now-missing files is a no-op, not an error.
	again, err := Execute(dir, report, true)
	require.NoError(t, err)
	assert.EqualValues(t, 0, again)
}

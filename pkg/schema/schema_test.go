package schema

import (
	"testing"

	"github.com/ecmwf/fdb-go/pkg/fdbkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingVisitor struct {
	databases []string
	indexes   []string
	datums    []string
	veto      map[string]bool
}

func (v *recordingVisitor) SelectDatabase(levelKey, fullKey *fdbkey.Key) (bool, error) {
	v.databases = append(v.databases, levelKey.String())
	return !v.veto["database"], nil
}

func (v *recordingVisitor) SelectIndex(levelKey, fullKey *fdbkey.Key) (bool, error) {
	v.indexes = append(v.indexes, levelKey.String())
	return !v.veto["index"], nil
}

func (v *recordingVisitor) SelectDatum(levelKey, fullKey *fdbkey.Key) (bool, error) {
	v.datums = append(v.datums, fullKey.String())
	return true, nil
}

func testSchemaObj(t *testing.T) *Schema {
	t.Helper()
	s, err := Parse(testSchema)
	require.NoError(t, err)
	return s
}

func TestExpandWriteVisitsAllThreeLevels(t *testing.T) {
	s := testSchemaObj(t)
	tk := fdbkey.NewTypedKey(s.Root)
	tk.Set("class", "od")
	tk.Set("stream", "oper")
	tk.Set("expver", "0001")
	tk.Set("type", "an")
	tk.Set("levtype", "sfc")
	tk.Set("step", "0")
	tk.Set("param", "167")

	v := &recordingVisitor{veto: map[string]bool{}}
	err := s.ExpandWrite(tk, v, false)
	require.NoError(t, err)
	assert.Len(t, v.databases, 1)
	assert.Len(t, v.indexes, 1)
	assert.Len(t, v.datums, 1)
}

func TestExpandWriteFailsWhenValueClauseDoesNotMatch(t *testing.T) {
	s := testSchemaObj(t)
	tk := fdbkey.NewTypedKey(s.Root)
	tk.Set("class", "rd") // rule requires class=od
	tk.Set("stream", "oper")
	tk.Set("expver", "0001")
	tk.Set("type", "an")
	tk.Set("levtype", "sfc")
	tk.Set("step", "0")
	tk.Set("param", "167")

	v := &recordingVisitor{veto: map[string]bool{}}
	err := s.ExpandWrite(tk, v, false)
	assert.Error(t, err)
}

func TestExpandWriteVetoStopsDescent(t *testing.T) {
	s := testSchemaObj(t)
	tk := fdbkey.NewTypedKey(s.Root)
	tk.Set("class", "od")
	tk.Set("stream", "oper")
	tk.Set("expver", "0001")
	tk.Set("type", "an")
	tk.Set("levtype", "sfc")
	tk.Set("step", "0")
	tk.Set("param", "167")

	v := &recordingVisitor{veto: map[string]bool{"database": true}}
	err := s.ExpandWrite(tk, v, false)
	assert.Error(t, err)
	assert.Len(t, v.databases, 1)
	assert.Empty(t, v.indexes)
}

func TestExpandWriteMatchFirstStopsAtFirstDatum(t *testing.T) {
	overlapping := `
[ class=od [ type [ step ] ] ]
[ class [ type [ step ] ] ]
`
	s, err := Parse(overlapping)
	require.NoError(t, err)

	tk := fdbkey.NewTypedKey(s.Root)
	tk.Set("class", "od")
	tk.Set("type", "an")
	tk.Set("step", "0")

	v := &recordingVisitor{veto: map[string]bool{}}
	require.NoError(t, s.ExpandWrite(tk, v, true))
	assert.Len(t, v.datums, 1)

	v = &recordingVisitor{veto: map[string]bool{}}
	err = s.ExpandWrite(tk, v, false)
	assert.Error(t, err, "both rules match, so the exhaustive walk must flag the ambiguity")
}

func TestExpandReadFansOutOverMultipleValues(t *testing.T) {
	s := testSchemaObj(t)
	req, err := ParseRequest("retrieve,class=od,stream=oper,expver=0001,type=an,levtype=sfc,step=0,param=167/168")
	require.NoError(t, err)

	v := &recordingVisitor{veto: map[string]bool{}}
	err = s.ExpandRead(req, v, nil)
	require.NoError(t, err)
	assert.Len(t, v.datums, 2)
}

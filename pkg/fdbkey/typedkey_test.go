package fdbkey

import (
	"testing"

	"github.com/ecmwf/fdb-go/pkg/fdbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *fdbtype.Registry {
	t.Helper()
	r := fdbtype.NewRegistry(nil)
	require.NoError(t, r.Declare("step", "Step", ""))
	require.NoError(t, r.Declare("param", "Param", ""))
	return r
}

func TestTypedKeyCanonicalisationIsIdempotent(t *testing.T) {
	r := newTestRegistry(t)
	tk := NewTypedKey(r)
	tk.Set("step", "60m")

	once, err := tk.Canonical()
	require.NoError(t, err)
	twice, err := once.Canonical()
	require.NoError(t, err)

	assert.True(t, once.Key.Equal(twice.Key))
	v, _ := once.Get("step")
	assert.Equal(t, "1", v)
}

func TestTypedKeyPushRejectsInvalidValue(t *testing.T) {
	r := newTestRegistry(t)
	tk := NewTypedKey(r)
	err := tk.Push("step", "not-a-step")
	assert.Error(t, err)
	assert.Equal(t, 0, tk.Len())
}

func TestTypedKeyMatchUsesTypeEquality(t *testing.T) {
	r := newTestRegistry(t)
	tk := NewTypedKey(r)
	tk.Set("step", "60m")

	partial := FromPairs("step", "1")
	assert.True(t, tk.Match(partial))
}

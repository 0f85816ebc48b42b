package fdbkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyStringRoundTrip(t *testing.T) {
	k := FromPairs("class", "od", "stream", "oper", "date", "20210427")
	s := k.String()

	parsed, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, s, parsed.String())
	assert.True(t, k.Equal(parsed))
}

func TestSetPreservesPositionOnDuplicateName(t *testing.T) {
	k := FromPairs("class", "od", "stream", "oper")
	k.Set("class", "rd")
	assert.Equal(t, []string{"class", "stream"}, k.Names())
	v, ok := k.Get("class")
	require.True(t, ok)
	assert.Equal(t, "rd", v)
}

func TestPopRequiresLIFOOrder(t *testing.T) {
	k := FromPairs("class", "od", "stream", "oper")

	assert.Panics(t, func() { k.Pop("class") })

	k.Pop("stream")
	k.Pop("class")
	assert.Equal(t, 0, k.Len())
}

func TestValuesToStringIsColonJoined(t *testing.T) {
	k := FromPairs("class", "od", "stream", "oper", "step", "6")
	assert.Equal(t, "od:oper:6", k.ValuesToString())
}

func TestMatchIsPartialPairwise(t *testing.T) {
	full := FromPairs("class", "od", "stream", "oper", "date", "20210427")
	partial := FromPairs("class", "od", "date", "20210427")
	assert.True(t, full.Match(partial))

	mismatch := FromPairs("class", "rd")
	assert.False(t, full.Match(mismatch))
}

func TestSubkeyProjectsInGivenOrder(t *testing.T) {
	full := FromPairs("class", "od", "stream", "oper", "date", "20210427")
	sub := full.Subkey([]string{"date", "class"})
	assert.Equal(t, []string{"date", "class"}, sub.Names())
	assert.Equal(t, "20210427:od", sub.ValuesToString())
}

func TestCloneIsIndependent(t *testing.T) {
	k := FromPairs("class", "od")
	c := k.Clone()
	c.Set("class", "rd")
	v, _ := k.Get("class")
	assert.Equal(t, "od", v)
}

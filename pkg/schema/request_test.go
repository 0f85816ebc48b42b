package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestSplitsMultiValueClauses(t *testing.T) {
	req, err := ParseRequest("retrieve, class=od, param=167/168/169")
	require.NoError(t, err)
	assert.Equal(t, "retrieve", req.Verb)
	assert.Equal(t, []string{"od"}, req.Values["class"])
	assert.Equal(t, []string{"167", "168", "169"}, req.Values["param"])
	assert.Equal(t, []string{"class", "param"}, req.Keywords())
}

func TestParseRequestDefaultsVerbWhenOmitted(t *testing.T) {
	req, err := ParseRequest("class=od,stream=oper")
	require.NoError(t, err)
	assert.Equal(t, "retrieve", req.Verb)
	assert.Equal(t, []string{"od"}, req.Values["class"])
	assert.Equal(t, []string{"oper"}, req.Values["stream"])
}

func TestParseRequestAcceptsSpaceSeparatedVerb(t *testing.T) {
	req, err := ParseRequest("archive class=od,stream=oper")
	require.NoError(t, err)
	assert.Equal(t, "archive", req.Verb)
	assert.Equal(t, []string{"od"}, req.Values["class"])
	assert.Equal(t, []string{"oper"}, req.Values["stream"])
}

func TestParseRequestRejectsEmptyString(t *testing.T) {
	_, err := ParseRequest("")
	assert.Error(t, err)
}

func TestParseRequestRejectsMalformedClause(t *testing.T) {
	_, err := ParseRequest("retrieve,class")
	assert.Error(t, err)
}

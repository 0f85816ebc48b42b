package ferrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaErrorIsRecoverableViaErrorsAs(t *testing.T) {
	err := fmt.Errorf("expanding request: %w", &SchemaError{Reason: "no matching rule", Key: "class=od"})

	var schemaErr *SchemaError
	assert.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "class=od", schemaErr.Key)
}

func TestIOErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := &IOError{Op: "write", Path: "/data/x.data", Err: cause}
	assert.ErrorIs(t, err, cause)
}

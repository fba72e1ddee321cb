package sl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErr(t *testing.T) {
	attr := Err(errors.New("db error"))
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "db error", attr.Value.String())
}

func TestErr_Nil(t *testing.T) {
	attr := Err(nil)
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "", attr.Value.String())
}

package reference

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	ref := New()
	assert.True(t, strings.HasPrefix(ref, "PAY-"))

	seen := make(map[string]struct{})
	for range 100 {
		r := New()
		_, dup := seen[r]
		assert.False(t, dup, "duplicate reference %s", r)
		seen[r] = struct{}{}
	}
}

package uid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorIsMonotonic(t *testing.T) {
	g, err := New(1)
	require.NoError(t, err)

	prev := g.Next()
	for range 100 {
		next := g.Next()
		assert.Greater(t, next, prev)
		prev = next
	}
	assert.NotEmpty(t, g.String())
}

func TestNewRejectsLargeMachineID(t *testing.T) {
	_, err := New(1 << 10)
	assert.Error(t, err)
	assert.Panics(t, func() { MustNew(-1) })
}

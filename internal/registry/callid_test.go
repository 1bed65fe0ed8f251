package registry

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()

	assert.NotEqual(t, a, b)
	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("c1", "c2")
	assert.Equal(t, "c1", g.Generate())
	assert.Equal(t, "c2", g.Generate())
	assert.Equal(t, "c2", g.Generate(), "last id repeats")

	assert.Equal(t, "call-fixed", NewFixedGenerator().Generate())
}

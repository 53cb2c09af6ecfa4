package blueprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate(t *testing.T) {
	g := NewGate()

	ok, err := g.Authorize("anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, ok)
	assert.False(t, g.Configured())

	g.Configure("lorem-ipsum")
	require.True(t, g.Configured())

	ok, err = g.Authorize("lorem-ipsum")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Authorize("wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	// reconfiguring replaces the passphrase
	g.Configure("other")
	ok, _ = g.Authorize("lorem-ipsum")
	assert.False(t, ok)
	ok, _ = g.Authorize("other")
	assert.True(t, ok)

	assert.ErrorIs(t, g.require("nope"), ErrNotAuthorized)
	assert.NoError(t, g.require("other"))
}

package demo

import (
	"bytes"
	"context"
	"testing"

	"github.com/ValentinKolb/kvsub/lib/blueprint"
	"github.com/ValentinKolb/kvsub/lib/cache"
	"github.com/ValentinKolb/kvsub/lib/db"
	"github.com/ValentinKolb/kvsub/lib/db/engines/maple"
	"github.com/ValentinKolb/kvsub/lib/store/lstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	s := lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
	c, err := cache.New("my_cache", s, blueprint.NewFilePersister(t.TempDir(), "my_cache"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), &out, c))

	transcript := out.String()
	assert.Contains(t, transcript, "Does users exist?\nfalse\n")
	assert.NotContains(t, transcript, "Deleting users")
	assert.Contains(t, transcript, "Set one user\ntrue\n"+`[{"name":"Alex","status":true,"uid":800099}]`)
	assert.Contains(t, transcript, "Get one user\n"+`{"name":"Becky","status":false,"uid":800100}`)
	assert.Contains(t, transcript, "Get a user that does not exist\nnull\n")
	assert.Contains(t, transcript, "Get users of which only some exist\n"+`[null,{"name":"Cockney","status":true,"uid":800209}]`)
	assert.Contains(t, transcript, "Set a user with a wrong type\nfalse\n")

	keys, err := s.Scan("my_cache/users/")
	require.NoError(t, err)
	assert.Empty(t, keys, "the walk-through ends with an empty sub")

	// a second run finds the sub and recreates it
	out.Reset()
	require.NoError(t, Run(context.Background(), &out, c))
	assert.Contains(t, out.String(), "Does users exist?\ntrue\n\nDeleting users\ntrue\n")
}

package sub

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/ValentinKolb/kvsub/lib/blueprint"
	"github.com/ValentinKolb/kvsub/lib/cache"
	"github.com/ValentinKolb/kvsub/lib/db"
	"github.com/ValentinKolb/kvsub/lib/db/engines/maple"
	"github.com/ValentinKolb/kvsub/lib/schema"
	"github.com/ValentinKolb/kvsub/lib/store/lstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchema(t *testing.T) {
	s, err := parseSchema([]string{"uid=INTEGER NOT NULL", "name = TEXT", "status=BOOLEAN"})
	require.NoError(t, err)

	cols := s.Columns()
	require.Len(t, cols, 3)
	assert.Equal(t, "uid", s.KeyColumn().Name)
	assert.Equal(t, schema.KindInteger, cols[0].Kind)
	assert.True(t, cols[0].NotNull)
	assert.Equal(t, "name", cols[1].Name)
	assert.Equal(t, "TEXT", cols[1].Type)

	_, err = parseSchema([]string{"uid"})
	assert.Error(t, err)
	_, err = parseSchema([]string{"=TEXT"})
	assert.Error(t, err)
}

func TestParseRecord(t *testing.T) {
	r, err := parseRecord([]byte(`{"name":"Ada","age":36,"score":1.5}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("36"), r["age"])
	assert.Equal(t, json.Number("1.5"), r["score"])
	assert.Equal(t, "Ada", r["name"])

	_, err = parseRecord([]byte(`null`))
	assert.Error(t, err)
	_, err = parseRecord([]byte(`[1]`))
	assert.Error(t, err)
}

func TestParsePairs(t *testing.T) {
	pairs, err := parsePairs([]byte(`{"3":{"name":"Eve"},"2":{"name":"Bob"}}`))
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "2", pairs[0].Key)
	assert.Equal(t, "Bob", pairs[0].Value["name"])
	assert.Equal(t, "3", pairs[1].Key)

	_, err = parsePairs([]byte(`{"1":"not an object"}`))
	assert.Error(t, err)
}

func TestUnsetKeys(t *testing.T) {
	ctx := context.Background()
	st := lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
	c, err := cache.New("app", st, blueprint.NewFilePersister(t.TempDir(), "app"))
	require.NoError(t, err)
	c.SetupPassphrase("secret")

	ok, err := c.CreateSub("users", schema.MustNew(schema.Col("uid", "INTEGER"), schema.Col("name", "TEXT")), "secret")
	require.NoError(t, err)
	require.True(t, ok)
	users, err := c.Sub("users")
	require.NoError(t, err)
	for _, k := range []int{1, 2, 3} {
		ok, err := users.Set(ctx, k, cache.Record{"name": "Ada"})
		require.NoError(t, err)
		require.True(t, ok)
	}

	var out bytes.Buffer
	require.NoError(t, unsetKeys(ctx, &out, users, []string{"999"}))
	assert.Equal(t, "nothing to unset for key 999\n", out.String())

	out.Reset()
	require.NoError(t, unsetKeys(ctx, &out, users, []string{"1"}))
	assert.Equal(t, "unset successfully\n", out.String())

	out.Reset()
	require.NoError(t, unsetKeys(ctx, &out, users, []string{"2", "3", "999"}))
	assert.Equal(t, "unset successfully\n", out.String())

	keys, err := users.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

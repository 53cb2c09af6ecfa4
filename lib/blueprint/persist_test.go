package blueprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/kvsub/lib/db"
	"github.com/ValentinKolb/kvsub/lib/db/engines/maple"
	"github.com/ValentinKolb/kvsub/lib/store/lstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPersisterTests(t *testing.T, p Persister) {
	t.Helper()

	_, err := p.Read()
	assert.ErrorIs(t, err, ErrNoBlueprint)

	require.NoError(t, p.Write([]byte(`{"users":{"uid":"INTEGER"}}`)))
	data, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, `{"users":{"uid":"INTEGER"}}`, string(data))

	require.NoError(t, p.Write([]byte(`{}`)))
	data, err = p.Read()
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))

	// a registry on top of the persister survives a restart
	g := NewGate()
	g.Configure(pass)
	r := NewRegistry(p, g)
	ok, err := r.Create("users", usersSchema(), pass)
	require.NoError(t, err)
	require.True(t, ok)

	restarted := NewRegistry(p, nil)
	require.True(t, restarted.Load())
	assert.True(t, restarted.Exists("users"))
}

func TestFilePersister(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	p := NewFilePersister(dir, "my_cache")
	assert.Equal(t, filepath.Join(dir, "my_cache_blueprint.json"), p.Name())

	runPersisterTests(t, p)

	// no temporary files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStorePersister(t *testing.T) {
	s := lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
	p := NewStorePersister(s, "my_cache")

	runPersisterTests(t, p)

	ok, err := s.Has("my_cache_blueprint")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLitePersister(t *testing.T) {
	p, err := NewSQLitePersister(filepath.Join(t.TempDir(), "blueprints.db"), "my_cache")
	require.NoError(t, err)
	defer p.Close()

	runPersisterTests(t, p)
}

func TestSQLitePersisterInMemory(t *testing.T) {
	p, err := NewSQLitePersister(":memory:", "my_cache")
	require.NoError(t, err)
	defer p.Close()

	runPersisterTests(t, p)
}

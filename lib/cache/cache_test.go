package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/ValentinKolb/kvsub/lib/blueprint"
	"github.com/ValentinKolb/kvsub/lib/schema"
	storetesting "github.com/ValentinKolb/kvsub/lib/store/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenPersister never has a blueprint and fails every write
type brokenPersister struct{}

func (brokenPersister) Name() string          { return "broken" }
func (brokenPersister) Read() ([]byte, error) { return nil, blueprint.ErrNoBlueprint }
func (brokenPersister) Write([]byte) error    { return errors.New("read-only file system") }

func TestNew(t *testing.T) {
	_, err := New("a/b", newStore(), blueprint.NewFilePersister(t.TempDir(), "a"))
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = New("", newStore(), blueprint.NewFilePersister(t.TempDir(), ""))
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = New("app", nil, blueprint.NewFilePersister(t.TempDir(), "app"))
	assert.Error(t, err)

	c, err := New("app", newStore(), blueprint.NewFilePersister(t.TempDir(), "app"))
	require.NoError(t, err)
	assert.Equal(t, "app", c.Name())
	assert.Empty(t, c.Subs())
}

func TestAdmin(t *testing.T) {
	c, err := New("app", newStore(), blueprint.NewFilePersister(t.TempDir(), "app"))
	require.NoError(t, err)

	_, err = c.IsAdmin(pass)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = c.CreateSub("users", usersSchema(), pass)
	assert.ErrorIs(t, err, ErrNotConfigured)

	c.SetupPassphrase(pass)
	ok, err := c.IsAdmin(pass)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsAdmin("guess")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.CreateSub("users", usersSchema(), "guess")
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.False(t, c.SubExists("users"))
}

func TestSchemaAdmission(t *testing.T) {
	c := newCache(t, newStore())

	for _, typ := range []string{"REAL", "BOOLEAN", "real not null", "Boolean"} {
		s, err := schema.New(schema.Col("k", typ), schema.Col("v", "TEXT"))
		if err == nil {
			_, err = c.CreateSub("bad", s, pass)
		}
		assert.ErrorIs(t, err, ErrInvalidSchema, typ)
	}
	assert.Empty(t, c.Subs())
}

func TestNoDoubleCreate(t *testing.T) {
	c := newCache(t, newStore())

	ok, err := c.CreateSub("users", usersSchema(), pass)
	require.NoError(t, err)
	require.True(t, ok)

	other := schema.MustNew(schema.Col("name", "TEXT"))
	ok, err = c.CreateSub("users", other, pass)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.False(t, ok)

	users, err := c.Sub("users")
	require.NoError(t, err)
	assert.True(t, users.Schema().Equal(usersSchema()))
}

func TestCreateDeleteSymmetry(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	c := newCache(t, s)

	// records of another cache sharing the store
	require.NoError(t, s.Set("other/users/1", []byte(`{}`)))
	keysBefore, err := s.Scan("")
	require.NoError(t, err)
	subsBefore := c.Subs()

	ok, err := c.CreateSub("users", usersSchema(), pass)
	require.NoError(t, err)
	require.True(t, ok)
	users, err := c.Sub("users")
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		ok, err := users.Set(ctx, i, Record{"name": "u", "status": true})
		require.NoError(t, err)
		require.True(t, ok)
	}

	_, err = c.DeleteSub("users", "guess")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	ok, err = c.DeleteSub("users", pass)
	require.NoError(t, err)
	assert.True(t, ok)

	keysAfter, err := s.Scan("")
	require.NoError(t, err)
	assert.Equal(t, keysBefore, keysAfter)
	assert.Equal(t, subsBefore, c.Subs())
	assert.False(t, c.SubExists("users"))

	_, err = c.Sub("users")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.DeleteSub("users", pass)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSubRollback(t *testing.T) {
	ctx := context.Background()
	faulty := storetesting.NewFaultyStore(newStore())
	c, users := newUsers(t, faulty)

	for i := 1; i <= 3; i++ {
		ok, err := users.Set(ctx, i, Record{"name": "u", "status": true})
		require.NoError(t, err)
		require.True(t, ok)
	}
	before, err := users.GetAll(ctx)
	require.NoError(t, err)

	faulty.FailAfter(storetesting.OpDelete, 1)
	ok, err := c.DeleteSub("users", pass)
	require.NoError(t, err)
	assert.False(t, ok)
	faulty.Heal(storetesting.OpDelete)

	assert.True(t, c.SubExists("users"))
	after, err := users.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPersistenceFailure(t *testing.T) {
	c, err := New("app", newStore(), brokenPersister{})
	require.NoError(t, err)
	c.SetupPassphrase(pass)

	ok, err := c.CreateSub("users", usersSchema(), pass)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, c.SubExists("users"))
	assert.False(t, c.SaveBlueprint())
	assert.False(t, c.LoadBlueprint())
}

func TestBlueprintSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := newStore()

	c, err := New("app", s, blueprint.NewFilePersister(dir, "app"))
	require.NoError(t, err)
	c.SetupPassphrase(pass)
	for _, name := range []string{"users", "admins"} {
		ok, err := c.CreateSub(name, usersSchema(), pass)
		require.NoError(t, err)
		require.True(t, ok)
	}
	users, err := c.Sub("users")
	require.NoError(t, err)
	ok, err := users.Set(ctx, 1, Record{"name": "Alex", "status": true})
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, c.SaveBlueprint())

	restarted, err := New("app", s, blueprint.NewFilePersister(dir, "app"))
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "admins"}, restarted.Subs())
	assert.True(t, restarted.LoadBlueprint())

	users, err = restarted.Sub("users")
	require.NoError(t, err)
	r, err := users.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alex", r["name"])
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	c, users := newUsers(t, newStore())

	_, err := users.Get(ctx, 1)
	require.NoError(t, err)
	_, err = users.Get(ctx, 2)
	require.NoError(t, err)
	_, err = users.Set(ctx, 1, Record{"name": "Alex", "status": true})
	require.NoError(t, err)

	text := metricsText(c)
	assert.Contains(t, text, `kvsub_sub_operations_total{op="get"} 2`)
	assert.Contains(t, text, `kvsub_sub_operations_total{op="set"} 1`)
	assert.Contains(t, text, `kvsub_blueprint_mutations_total{op="create_sub"} 1`)
	assert.Same(t, c.Metrics(), c.metrics.set)
}

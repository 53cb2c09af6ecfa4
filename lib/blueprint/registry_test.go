package blueprint

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ValentinKolb/kvsub/lib/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pass = "lorem-ipsum"

// memPersister keeps the document in memory and can be told to fail writes
type memPersister struct {
	mu        sync.Mutex
	data      []byte
	failWrite bool
	writes    int
}

func (m *memPersister) Name() string { return "memory" }

func (m *memPersister) Read() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, ErrNoBlueprint
	}
	return m.data, nil
}

func (m *memPersister) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.failWrite {
		return errors.New("disk full")
	}
	m.data = append([]byte(nil), data...)
	return nil
}

// mapPurger simulates stored records
type mapPurger struct {
	records   map[string][]byte
	failAfter int // purge fails after this many deletions (-1 never)
	restored  map[string][]byte
}

func newMapPurger(records map[string][]byte) *mapPurger {
	return &mapPurger{records: records, failAfter: -1}
}

func (p *mapPurger) PurgeRecords(sub string) (map[string][]byte, error) {
	captured := make(map[string][]byte)
	for k, v := range p.records {
		if !strings.HasPrefix(k, "app/"+sub+"/") {
			continue
		}
		if p.failAfter >= 0 && len(captured) == p.failAfter {
			return captured, errors.New("store down")
		}
		captured[k] = v
		delete(p.records, k)
	}
	return captured, nil
}

func (p *mapPurger) RestoreRecords(captured map[string][]byte) error {
	p.restored = captured
	for k, v := range captured {
		p.records[k] = v
	}
	return nil
}

func usersSchema() schema.Schema {
	return schema.MustNew(schema.Col("uid", "INTEGER"), schema.Col("name", "TEXT"), schema.Col("status", "BOOLEAN"))
}

func newRegistry(t *testing.T) (*Registry, *memPersister) {
	t.Helper()
	p := &memPersister{}
	g := NewGate()
	g.Configure(pass)
	return NewRegistry(p, g), p
}

func TestCreate(t *testing.T) {
	r, p := newRegistry(t)

	ok, err := r.Create("users", usersSchema(), pass)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, r.Exists("users"))
	assert.Equal(t, 1, p.writes)

	s, found := r.Schema("users")
	require.True(t, found)
	assert.Equal(t, "uid", s.KeyColumn().Name)

	// no double create
	ok, err = r.Create("users", usersSchema(), pass)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.False(t, ok)
	assert.Equal(t, 1, p.writes)
}

func TestCreateRejections(t *testing.T) {
	r, p := newRegistry(t)

	_, err := r.Create("users", usersSchema(), "wrong")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = r.Create("a/b", usersSchema(), pass)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = r.Create("", usersSchema(), pass)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = r.Create("empty", schema.Schema{}, pass)
	assert.ErrorIs(t, err, ErrInvalidSchema)

	unconfigured := NewRegistry(&memPersister{}, nil)
	_, err = unconfigured.Create("users", usersSchema(), pass)
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.Empty(t, r.Names())
	assert.Zero(t, p.writes)
}

func TestCreatePersistenceFailure(t *testing.T) {
	r, p := newRegistry(t)
	p.failWrite = true

	ok, err := r.Create("users", usersSchema(), pass)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, r.Exists("users"), "failed create must leave the registry unchanged")
}

func TestDelete(t *testing.T) {
	r, p := newRegistry(t)
	_, _ = r.Create("users", usersSchema(), pass)
	_, _ = r.Create("orders", schema.MustNew(schema.Col("id", "TEXT")), pass)

	purger := newMapPurger(map[string][]byte{
		"app/users/1":  []byte(`{"uid":1}`),
		"app/users/2":  []byte(`{"uid":2}`),
		"app/orders/1": []byte(`{"id":"1"}`),
	})

	ok, err := r.Delete("users", pass, purger)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, r.Exists("users"))
	assert.Equal(t, []string{"orders"}, r.Names())
	assert.Len(t, purger.records, 1, "only the orders record is left")

	// create after delete works again
	ok, err = r.Create("users", usersSchema(), pass)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"orders", "users"}, r.Names())
	assert.Equal(t, 4, p.writes)

	_, err = r.Delete("missing", pass, purger)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Delete("users", "wrong", purger)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestDeleteRollback(t *testing.T) {
	records := func() map[string][]byte {
		return map[string][]byte{
			"app/users/1": []byte(`{"uid":1}`),
			"app/users/2": []byte(`{"uid":2}`),
			"app/users/3": []byte(`{"uid":3}`),
		}
	}

	t.Run("PurgeFails", func(t *testing.T) {
		r, _ := newRegistry(t)
		_, _ = r.Create("users", usersSchema(), pass)

		purger := newMapPurger(records())
		purger.failAfter = 2

		ok, err := r.Delete("users", pass, purger)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, r.Exists("users"))
		assert.Len(t, purger.restored, 2)
		assert.Equal(t, records(), purger.records)
	})

	t.Run("PersistFails", func(t *testing.T) {
		r, p := newRegistry(t)
		_, _ = r.Create("users", usersSchema(), pass)
		p.failWrite = true

		purger := newMapPurger(records())

		ok, err := r.Delete("users", pass, purger)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, r.Exists("users"))
		assert.Len(t, purger.restored, 3)
		assert.Equal(t, records(), purger.records)
	})
}

func TestLoadSave(t *testing.T) {
	r, p := newRegistry(t)

	assert.False(t, r.Load(), "nothing persisted yet")

	_, _ = r.Create("users", usersSchema(), pass)
	_, _ = r.Create("orders", schema.MustNew(schema.Col("id", "TEXT NOT NULL")), pass)

	other := NewRegistry(p, nil)
	require.True(t, other.Load())
	assert.Equal(t, []string{"users", "orders"}, other.Names())

	s, ok := other.Schema("users")
	require.True(t, ok)
	assert.True(t, s.Equal(usersSchema()))

	assert.True(t, other.Save())
	p.failWrite = true
	assert.False(t, other.Save())

	p.data = []byte("not json")
	assert.False(t, other.Load())
	assert.True(t, other.Exists("users"), "a failed load keeps the current state")
}

func TestBlueprintEncoding(t *testing.T) {
	bp := Blueprint{}.
		With("users", usersSchema()).
		With("orders", schema.MustNew(schema.Col("id", "TEXT")))

	data, err := bp.Encode()
	require.NoError(t, err)

	expected := `{
    "users": {
        "uid": "INTEGER",
        "name": "TEXT",
        "status": "BOOLEAN"
    },
    "orders": {
        "id": "TEXT"
    }
}`
	assert.Equal(t, expected, string(data))

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "orders"}, decoded.Names())

	// With and Without never touch the receiver
	smaller := decoded.Without("users")
	assert.Equal(t, 2, decoded.Len())
	assert.Equal(t, 1, smaller.Len())
}

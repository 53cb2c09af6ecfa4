package cache

import (
	"testing"

	"github.com/ValentinKolb/kvsub/lib/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecordNumbers(t *testing.T) {
	r, err := decodeRecord([]byte(`{"a":1,"b":1.5,"c":[1,2.5],"d":{"e":3},"f":null,"g":true}`), schema.Schema{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), r["a"])
	assert.Equal(t, 1.5, r["b"])
	assert.Equal(t, []any{int64(1), 2.5}, r["c"])
	assert.Equal(t, map[string]any{"e": int64(3)}, r["d"])
	assert.Nil(t, r["f"])
	assert.Contains(t, r, "f")
	assert.Equal(t, true, r["g"])
}

func TestDecodeRecordRejectsNonObjects(t *testing.T) {
	_, err := decodeRecord([]byte(`[1,2]`), schema.Schema{})
	assert.Error(t, err)

	_, err = decodeRecord([]byte(`{"a":`), schema.Schema{})
	assert.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	in := Record{"uid": 800099, "name": "Alex", "score": float32(0.5), "status": true}

	data, err := encodeRecord(in)
	require.NoError(t, err)
	out, err := decodeRecord(data, schema.Schema{})
	require.NoError(t, err)

	assert.Equal(t, normalizeRecord(in), out)
	assert.Equal(t, int64(800099), out["uid"])
	assert.Equal(t, 0.5, out["score"])
}

func TestDecodeRecordRealColumns(t *testing.T) {
	s := schema.MustNew(
		schema.Col("id", "TEXT"),
		schema.Col("price", "REAL NOT NULL"),
		schema.Col("count", "INTEGER"),
	)

	data, err := encodeRecord(Record{"id": "a", "price": 10.0, "count": 10, "extra": 10.0})
	require.NoError(t, err)
	out, err := decodeRecord(data, s)
	require.NoError(t, err)

	assert.Equal(t, 10.0, out["price"])
	assert.Equal(t, int64(10), out["count"])
	// undeclared fields keep the syntax based normalization
	assert.Equal(t, int64(10), out["extra"])
	assert.True(t, s.Validate(out))
}

func TestKeysOf(t *testing.T) {
	assert.Equal(t, []any{1, 2, 3}, KeysOf(1, 2, 3))
	assert.Equal(t, []any{"a"}, KeysOf("a"))
	assert.Empty(t, KeysOf[string]())
}

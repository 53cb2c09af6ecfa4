package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersSchema(t *testing.T) Schema {
	t.Helper()
	s, err := New(Col("uid", "INTEGER"), Col("name", "TEXT"), Col("status", "BOOLEAN"))
	require.NoError(t, err)
	return s
}

// TestValueChecks tests the per-kind predicates.
func TestValueChecks(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		text    bool
		integer bool
		real    bool
		boolean bool
	}{
		{name: "string", value: "x", text: true},
		{name: "empty string", value: "", text: true},
		{name: "int", value: 5, integer: true},
		{name: "int64", value: int64(-5), integer: true},
		{name: "uint8", value: uint8(5), integer: true},
		{name: "float64", value: 1.5, real: true},
		{name: "integral float64", value: 3.0, real: true},
		{name: "float32", value: float32(1.5), real: true},
		{name: "bool", value: true, boolean: true},
		{name: "json integer", value: json.Number("42"), integer: true},
		{name: "json negative integer", value: json.Number("-42"), integer: true},
		{name: "json fraction", value: json.Number("4.2"), real: true},
		{name: "json exponent", value: json.Number("1e3"), real: true},
		{name: "nil", value: nil},
		{name: "map", value: map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.text, IsText(tt.value), "IsText")
			assert.Equal(t, tt.integer, IsInteger(tt.value), "IsInteger")
			assert.Equal(t, tt.real, IsReal(tt.value), "IsReal")
			assert.Equal(t, tt.boolean, IsBoolean(tt.value), "IsBoolean")
		})
	}

	assert.False(t, IsNotNull(nil))
	assert.True(t, IsNotNull(0))
}

// TestParseType tests descriptor parsing and kind precedence.
func TestParseType(t *testing.T) {
	tests := []struct {
		descriptor string
		kind       Kind
		notNull    bool
	}{
		{"TEXT", KindText, false},
		{"text not null", KindText, true},
		{"INTEGER NOT NULL", KindInteger, true},
		{"Real", KindReal, false},
		{"BOOLEAN", KindBoolean, false},
		{"BLOB", KindAny, false},
		{"BLOB NOT NULL", KindAny, true},
		{"TEXT INTEGER", KindText, false},
		{"INTEGER REAL", KindInteger, false},
	}

	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			kind, notNull := ParseType(tt.descriptor)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.notNull, notNull)
		})
	}
}

// TestNewRejectsInvalidSchemas tests schema admission.
func TestNewRejectsInvalidSchemas(t *testing.T) {
	tests := []struct {
		name string
		cols []Column
	}{
		{name: "empty", cols: nil},
		{name: "real key", cols: []Column{Col("k", "REAL"), Col("v", "TEXT")}},
		{name: "boolean key", cols: []Column{Col("k", "BOOLEAN")}},
		{name: "lower case real key", cols: []Column{Col("k", "real not null")}},
		{name: "duplicate column", cols: []Column{Col("k", "TEXT"), Col("k", "INTEGER")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cols...)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}

	for _, key := range []string{"TEXT", "INTEGER", "text not null", "BLOB"} {
		_, err := New(Col("k", key))
		assert.NoError(t, err, "key type %s", key)
	}
}

// TestValidate tests record validation against the users schema.
func TestValidate(t *testing.T) {
	s := usersSchema(t)

	assert.True(t, s.Validate(map[string]any{"uid": 1, "name": "A", "status": true}))
	assert.True(t, s.Validate(map[string]any{"uid": int64(1), "name": "A", "status": false, "extra": []int{1}}))

	assert.False(t, s.Validate(map[string]any{"uid": 1, "name": "A"}), "missing column")
	assert.False(t, s.Validate(map[string]any{"uid": 1, "name": 5, "status": true}), "wrong type")
	assert.False(t, s.Validate(map[string]any{"uid": 1.5, "name": "A", "status": true}), "real for integer")
	assert.False(t, s.Validate(map[string]any{"uid": true, "name": "A", "status": true}), "bool for integer")
	assert.False(t, s.Validate(map[string]any{"uid": 1, "name": nil, "status": true}), "nil for text")
	assert.False(t, s.Validate(nil))

	assert.Equal(t, "status", s.Invalid(map[string]any{"uid": 1, "name": "A", "status": "yes"}))
	assert.Empty(t, s.Invalid(map[string]any{"uid": 1, "name": "A", "status": true}))

	assert.False(t, Schema{}.Validate(map[string]any{}), "zero schema validates nothing")
}

// TestNotNullOnUntypedColumn tests that NOT NULL constrains columns of unknown kind.
func TestNotNullOnUntypedColumn(t *testing.T) {
	s := MustNew(Col("id", "TEXT"), Col("blob", "BLOB NOT NULL"), Col("any", "BLOB"))

	assert.True(t, s.Validate(map[string]any{"id": "a", "blob": []byte{1}, "any": nil}))
	assert.False(t, s.Validate(map[string]any{"id": "a", "blob": nil, "any": nil}))
}

// TestSchemaJSON tests that the column order survives a JSON round trip.
func TestSchemaJSON(t *testing.T) {
	s := MustNew(Col("uid", "INTEGER"), Col("zeta", "TEXT NOT NULL"), Col("alpha", "REAL"))

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"uid":"INTEGER","zeta":"TEXT NOT NULL","alpha":"REAL"}`, string(data))

	var decoded Schema
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, s.Equal(decoded))
	assert.Equal(t, "uid", decoded.KeyColumn().Name)

	col, ok := decoded.Column("zeta")
	require.True(t, ok)
	assert.Equal(t, KindText, col.Kind)
	assert.True(t, col.NotNull)
}

// TestSchemaJSONErrors tests rejected blueprint entries.
func TestSchemaJSONErrors(t *testing.T) {
	for _, doc := range []string{
		`[]`,
		`{"uid": 5}`,
		`{"uid": "INTEGER"`,
		`{}`,
		`{"flag": "BOOLEAN"}`,
	} {
		var s Schema
		assert.Error(t, json.Unmarshal([]byte(doc), &s), doc)
	}
}

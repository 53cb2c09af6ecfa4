package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidSchema is returned for schemas that cannot describe a sub:
// no columns, duplicate column names or a key column that is not TEXT or INTEGER.
var ErrInvalidSchema = errors.New("invalid schema")

// --------------------------------------------------------------------------
// Column
// --------------------------------------------------------------------------

// Column is one declared column of a schema.
type Column struct {
	Name    string // column name
	Type    string // type descriptor as declared, e.g. "TEXT NOT NULL"
	Kind    Kind   // primary kind parsed from Type
	NotNull bool   // whether Type contains NOT NULL
}

// Col declares a column. The descriptor is parsed immediately.
func Col(name, typ string) Column {
	kind, notNull := ParseType(typ)
	return Column{Name: name, Type: typ, Kind: kind, NotNull: notNull}
}

// Check reports whether v is an acceptable value for the column.
// A nil value fails every typed check, NOT NULL additionally rejects it for untyped columns.
func (c Column) Check(v any) bool {
	if c.NotNull && !IsNotNull(v) {
		return false
	}
	return c.Kind.check(v)
}

// --------------------------------------------------------------------------
// Schema
// --------------------------------------------------------------------------

// Schema is an ordered, immutable list of columns. The first column is the key column.
type Schema struct {
	cols  []Column
	index map[string]int
}

// New builds a schema from columns in declaration order.
func New(cols ...Column) (Schema, error) {
	if len(cols) == 0 {
		return Schema{}, fmt.Errorf("%w: no columns", ErrInvalidSchema)
	}

	s := Schema{
		cols:  make([]Column, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if _, dup := s.index[c.Name]; dup {
			return Schema{}, fmt.Errorf("%w: duplicate column %q", ErrInvalidSchema, c.Name)
		}
		// re-parse so hand built columns can't disagree with their descriptor
		s.cols[i] = Col(c.Name, c.Type)
		s.index[c.Name] = i
	}

	if err := s.CheckKeyColumn(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// MustNew is like New but panics on an invalid schema. Intended for literals in tests and examples.
func MustNew(cols ...Column) Schema {
	s, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of columns
func (s Schema) Len() int { return len(s.cols) }

// Columns returns a copy of the columns in declaration order
func (s Schema) Columns() []Column {
	out := make([]Column, len(s.cols))
	copy(out, s.cols)
	return out
}

// Column looks up a column by name
func (s Schema) Column(name string) (Column, bool) {
	i, ok := s.index[name]
	if !ok {
		return Column{}, false
	}
	return s.cols[i], true
}

// KeyColumn returns the first declared column. The zero Column is returned for an empty schema.
func (s Schema) KeyColumn() Column {
	if len(s.cols) == 0 {
		return Column{}
	}
	return s.cols[0]
}

// CheckKeyColumn returns ErrInvalidSchema if the schema is empty or
// its key column type mentions REAL or BOOLEAN.
func (s Schema) CheckKeyColumn() error {
	if len(s.cols) == 0 {
		return fmt.Errorf("%w: no columns", ErrInvalidSchema)
	}
	if key := s.cols[0]; !validKeyType(key.Type) {
		return fmt.Errorf("%w: key column %q must be TEXT or INTEGER, got %q", ErrInvalidSchema, key.Name, key.Type)
	}
	return nil
}

// Validate checks record against every column in declaration order.
// A column missing from the record fails, fields not declared in the schema are ignored.
func (s Schema) Validate(record map[string]any) bool {
	if len(s.cols) == 0 {
		return false
	}
	for _, c := range s.cols {
		v, ok := record[c.Name]
		if !ok || !c.Check(v) {
			return false
		}
	}
	return true
}

// Invalid returns the name of the first column record violates, or "" if it is valid.
func (s Schema) Invalid(record map[string]any) string {
	for _, c := range s.cols {
		v, ok := record[c.Name]
		if !ok || !c.Check(v) {
			return c.Name
		}
	}
	return ""
}

// Equal reports whether both schemas declare the same columns in the same order
func (s Schema) Equal(other Schema) bool {
	if len(s.cols) != len(other.cols) {
		return false
	}
	for i := range s.cols {
		if s.cols[i].Name != other.cols[i].Name || s.cols[i].Type != other.cols[i].Type {
			return false
		}
	}
	return true
}

// --------------------------------------------------------------------------
// JSON
// --------------------------------------------------------------------------

// MarshalJSON encodes the schema as {"column": "TYPE", ...} keeping the declaration order.
func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s.cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		typ, err := json.Marshal(c.Type)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(typ)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes {"column": "TYPE", ...} keeping the order of the document.
func (s *Schema) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	var cols []Column
	for dec.More() {
		name, err := stringToken(dec)
		if err != nil {
			return err
		}
		typ, err := stringToken(dec)
		if err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
		cols = append(cols, Col(name, typ))
	}

	if err := expectDelim(dec, '}'); err != nil {
		return err
	}

	parsed, err := New(cols...)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return "", io.ErrUnexpectedEOF
	}
	if err != nil {
		return "", err
	}
	str, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %v", tok)
	}
	return str, nil
}

package blueprint

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/kvsub/lib/schema"
)

// Blueprint is an immutable, ordered mapping from sub name to schema.
// Mutations return a new Blueprint and leave the receiver untouched.
type Blueprint struct {
	names   []string
	schemas map[string]schema.Schema
}

// Len returns the number of subs
func (b Blueprint) Len() int { return len(b.names) }

// Names returns the sub names in creation order
func (b Blueprint) Names() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Get returns the schema of a sub
func (b Blueprint) Get(name string) (schema.Schema, bool) {
	s, ok := b.schemas[name]
	return s, ok
}

// Has reports whether a sub with the given name exists
func (b Blueprint) Has(name string) bool {
	_, ok := b.schemas[name]
	return ok
}

// With returns a copy of b with the sub appended (or replaced in place if it exists).
func (b Blueprint) With(name string, s schema.Schema) Blueprint {
	next := Blueprint{
		names:   make([]string, 0, len(b.names)+1),
		schemas: make(map[string]schema.Schema, len(b.schemas)+1),
	}
	next.names = append(next.names, b.names...)
	for k, v := range b.schemas {
		next.schemas[k] = v
	}
	if _, exists := next.schemas[name]; !exists {
		next.names = append(next.names, name)
	}
	next.schemas[name] = s
	return next
}

// Without returns a copy of b without the sub.
func (b Blueprint) Without(name string) Blueprint {
	next := Blueprint{
		names:   make([]string, 0, len(b.names)),
		schemas: make(map[string]schema.Schema, len(b.schemas)),
	}
	for _, n := range b.names {
		if n != name {
			next.names = append(next.names, n)
			next.schemas[n] = b.schemas[n]
		}
	}
	return next
}

// MarshalJSON encodes the blueprint as {"sub": {"column": "TYPE", ...}, ...} in creation order.
func (b Blueprint) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range b.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(b.schemas[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a blueprint document, keeping the order of the subs.
func (b *Blueprint) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("blueprint must be a JSON object, got %v", tok)
	}

	next := Blueprint{schemas: make(map[string]schema.Schema)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected sub name, got %v", tok)
		}
		var s schema.Schema
		if err := dec.Decode(&s); err != nil {
			return fmt.Errorf("sub %q: %w", name, err)
		}
		next = next.With(name, s)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*b = next
	return nil
}

// Encode returns the document written by persisters (indented with four spaces).
func (b Blueprint) Encode() ([]byte, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "    "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Decode parses a document produced by Encode or by any JSON writer using the same shape.
func Decode(data []byte) (Blueprint, error) {
	var b Blueprint
	if err := json.Unmarshal(data, &b); err != nil {
		return Blueprint{}, err
	}
	return b, nil
}

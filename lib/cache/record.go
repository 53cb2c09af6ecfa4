package cache

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/ValentinKolb/kvsub/lib/schema"
)

// Record is one row of a sub: a JSON object keyed by column name.
//
// Numbers of declared REAL columns are read back as float64 even when stored without
// a fraction. All other numbers are int64 when written in integer syntax and float64 otherwise.
type Record map[string]any

// KeyValue pairs a key with the record to store under it, used by SetMany.
type KeyValue struct {
	Key   any
	Value Record
}

// KeysOf converts a typed key list into the []any expected by the bulk operations.
func KeysOf[T any](keys ...T) []any {
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}

func encodeRecord(r Record) ([]byte, error) {
	return json.Marshal(r)
}

// decodeRecord reads a stored record, numbers of the columns of s are converted by column kind
func decodeRecord(data []byte, s schema.Schema) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var r Record
	if err := dec.Decode(&r); err != nil {
		return nil, err
	}

	out := normalizeRecord(r)
	for _, col := range s.Columns() {
		if col.Kind != schema.KindReal {
			continue
		}
		// encoding/json writes an integral float64 without a fraction
		if n, ok := r[col.Name].(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				out[col.Name] = f
			}
		}
	}
	return out, nil
}

// normalizeRecord returns a copy of r with all numbers in canonical form
func normalizeRecord(r Record) Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = normalize(v)
	}
	return out
}

// normalize maps numbers to int64 or float64 and descends into maps and slices.
// Values of other types are returned unchanged.
func normalize(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return normalizeUint(uint64(n))
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return normalizeUint(n)
	case float32:
		return float64(n)
	case Record:
		return normalizeRecord(n)
	case map[string]any:
		return map[string]any(normalizeRecord(n))
	case []any:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}

func normalizeUint(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return u
}

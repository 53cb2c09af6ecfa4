package cache

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ValentinKolb/kvsub/lib/schema"
)

// separator joins cache name, sub name and logical key
const separator = "/"

// KeyString returns the textual form of a logical key.
// Strings and integers are accepted, everything else is rejected.
func KeyString(key any) (string, error) {
	switch k := key.(type) {
	case string:
		return k, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(k), nil
	default:
		return "", fmt.Errorf("%w: unsupported key type %T", ErrInvalidKey, key)
	}
}

// CompleteKey returns the store key "{cache}/{sub}/{key}".
func CompleteKey(cache, sub string, key any) (string, error) {
	k, err := KeyString(key)
	if err != nil {
		return "", err
	}
	return Prefix(cache, sub) + k, nil
}

// Prefix returns the common prefix "{cache}/{sub}/" of all store keys of a sub.
func Prefix(cache, sub string) string {
	return cache + separator + sub + separator
}

// LogicalKey strips the sub prefix from a complete key.
func LogicalKey(cache, sub, completeKey string) (string, error) {
	prefix := Prefix(cache, sub)
	if !strings.HasPrefix(completeKey, prefix) {
		return "", fmt.Errorf("%w: %q is not a key of %s", ErrInvalidKey, completeKey, prefix)
	}
	return completeKey[len(prefix):], nil
}

// CompleteValue builds the record stored for key: the key column set from key,
// merged with the partial value. The key column is always taken from key.
// For an INTEGER key column the key is converted to int64, otherwise to its string form.
func CompleteValue(s schema.Schema, key any, partial Record) (Record, error) {
	col := s.KeyColumn()
	if col.Name == "" {
		return nil, fmt.Errorf("%w: schema has no key column", ErrInvalidSchema)
	}

	var keyValue any
	if col.Kind == schema.KindInteger {
		i, err := integerKey(key)
		if err != nil {
			return nil, err
		}
		keyValue = i
	} else {
		str, err := KeyString(key)
		if err != nil {
			return nil, err
		}
		keyValue = str
	}

	complete := make(Record, len(partial)+1)
	for k, v := range partial {
		complete[k] = normalize(v)
	}
	complete[col.Name] = keyValue
	return complete, nil
}

// integerKey converts an integer or a decimal string to int64
func integerKey(key any) (int64, error) {
	switch k := normalize(key).(type) {
	case int64:
		return k, nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(k), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidKey, k)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %v (%T) is not an integer", ErrInvalidKey, key, key)
	}
}

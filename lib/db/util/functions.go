package util

import (
	"crypto/rand"
	"encoding/binary"
	"strings"
	"time"
)

// GenerateSeed returns a random hash seed, so bucket placement differs between engine instances
func GenerateSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// HasPrefix reports whether key lies inside the namespace prefix. The empty prefix covers all keys.
func HasPrefix(key, prefix string) bool {
	return strings.HasPrefix(key, prefix)
}

// UintKey is a hashed key
type UintKey uint64

// HashString is seeded FNV-1a. It also derives stable replica ids from host names.
func HashString(s string, seed uint64) UintKey {
	const prime64 = 1099511628211
	h := uint64(14695981039346656037) ^ seed
	for i := 0; i < len(s); i++ {
		h = (h ^ uint64(s[i])) * prime64
	}
	return UintKey(h)
}

package internal

import (
	"github.com/ValentinKolb/kvsub/lib/db/util"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Entry Type (value with metadata)
// --------------------------------------------------------------------------

// Entry stores a value together with the write index of its last update
type Entry struct {
	Value []byte // Stored data
	Index uint64 // Index when this entry was created/updated
}

// Size returns the approximate number of bytes the entry occupies for the given key
func (e Entry) Size(key string) int {
	const overhead = 8 // the index
	return len(key) + len(e.Value) + overhead
}

// --------------------------------------------------------------------------
// Shard Type (partition of the database)
// --------------------------------------------------------------------------

// Shard represents a partition of the database.
// The string key is kept so that prefix scans can enumerate it.
type Shard struct {
	Data *xsync.MapOf[string, Entry]
}

// NewShard creates a new empty shard
func NewShard() *Shard {
	return &Shard{
		Data: xsync.NewMapOf[string, Entry](),
	}
}

// GetShard returns the appropriate shard for a given key
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func GetShard[T any](key string, seed uint64, shards []*T) *T {
	// Shift right by 7 bits to use higher-quality bits for distribution
	shifted := uint64(util.HashString(key, seed)) >> 7
	return shards[shifted%uint64(len(shards))]
}

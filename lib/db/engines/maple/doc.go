// Package maple implements an in-memory key-value database (KVDB) built on
// sharded concurrent maps. It provides a complete implementation of the db.KVDB
// interface with a focus on thread safety and predictable ordering of writes.
//
// Key Components:
//
//   - mapleImpl: The central database structure implementing db.KVDB. It manages the shards
//     and maintains a monotonically increasing write index. The write index itself is
//     supplied by the caller, so the local store can use an atomic counter while the
//     distributed store uses raft log indices.
//
//   - Shard: A partition of the key space backed by an xsync.MapOf keyed by the original
//     string key. Shards operate independently to minimize contention. Keeping the string
//     key (instead of only its hash) is what allows prefix scans.
//
//   - Entry: A value together with the write index of its last update.
//
// Internal Mechanisms:
//
//   - Sharding Strategy: a key is hashed with FNV-1a and a per-database seed, the hash is
//     right-shifted by 7 bits and taken modulo the shard count.
//
//   - Stale Write Prevention: a Set or Delete is only applied if its write index is greater
//     than or equal to the index stored with the entry. Replaying an older log entry is
//     therefore a no-op.
//
//   - Prefix Scan: Scan ranges over every shard, collects matching keys and sorts them.
//     The scan is not a point-in-time snapshot; keys written concurrently may or may not
//     appear.
//
//   - Persistence: Save writes a fuzzy snapshot without blocking writers:
//
//     magic "MAPLEDB\x00" | version u8 (4) | seed u64 | count u64 |
//     count * [ keyLen u32 | key | index u64 | valueLen u32 | value ]
//
//     All integers are little endian. Load builds fresh shards and only swaps them in
//     after the whole snapshot was read, a truncated snapshot leaves the database untouched.
//
//   - Statistics: GetInfo samples up to 100 entries per shard into a go-metrics
//     histogram to estimate the size of the database without a full scan.
//
// Usage Example:
//
//	database := maple.NewMapleDB(nil)
//	database.Set("users:alice", []byte(`{"age":30}`), 1)
//	keys := database.Scan("users:") // ["users:alice"]
package maple

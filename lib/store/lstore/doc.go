// Package lstore implements a local, in-memory, single-node key-value store based on the
// store.IStore interface. It is a thin wrapper around any db.KVDB implementation with
// automatic write index management.
//
// Implementation Details:
//
//   - Write Index Management: an atomic counter is incremented for every write and
//     passed to the engine as logical timestamp. All pairs of one MSet share an index.
//
//   - Bulk Atomicity: MSet and MGet hold an exclusive lock while single key operations
//     hold a shared one. A bulk read therefore sees either none or all of a bulk write.
//
//   - Feature Detection: before executing an operation the store checks whether the
//     underlying engine supports it and returns RetCUnsupportedOperation otherwise.
//
//   - Snapshots: the store implements Snapshotter. SaveFile and LoadFile persist it to a
//     file, which the CLI uses to keep a local cache between invocations.
//
// Usage Example:
//
//	s := lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
//	_ = s.MSet([]string{"app/users/1", "app/users/2"}, [][]byte{a, b})
//	keys, _ := s.Scan("app/users/")
//	_ = lstore.SaveFile(s, "data/app.snapshot")
package lstore

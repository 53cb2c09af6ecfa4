// Package testing provides the shared conformance suite for store.IStore
// implementations and FaultyStore, a wrapper that makes selected operations fail.
//
// Example usage:
//
//	storetesting.RunIStoreTests(t, "LocalStore", func() store.IStore {
//		return lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
//	})
//
//	faulty := storetesting.NewFaultyStore(inner)
//	faulty.FailAfter(storetesting.OpDelete, 1) // first Delete works, the rest fail
package testing

// Package cache provides table-like access to a key-value store.
//
// A Cache binds a store.IStore to a blueprint registry. Each registered sub is a
// named table with a typed schema; its records are JSON objects stored under
//
//	{cache}/{sub}/{key}
//
// The first schema column is the key column, its value is taken from the key on
// every write. Records are validated against the schema before anything is written,
// so a batch passed to SetMany is either written as a whole with one MSet or not at all.
//
// Result model:
//   - (false, nil) means the operation was rejected: the record did not match the
//     schema, or Unset found nothing to delete.
//   - An error wrapping ErrPersistence means the backing store failed.
//   - Registry errors (ErrNotAuthorized, ErrNotFound, ...) are returned by the admin
//     operations CreateSub and DeleteSub.
//
// UnsetMany and UnsetAll delete key by key. If a delete fails, every value read before
// the first delete is written back. The restore does not coordinate with other
// writers and can bring back a value that was replaced concurrently.
//
// Example:
//
//	c, _ := cache.New("app", s, blueprint.NewFilePersister(dir, "app"))
//	c.SetupPassphrase("secret")
//	c.CreateSub("users", schema.MustNew(
//		schema.Col("uid", "INTEGER"),
//		schema.Col("name", "TEXT"),
//		schema.Col("status", "BOOLEAN"),
//	), "secret")
//
//	users, _ := c.Sub("users")
//	users.Set(ctx, 800099, cache.Record{"name": "Alex", "status": true})
//	r, _ := users.Get(ctx, 800099) // {"uid": 800099, "name": "Alex", "status": true}
//
// Every cache counts its operations in its own VictoriaMetrics set, see Cache.Metrics.
package cache

// Package blueprint maintains the registry of subs of a cache: which subs exist and
// which schema each of them has.
//
// The registry keeps the current Blueprint in memory and writes the whole document
// through a Persister after every change. Create and Delete are admin operations
// and require the passphrase held by the Gate.
//
// Document format (one per cache, named {cache}_blueprint):
//
//	{
//	    "users": {
//	        "uid": "INTEGER",
//	        "name": "TEXT"
//	    }
//	}
//
// Subs appear in creation order, columns in declaration order.
//
// Persisters:
//   - FilePersister: {dir}/{cache}_blueprint.json, replaced atomically via rename
//   - StorePersister: the key {cache}_blueprint of the backing store
//   - SQLitePersister: a row of the blueprints table in a SQLite database
//
// Failure semantics: authorization, naming and schema problems are returned as errors
// (ErrNotConfigured, ErrNotAuthorized, ErrAlreadyExists, ErrNotFound, ErrInvalidName,
// ErrInvalidSchema). A failing persister is reported as a false result with a nil error
// and leaves the registry as it was. Delete additionally writes the purged records back.
package blueprint

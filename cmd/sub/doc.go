// Package sub implements the "kvsub sub" commands: managing the subs of a cache
// and reading or writing their records from the command line.
//
// Records are passed and printed as JSON objects. By default the store is local and
// kept as a snapshot in --data-dir, with --backend remote the commands run against a
// shard of a kvsub server.
package sub

// Package store provides the key-value store interface the sub layer is built on,
// together with unified error handling.
// It serves as an abstraction layer over the lower-level db.KVDB implementations, adding
// write index management, bulk operations and standardized error reporting.
//
// Key Components:
//
//   - IStore Interface: The contract every backing store fulfils. Besides single key
//     Get, Set, Has and Delete it offers MGet and MSet (one atomic bulk read or write)
//     and Scan, which lists all keys under a prefix in ascending order. Delete reports
//     whether a value existed, which the sub layer surfaces to its callers.
//
//   - Error System: *Error carries a RetCode and a message. Codes are transported
//     unchanged over raft results and RPC messages, so a caller sees the same code
//     no matter which implementation produced it.
//
//   - DBFactory: A function type that abstracts the creation of underlying db.KVDB
//     instances.
//
// Implementations:
//
//   - Local Store (lstore): a single-node store directly on top of a db.KVDB with an
//     atomic write index. It can snapshot itself to a file, which the CLI uses to keep
//     data between runs.
//
//   - Distributed Store (dstore): a store replicated with the Dragonboat raft library.
//     Every write (including a whole MSet) is one raft log entry.
//
//   - The rpc/client package provides a third implementation that forwards all calls
//     to a remote server.
//
// The testing sub package contains the shared conformance suite (RunIStoreTests) and
// FaultyStore, a wrapper that injects failures for rollback tests.
package store

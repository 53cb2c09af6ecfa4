// Package rpc provides remote access to stores. It lets a cache run on a store
// that lives in another process, possibly replicated with RAFT.
//
// The package is organized into several subpackages:
//
//   - common: The Message protocol, server and client configuration, and the
//     logger setup shared by all packages.
//
//   - transport: Network communication abstractions with an HTTP implementation.
//
//   - serializer: Message serialization (Binary, JSON, GOB) for converting between
//     Message objects and byte arrays.
//
//   - client: An RPC client implementing store.IStore.
//
//   - server: The RPC server that routes requests to its shards of local or
//     distributed stores.
package rpc

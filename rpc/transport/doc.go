// Package transport defines the interfaces for moving serialized RPC messages
// between clients and servers.
//
// Key Components:
//
//   - IRPCClientTransport: client side, manages connections and sends a request
//     for a shard, returning the raw response.
//
//   - IRPCServerTransport: server side, receives requests and passes them together
//     with the addressed shard ID to the registered ServerHandleFunc.
//
// The http subpackage provides the implementation used by kvsub.
package transport

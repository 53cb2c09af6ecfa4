// Package common provides the data structures shared by the RPC client, server,
// transports and serializers.
//
// The package focuses on:
//   - Message protocol definition for store access over the network
//   - Configuration structures for client and server components
//   - Custom logging implementation integrated with Dragonboat
//   - Utilities for Dragonboat (RAFT) integration
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication. Single key operations
//     use Key and Value, bulk operations (MSet, MGet, Scan) use Keys, Values and Oks.
//
//   - MessageType: Enumeration of all operations of the store.IStore interface plus
//     the control messages Success and Error.
//
//   - ServerConfig: Configuration of a server node: the shards it serves, RAFT
//     parameters, the HTTP endpoint and the log level. ParseShards reads the
//     "ID=TYPE,..." shard list used on the command line.
//
//   - ClientConfig: Configuration for client components, controlling endpoints,
//     timeouts and retry behavior.
//
//   - Logger: InitLoggers installs a Dragonboat logger factory so that raft internals
//     and the packages of this module log in the same "LEVEL | pkg | message" format.
package common

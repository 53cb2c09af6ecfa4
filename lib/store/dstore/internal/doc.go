// Package internal provides the protocol structures for the dstore package: the
// Command written to the raft log and the Query evaluated on the state machine.
//
// Command Format:
//
//	- 1 byte: command type (Set, MSet, Delete)
//	- 4 bytes: number of pairs (uint32, big endian)
//	- per pair:
//	  - 4 bytes: key length, followed by the key
//	  - 4 bytes: value length, followed by the value (zero length for Delete)
//
//	Set and Delete carry exactly one pair. An MSet carries the whole batch, which is
//	what makes it atomic: it is one log entry.
//
// Query Format:
//
//	Queries are never persisted and are therefore passed to the state machine as Go
//	values. Type selects the operation, Key holds the key (Get, Has) or the prefix (Scan)
//	and Keys holds the keys of an MGet.
package internal

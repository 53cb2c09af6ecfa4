// Package dstore implements a replicated key-value store using the Dragonboat RAFT
// consensus library. It provides a linearizable implementation of the store.IStore
// interface that can operate across multiple nodes.
//
// Architecture:
//
//   - Store Client: implements store.IStore. It serializes writes into commands,
//     proposes them with SyncPropose and turns raft results back into store errors.
//
//   - State Machine: a Dragonboat IConcurrentStateMachine that owns a db.KVDB and applies
//     committed commands to it. The raft log index is used as write index, which gives
//     every replica the same ordering.
//
//   - Communication Protocol: Command and Query in the internal package.
//
// Write Operations:
//
//	Set, MSet and Delete each become exactly one raft log entry. An MSet is applied
//	while holding the state machine's bulk lock, so an MGet lookup never sees half of
//	it. Delete reports in the result data whether the key existed.
//
// Read Operations:
//
//	Get, MGet, Has and Scan use SyncRead and are linearizable. GetDBInfo uses
//	StaleRead since its numbers are estimates anyway.
//
// Error Handling and Retries:
//
//	When Dragonboat returns ErrSystemBusy the operation is retried after a short delay,
//	up to five attempts. Every attempt is bounded by the configured timeout. Failed
//	commands carry a store.RetCode in sm.Result.Value which is turned into a *store.Error.
//
// Snapshotting and Recovery:
//
//	Snapshots are fuzzy and use the Save and Load methods of the db.KVDB. A recovering
//	replica loads the latest snapshot and then replays the log entries committed after it.
//
// Example:
//
//	nh, err := dragonboat.NewNodeHost(nodeHostConfig)
//	if err != nil { ... }
//
//	dbFactory := func() db.KVDB { return maple.NewMapleDB(nil) }
//	err = nh.StartConcurrentReplica(members, false, dstore.CreateStateMaschineFactory(dbFactory), shardConfig)
//	if err != nil { ... }
//
//	s := dstore.NewDistributedStore(nh, shardID, 5*time.Second)
package dstore

package dstore

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ValentinKolb/kvsub/lib/db"
	"github.com/ValentinKolb/kvsub/lib/store"
	"github.com/ValentinKolb/kvsub/lib/store/dstore/internal"
	sm "github.com/lni/dragonboat/v4/statemachine"
)

// Result data of a Delete command
var (
	resultDeleted = []byte{1}
	resultMissing = []byte{0}
)

// --------------------------------------------------------------------------
// State Machine Implementation
// --------------------------------------------------------------------------

// KVStateMachine is a state machine implementation for Dragonboat RAFT
type KVStateMachine struct {
	replicaID uint64
	shardID   uint64
	database  db.KVDB // the actual dataStorage

	// bulk keeps MGet lookups from observing a partially applied MSet
	bulk sync.RWMutex
}

// CreateStateMaschineFactory returns a function that can be used by dragonboat to create a new state machine for a node host
// The factory pattern is used to enable the caller to pass an interchangeable dbFactory
func CreateStateMaschineFactory(dbFactory store.DBFactory) func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
	return func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
		return &KVStateMachine{
			replicaID: replicaID,
			shardID:   shardID,
			database:  dbFactory(),
		}
	}
}

func (fsm *KVStateMachine) require(feature db.Feature, op string) error {
	if !fsm.database.SupportsFeature(feature) {
		return store.NewError(store.RetCUnsupportedOperation, op+" operation is not supported")
	}
	return nil
}

// Lookup handles read-only queries by mapping each Query operation to the corresponding KVDB method.
func (fsm *KVStateMachine) Lookup(itf interface{}) (interface{}, error) {
	q, ok := itf.(internal.Query)
	if !ok {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("invalid Query type: %T", itf))
	}

	switch q.Type {
	case internal.QueryTGet:
		if err := fsm.require(db.FeatureGet, "Get"); err != nil {
			return nil, err
		}
		val, ok := fsm.database.Get(q.Key)
		return internal.QueryResult{Value: val, Ok: ok}, nil
	case internal.QueryTMGet:
		if err := fsm.require(db.FeatureGet, "MGet"); err != nil {
			return nil, err
		}
		fsm.bulk.RLock()
		defer fsm.bulk.RUnlock()
		res := internal.MultiQueryResult{
			Values: make([][]byte, len(q.Keys)),
			Oks:    make([]bool, len(q.Keys)),
		}
		for i, key := range q.Keys {
			res.Values[i], res.Oks[i] = fsm.database.Get(key)
		}
		return res, nil
	case internal.QueryTHas:
		if err := fsm.require(db.FeatureHas, "Has"); err != nil {
			return nil, err
		}
		return fsm.database.Has(q.Key), nil
	case internal.QueryTScan:
		if err := fsm.require(db.FeatureScan, "Scan"); err != nil {
			return nil, err
		}
		return fsm.database.Scan(q.Key), nil
	case internal.QueryTGetDBInfo:
		return fsm.database.GetInfo(), nil
	default:
		return nil, store.NewError(store.RetCInvalidOperation, fmt.Sprintf("unknown Query operation: %d", q.Type))
	}
}

// Update handles write commands on the KVDB instance
// All write operations are serialized into []byte and are accessible via the entries struct
func (fsm *KVStateMachine) Update(entries []sm.Entry) ([]sm.Entry, error) {
	if len(entries) == 0 {
		return entries, nil
	}

	start := time.Now()

	for idx, e := range entries {
		entries[idx].Result = fsm.apply(e)
	}

	if elapsed := time.Since(start); elapsed > time.Millisecond {
		log.Infof("State machine took long to update. Batch updated %d entries, took %.2fms", len(entries), float64(elapsed)/float64(time.Millisecond))
	}
	return entries, nil
}

// apply executes a single raft log entry and returns its result
func (fsm *KVStateMachine) apply(e sm.Entry) sm.Result {
	if len(e.Cmd) == 0 {
		return sm.Result{Value: uint64(store.RetCInvalidOperation), Data: []byte("empty command ignored")}
	}

	cmd := internal.Command{}
	if err := cmd.Deserialize(e.Cmd); err != nil {
		return sm.Result{Value: uint64(store.RetCInternalError), Data: []byte(fmt.Sprintf("failed to deserialize command: %v", err))}
	}

	feat, err := cmd.Type.ToDBFeature()
	if err != nil {
		return sm.Result{Value: uint64(store.RetCInvalidOperation), Data: []byte(fmt.Sprintf("unknown Command operation: %s", cmd.Type))}
	}
	if !fsm.database.SupportsFeature(feat) {
		return sm.Result{Value: uint64(store.RetCUnsupportedOperation), Data: []byte(fmt.Sprintf("%s operation is not supported", cmd.Type))}
	}

	switch cmd.Type {
	case internal.CommandTSet, internal.CommandTDelete:
		if len(cmd.Pairs) != 1 {
			return sm.Result{Value: uint64(store.RetCInvalidOperation), Data: []byte(fmt.Sprintf("%s expects exactly one key", cmd.Type))}
		}
	}

	switch cmd.Type {
	case internal.CommandTSet:
		fsm.database.Set(cmd.Pairs[0].Key, cmd.Pairs[0].Value, e.Index)
		return sm.Result{Value: uint64(store.RetCSuccess)}
	case internal.CommandTMSet:
		fsm.bulk.Lock()
		for _, p := range cmd.Pairs {
			fsm.database.Set(p.Key, p.Value, e.Index)
		}
		fsm.bulk.Unlock()
		return sm.Result{Value: uint64(store.RetCSuccess)}
	case internal.CommandTDelete:
		if fsm.database.Delete(cmd.Pairs[0].Key, e.Index) {
			return sm.Result{Value: uint64(store.RetCSuccess), Data: resultDeleted}
		}
		return sm.Result{Value: uint64(store.RetCSuccess), Data: resultMissing}
	default:
		return sm.Result{Value: uint64(store.RetCInvalidOperation), Data: []byte(fmt.Sprintf("unknown Command operation: %s", cmd.Type))}
	}
}

// PrepareSnapshot is not used. We don't need to prepare anything since we use fuzzy snapshotting
func (fsm *KVStateMachine) PrepareSnapshot() (interface{}, error) {
	return nil, nil
}

// SaveSnapshot saves a fuzzy db snapshot to the writer
func (fsm *KVStateMachine) SaveSnapshot(_ interface{}, writer io.Writer, _ sm.ISnapshotFileCollection, _ <-chan struct{}) error {
	if err := fsm.require(db.FeatureSave, "Save"); err != nil {
		return err
	}
	return fsm.database.Save(writer)
}

// RecoverFromSnapshot replaces the database content with the snapshot.
func (fsm *KVStateMachine) RecoverFromSnapshot(r io.Reader, _ []sm.SnapshotFile, _ <-chan struct{}) error {
	if err := fsm.require(db.FeatureLoad, "Load"); err != nil {
		return err
	}
	return fsm.database.Load(r)
}

// Close performs any necessary cleanup.
func (fsm *KVStateMachine) Close() error {
	return fsm.database.Close()
}

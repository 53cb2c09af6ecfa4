package testing

import (
	"fmt"
	"sync"

	"github.com/ValentinKolb/kvsub/lib/db"
	"github.com/ValentinKolb/kvsub/lib/store"
)

// Op names an IStore operation that can be made to fail
type Op string

const (
	OpSet    Op = "set"
	OpMSet   Op = "mset"
	OpDelete Op = "delete"
	OpGet    Op = "get"
	OpMGet   Op = "mget"
	OpHas    Op = "has"
	OpScan   Op = "scan"
)

// FaultyStore wraps a store and fails configured operations with RetCInternalError.
// It is safe for concurrent use.
type FaultyStore struct {
	inner store.IStore

	mu        sync.Mutex
	remaining map[Op]int // successful calls left before an op starts failing
	calls     map[Op]int
}

// NewFaultyStore wraps inner. Without configured faults it behaves exactly like inner.
func NewFaultyStore(inner store.IStore) *FaultyStore {
	return &FaultyStore{
		inner:     inner,
		remaining: make(map[Op]int),
		calls:     make(map[Op]int),
	}
}

// FailAfter lets op succeed n more times, every later call fails.
func (f *FaultyStore) FailAfter(op Op, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remaining[op] = n
}

// Fail makes every following call of op fail.
func (f *FaultyStore) Fail(op Op) {
	f.FailAfter(op, 0)
}

// Heal removes the fault configured for op.
func (f *FaultyStore) Heal(op Op) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.remaining, op)
}

// Calls returns how often op was called, including failed calls.
func (f *FaultyStore) Calls(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FaultyStore) check(op Op) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	n, ok := f.remaining[op]
	if !ok {
		return nil
	}
	if n > 0 {
		f.remaining[op] = n - 1
		return nil
	}
	return store.NewError(store.RetCInternalError, fmt.Sprintf("injected %s failure", op))
}

// --------------------------------------------------------------------------
// store.IStore
// --------------------------------------------------------------------------

func (f *FaultyStore) Set(key string, value []byte) error {
	if err := f.check(OpSet); err != nil {
		return err
	}
	return f.inner.Set(key, value)
}

func (f *FaultyStore) MSet(keys []string, values [][]byte) error {
	if err := f.check(OpMSet); err != nil {
		return err
	}
	return f.inner.MSet(keys, values)
}

func (f *FaultyStore) Delete(key string) (bool, error) {
	if err := f.check(OpDelete); err != nil {
		return false, err
	}
	return f.inner.Delete(key)
}

func (f *FaultyStore) Get(key string) ([]byte, bool, error) {
	if err := f.check(OpGet); err != nil {
		return nil, false, err
	}
	return f.inner.Get(key)
}

func (f *FaultyStore) MGet(keys []string) ([][]byte, []bool, error) {
	if err := f.check(OpMGet); err != nil {
		return nil, nil, err
	}
	return f.inner.MGet(keys)
}

func (f *FaultyStore) Has(key string) (bool, error) {
	if err := f.check(OpHas); err != nil {
		return false, err
	}
	return f.inner.Has(key)
}

func (f *FaultyStore) Scan(prefix string) ([]string, error) {
	if err := f.check(OpScan); err != nil {
		return nil, err
	}
	return f.inner.Scan(prefix)
}

func (f *FaultyStore) GetDBInfo() (db.DatabaseInfo, error) {
	return f.inner.GetDBInfo()
}

package lstore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/kvsub/lib/db"
	"github.com/ValentinKolb/kvsub/lib/store"
	"github.com/google/uuid"
)

// Snapshotter is implemented by stores whose whole state can be written to and restored from a stream.
type Snapshotter interface {
	// Save writes the current state to w.
	Save(w io.Writer) error
	// Load replaces the current state with the state read from r.
	Load(r io.Reader) error
}

// Store is a local store that can be snapshotted.
type Store interface {
	store.IStore
	Snapshotter
}

type storeImpl struct {
	db    db.KVDB
	index atomic.Uint64

	// bulk serializes MSet and MGet against each other so a bulk read
	// never observes half of a bulk write. Single key operations share it.
	bulk sync.RWMutex
}

// NewLocalStore creates a new local store instance.
// This store implementation is not distributed and only works on a single node.
func NewLocalStore(factory store.DBFactory) Store {
	return &storeImpl{
		db: factory(),
	}
}

// incAndGetIndex increments the index and returns the new value.
// It is used to ensure that each write operation has a unique index.
//
// Thread-safety: This method is thread-safe since it uses atomic operations.
func (s *storeImpl) incAndGetIndex() uint64 {
	return s.index.Add(1)
}

func (s *storeImpl) require(feature db.Feature, op string) error {
	if !s.db.SupportsFeature(feature) {
		return store.NewError(store.RetCUnsupportedOperation, op+" operation is not supported")
	}
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key string, value []byte) error {
	if err := s.require(db.FeatureSet, "Set"); err != nil {
		return err
	}
	s.bulk.RLock()
	defer s.bulk.RUnlock()
	s.db.Set(key, value, s.incAndGetIndex())
	return nil
}

func (s *storeImpl) MSet(keys []string, values [][]byte) error {
	if err := s.require(db.FeatureSet, "MSet"); err != nil {
		return err
	}
	if err := store.CheckPairs(keys, values); err != nil {
		return err
	}
	s.bulk.Lock()
	defer s.bulk.Unlock()
	// one index for the whole batch
	idx := s.incAndGetIndex()
	for i, key := range keys {
		s.db.Set(key, values[i], idx)
	}
	return nil
}

func (s *storeImpl) Delete(key string) (bool, error) {
	if err := s.require(db.FeatureDelete, "Delete"); err != nil {
		return false, err
	}
	s.bulk.RLock()
	defer s.bulk.RUnlock()
	return s.db.Delete(key, s.incAndGetIndex()), nil
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	if err := s.require(db.FeatureGet, "Get"); err != nil {
		return nil, false, err
	}
	val, ok := s.db.Get(key)
	return val, ok, nil
}

func (s *storeImpl) MGet(keys []string) ([][]byte, []bool, error) {
	if err := s.require(db.FeatureGet, "MGet"); err != nil {
		return nil, nil, err
	}
	s.bulk.Lock()
	defer s.bulk.Unlock()
	values := make([][]byte, len(keys))
	oks := make([]bool, len(keys))
	for i, key := range keys {
		values[i], oks[i] = s.db.Get(key)
	}
	return values, oks, nil
}

func (s *storeImpl) Has(key string) (bool, error) {
	if err := s.require(db.FeatureHas, "Has"); err != nil {
		return false, err
	}
	return s.db.Has(key), nil
}

func (s *storeImpl) Scan(prefix string) ([]string, error) {
	if err := s.require(db.FeatureScan, "Scan"); err != nil {
		return nil, err
	}
	return s.db.Scan(prefix), nil
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	return s.db.GetInfo(), nil
}

// --------------------------------------------------------------------------
// Snapshots
// --------------------------------------------------------------------------

func (s *storeImpl) Save(w io.Writer) error {
	if err := s.require(db.FeatureSave, "Save"); err != nil {
		return err
	}
	s.bulk.Lock()
	defer s.bulk.Unlock()
	if err := s.db.Save(w); err != nil {
		return store.NewError(store.RetCInternalError, err.Error())
	}
	return nil
}

func (s *storeImpl) Load(r io.Reader) error {
	if err := s.require(db.FeatureLoad, "Load"); err != nil {
		return err
	}
	s.bulk.Lock()
	defer s.bulk.Unlock()
	if err := s.db.Load(r); err != nil {
		return store.NewError(store.RetCInternalError, err.Error())
	}
	// continue counting after the restored entries
	s.index.Store(s.db.WriteIdx())
	return nil
}

// SaveFile writes a snapshot of s to path. The file is replaced atomically.
func SaveFile(s Snapshotter, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := s.Save(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadFile restores s from the snapshot at path.
// A missing file is not an error, s is left empty.
func LoadFile(s Snapshotter, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return s.Load(f)
}

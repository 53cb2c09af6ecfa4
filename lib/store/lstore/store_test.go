package lstore

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/kvsub/lib/db"
	"github.com/ValentinKolb/kvsub/lib/db/engines/maple"
	"github.com/ValentinKolb/kvsub/lib/store"
	storetesting "github.com/ValentinKolb/kvsub/lib/store/testing"
)

func newStore() Store {
	return NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
}

func TestLocalStore(t *testing.T) {
	storetesting.RunIStoreTests(t, "LocalStore", func() store.IStore {
		return newStore()
	})
}

func TestFaultyStorePassThrough(t *testing.T) {
	storetesting.RunIStoreTests(t, "FaultyStore", func() store.IStore {
		return storetesting.NewFaultyStore(newStore())
	})
}

func TestSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "app.snapshot")

	// loading a missing file leaves the store empty
	empty := newStore()
	if err := LoadFile(empty, path); err != nil {
		t.Fatalf("Unexpected error loading missing snapshot: %v", err)
	}

	src := newStore()
	_ = src.MSet([]string{"app/users/1", "app/users/2"}, [][]byte{[]byte("a"), []byte("b")})
	if err := SaveFile(src, path); err != nil {
		t.Fatalf("Unexpected error during SaveFile: %v", err)
	}

	dst := newStore()
	if err := LoadFile(dst, path); err != nil {
		t.Fatalf("Unexpected error during LoadFile: %v", err)
	}

	v, ok, _ := dst.Get("app/users/2")
	if !ok || !bytes.Equal(v, []byte("b")) {
		t.Errorf("Expected restored value, got %s (%v)", v, ok)
	}

	// writes after a restore must not be treated as stale
	_ = dst.Set("app/users/1", []byte("new"))
	if v, _, _ := dst.Get("app/users/1"); !bytes.Equal(v, []byte("new")) {
		t.Errorf("Expected write after restore to win, got %s", v)
	}
}

package testing

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/kvsub/lib/store"
)

// StoreFactory creates a new, empty store instance
type StoreFactory func() store.IStore

// RunIStoreTests runs the conformance suite against a store implementation.
func RunIStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("MSet&MGet", func(t *testing.T) {
			testMSetMGet(t, factory())
		})

		t.Run("MSetMismatch", func(t *testing.T) {
			testMSetMismatch(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Scan", func(t *testing.T) {
			testScan(t, factory())
		})

		t.Run("BulkAtomicity", func(t *testing.T) {
			testBulkAtomicity(t, factory())
		})

		t.Run("DBInfo", func(t *testing.T) {
			testDBInfo(t, factory())
		})
	})
}

func testSetGet(t *testing.T, s store.IStore) {
	if err := s.Set("app/users/1", []byte(`{"id":1}`)); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}

	value, ok, err := s.Get("app/users/1")
	if err != nil || !ok {
		t.Fatalf("Expected key to exist, ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(value, []byte(`{"id":1}`)) {
		t.Errorf("Unexpected value %s", value)
	}

	if _, ok, err = s.Get("app/users/2"); err != nil || ok {
		t.Errorf("Expected miss for unknown key, ok=%v err=%v", ok, err)
	}

	if ok, err = s.Has("app/users/1"); err != nil || !ok {
		t.Errorf("Expected Has to report existing key, ok=%v err=%v", ok, err)
	}
}

func testMSetMGet(t *testing.T, s store.IStore) {
	keys := []string{"a/s/1", "a/s/2", "a/s/3"}
	values := [][]byte{[]byte("one"), []byte("two"), []byte("three")}

	if err := s.MSet(keys, values); err != nil {
		t.Fatalf("Unexpected error during MSet: %v", err)
	}

	got, oks, err := s.MGet([]string{"a/s/3", "a/s/missing", "a/s/1"})
	if err != nil {
		t.Fatalf("Unexpected error during MGet: %v", err)
	}
	if len(got) != 3 || len(oks) != 3 {
		t.Fatalf("Expected 3 results, got %d values and %d flags", len(got), len(oks))
	}
	if !oks[0] || !bytes.Equal(got[0], []byte("three")) {
		t.Errorf("Unexpected first result %s (%v)", got[0], oks[0])
	}
	if oks[1] || got[1] != nil {
		t.Errorf("Expected miss in the middle, got %s (%v)", got[1], oks[1])
	}
	if !oks[2] || !bytes.Equal(got[2], []byte("one")) {
		t.Errorf("Unexpected last result %s (%v)", got[2], oks[2])
	}

	// empty batches are allowed
	if err := s.MSet(nil, nil); err != nil {
		t.Errorf("Unexpected error for empty MSet: %v", err)
	}
	if got, _, err := s.MGet(nil); err != nil || len(got) != 0 {
		t.Errorf("Expected empty MGet result, got %v err=%v", got, err)
	}
}

func testMSetMismatch(t *testing.T, s store.IStore) {
	err := s.MSet([]string{"k1", "k2"}, [][]byte{[]byte("v1")})
	if err == nil {
		t.Fatalf("Expected error for mismatched MSet")
	}
	var storeErr *store.Error
	if !errors.As(err, &storeErr) || storeErr.Code != store.RetCInvalidOperation {
		t.Errorf("Expected RetCInvalidOperation, got %v", err)
	}
	if ok, _ := s.Has("k1"); ok {
		t.Errorf("Rejected MSet must not write anything")
	}
}

func testDelete(t *testing.T, s store.IStore) {
	_ = s.Set("del/key", []byte("v"))

	deleted, err := s.Delete("del/key")
	if err != nil || !deleted {
		t.Errorf("Expected Delete to report existing key, deleted=%v err=%v", deleted, err)
	}
	deleted, err = s.Delete("del/key")
	if err != nil || deleted {
		t.Errorf("Expected second Delete to report missing key, deleted=%v err=%v", deleted, err)
	}
	if ok, _ := s.Has("del/key"); ok {
		t.Errorf("Expected key to be gone after Delete")
	}
}

func testScan(t *testing.T, s store.IStore) {
	_ = s.MSet(
		[]string{"app/users/b", "app/users/a", "app/orders/1", "app_blueprint"},
		[][]byte{[]byte("b"), []byte("a"), []byte("o"), []byte("{}")},
	)

	keys, err := s.Scan("app/users/")
	if err != nil {
		t.Fatalf("Unexpected error during Scan: %v", err)
	}
	if fmt.Sprint(keys) != fmt.Sprint([]string{"app/users/a", "app/users/b"}) {
		t.Errorf("Unexpected scan result %v", keys)
	}

	keys, err = s.Scan("app/nothing/")
	if err != nil || len(keys) != 0 {
		t.Errorf("Expected empty scan, got %v err=%v", keys, err)
	}
}

func testBulkAtomicity(t *testing.T, s store.IStore) {
	keys := []string{"bulk/1", "bulk/2", "bulk/3", "bulk/4"}
	batch := func(v string) [][]byte {
		out := make([][]byte, len(keys))
		for i := range out {
			out[i] = []byte(v)
		}
		return out
	}
	_ = s.MSet(keys, batch("x"))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = s.MSet(keys, batch(fmt.Sprint(i%2)))
		}
	}()

	var torn int
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			values, _, err := s.MGet(keys)
			if err != nil {
				continue
			}
			for _, v := range values[1:] {
				if !bytes.Equal(v, values[0]) {
					torn++
					break
				}
			}
		}
	}()
	wg.Wait()

	if torn > 0 {
		t.Errorf("MGet observed %d partially applied MSet batches", torn)
	}
}

func testDBInfo(t *testing.T, s store.IStore) {
	_ = s.Set("info/1", []byte("v"))
	info, err := s.GetDBInfo()
	if err != nil {
		t.Fatalf("Unexpected error during GetDBInfo: %v", err)
	}
	if info.DbType == "" {
		t.Errorf("Expected db type to be set")
	}
}

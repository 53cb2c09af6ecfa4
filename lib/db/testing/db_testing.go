package testing

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/kvsub/lib/db"
)

// DBFactory is a function that creates a new instance of a KVDB implementation
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("Scan", func(t *testing.T) {
			testScan(t, factory())
		})

		t.Run("StaleWrites", func(t *testing.T) {
			testStaleWrites(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("ConcurrentUsage", func(t *testing.T) {
			testConcurrentUsage(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	testKey := "users:alice"
	testValue1 := []byte(`{"age":30}`)
	testValue2 := []byte(`{"age":31}`)

	database.Set(testKey, testValue1, 1)

	result, exists := database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	database.Set(testKey, testValue2, 2)

	result, exists = database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after overwrite", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	if _, exists = database.Get("nonexistent-key"); exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	// Get must hand out a copy
	retrieved, _ := database.Get(testKey)
	retrieved[0] = 'X'
	original, _ := database.Get(testKey)
	if bytes.Equal(retrieved, original) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}

	// Set must store a copy
	input := []byte("mutable")
	database.Set("copy-key", input, 3)
	input[0] = 'X'
	stored, _ := database.Get("copy-key")
	if !bytes.Equal(stored, []byte("mutable")) {
		t.Errorf("Set should copy the value, got %s", stored)
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	database.Set("delete-key", []byte("value"), 1)

	if !database.Delete("delete-key", 2) {
		t.Errorf("Expected Delete to report an existing key")
	}
	if _, exists := database.Get("delete-key"); exists {
		t.Errorf("Expected key to be gone after Delete")
	}
	if database.Delete("delete-key", 3) {
		t.Errorf("Expected second Delete to report a missing key")
	}
	if database.Delete("never-existed", 4) {
		t.Errorf("Expected Delete of unknown key to report false")
	}
	if database.Has("never-existed") {
		t.Errorf("Delete must not create the key")
	}
}

func testHas(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureHas|db.FeatureDelete)

	if database.Has("has-key") {
		t.Errorf("Expected Has to return false before Set")
	}
	database.Set("has-key", []byte("value"), 1)
	if !database.Has("has-key") {
		t.Errorf("Expected Has to return true after Set")
	}
	database.Delete("has-key", 2)
	if database.Has("has-key") {
		t.Errorf("Expected Has to return false after Delete")
	}
}

func testScan(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureScan|db.FeatureDelete)

	database.Set("users:bob", []byte("b"), 1)
	database.Set("users:alice", []byte("a"), 2)
	database.Set("users_blueprint", []byte("x"), 3)
	database.Set("orders:1", []byte("o"), 4)
	database.Set("users:carol", []byte("c"), 5)

	keys := database.Scan("users:")
	expected := []string{"users:alice", "users:bob", "users:carol"}
	if fmt.Sprint(keys) != fmt.Sprint(expected) {
		t.Errorf("Expected %v, got %v", expected, keys)
	}

	database.Delete("users:bob", 6)
	keys = database.Scan("users:")
	if len(keys) != 2 {
		t.Errorf("Expected 2 keys after delete, got %v", keys)
	}

	if all := database.Scan(""); len(all) != 4 {
		t.Errorf("Expected empty prefix to match all 4 keys, got %v", all)
	}

	if none := database.Scan("missing:"); len(none) != 0 {
		t.Errorf("Expected no keys for unknown prefix, got %v", none)
	}
}

func testStaleWrites(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	database.Set("stale-key", []byte("new"), 10)
	database.Set("stale-key", []byte("old"), 5)

	if v, _ := database.Get("stale-key"); !bytes.Equal(v, []byte("new")) {
		t.Errorf("Expected stale write to be ignored, got %s", v)
	}

	if database.Delete("stale-key", 7) {
		t.Errorf("Expected stale delete to be ignored")
	}
	if !database.Has("stale-key") {
		t.Errorf("Expected key to survive stale delete")
	}

	if database.WriteIdx() != 10 {
		t.Errorf("Expected write index 10, got %d", database.WriteIdx())
	}
	database.SetWriteIdx(3)
	if database.WriteIdx() != 10 {
		t.Errorf("Expected write index to never decrease, got %d", database.WriteIdx())
	}
}

func testSaveLoad(t *testing.T, factory DBFactory) {
	database := factory()
	database2 := factory()

	defer database.Close()
	defer database2.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureSave|db.FeatureLoad|db.FeatureScan)

	numEntries := 1000
	for i := 0; i < numEntries; i++ {
		key := fmt.Sprintf("sub:%04d", i)
		database.Set(key, []byte(fmt.Sprintf("value-%d", i)), uint64(i+1))
	}

	// key that must be dropped by Load
	database2.Set("leftover", []byte("x"), 1)

	var buf bytes.Buffer
	if err := database.Save(&buf); err != nil {
		t.Fatalf("Unexpected error during Save: %v", err)
	}
	if err := database2.Load(&buf); err != nil {
		t.Fatalf("Unexpected error during Load: %v", err)
	}

	for i := 0; i < numEntries; i++ {
		key := fmt.Sprintf("sub:%04d", i)
		actual, exists := database2.Get(key)
		if !exists {
			t.Errorf("Key %s not found after Load", key)
			continue
		}
		if expected := []byte(fmt.Sprintf("value-%d", i)); !bytes.Equal(actual, expected) {
			t.Errorf("Value mismatch for key %s: expected %s, got %s", key, expected, actual)
		}
	}

	if database2.Has("leftover") {
		t.Errorf("Expected Load to replace the existing state")
	}
	if len(database2.Scan("sub:")) != numEntries {
		t.Errorf("Expected %d keys after Load", numEntries)
	}
	if database2.WriteIdx() != uint64(numEntries) {
		t.Errorf("Expected write index %d after Load, got %d", numEntries, database2.WriteIdx())
	}

	// garbage must be rejected
	if err := database2.Load(bytes.NewReader([]byte("not a snapshot"))); err == nil {
		t.Errorf("Expected error when loading garbage")
	}
}

func testEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	database.Set("", []byte("value for empty key"), 1)
	if result, exists := database.Get(""); !exists || !bytes.Equal(result, []byte("value for empty key")) {
		t.Errorf("Empty key not stored correctly")
	}

	database.Set("nil-value-key", nil, 2)
	if result, exists := database.Get("nil-value-key"); !exists {
		t.Errorf("Key for nil value not found after Set")
	} else if len(result) != 0 {
		t.Errorf("Nil value resulted in non-empty value: %v", result)
	}

	largeKey := string(make([]byte, 1000))
	database.Set(largeKey, []byte("large"), 3)
	if _, exists := database.Get(largeKey); !exists {
		t.Errorf("Large key not found after Set")
	}

	largeValue := make([]byte, 4*1024*1024)
	for i := range largeValue {
		largeValue[i] = byte(i % 256)
	}
	database.Set("large-value-key", largeValue, 4)
	if result, _ := database.Get("large-value-key"); !bytes.Equal(result, largeValue) {
		t.Errorf("Large value mismatch")
	}
}

func testConcurrentUsage(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete|db.FeatureScan)

	const (
		numWorkers   = 8
		keysPerWoker = 500
	)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < keysPerWoker; i++ {
				key := fmt.Sprintf("w%d:%d", w, i)
				database.Set(key, []byte(key), uint64(i+1))
				database.Get(key)
				if i%2 == 1 {
					database.Delete(key, uint64(i+1))
				}
				database.Scan(fmt.Sprintf("w%d:", w))
			}
		}(w)
	}
	wg.Wait()

	for w := 0; w < numWorkers; w++ {
		keys := database.Scan(fmt.Sprintf("w%d:", w))
		if len(keys) != keysPerWoker/2 {
			t.Errorf("Worker %d: expected %d keys, got %d", w, keysPerWoker/2, len(keys))
		}
		for _, key := range keys {
			if v, ok := database.Get(key); !ok || string(v) != key {
				t.Errorf("Unexpected value for %s: %s", key, v)
			}
		}
	}
}

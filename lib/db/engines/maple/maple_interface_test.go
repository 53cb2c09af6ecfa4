package maple

import (
	"testing"

	"github.com/ValentinKolb/kvsub/lib/db"
	dbtesting "github.com/ValentinKolb/kvsub/lib/db/testing"
)

func Test(t *testing.T) {
	dbtesting.RunKVDBTests(t, "MapleDB", func() db.KVDB {
		return NewMapleDB(nil)
	})
}

func TestSingleShard(t *testing.T) {
	dbtesting.RunKVDBTests(t, "MapleDB(1 shard)", func() db.KVDB {
		return NewMapleDB(&DBOptions{NumShards: 1})
	})
}

func TestGetInfo(t *testing.T) {
	database := NewMapleDB(&DBOptions{NumShards: 4})
	defer database.Close()

	for i := 0; i < 50; i++ {
		database.Set(string(rune('a'+i%26))+":key", []byte("value"), uint64(i+1))
	}

	info := database.GetInfo()
	if info.DbType != db.ImplMaple {
		t.Errorf("Expected db type %s, got %s", db.ImplMaple, info.DbType)
	}
	if info.KeyCount != 26 {
		t.Errorf("Expected 26 keys, got %d", info.KeyCount)
	}
	if info.SizeBytes <= 0 {
		t.Errorf("Expected positive size estimate, got %d", info.SizeBytes)
	}
	if !database.SupportsFeature(db.FeatureScan | db.FeatureDelete) {
		t.Errorf("Expected maple to support Scan and Delete")
	}
}

func Benchmark(b *testing.B) {
	dbtesting.RunKVDBBenchmarks(b, "MapleDB", func() db.KVDB {
		return NewMapleDB(nil)
	})
}

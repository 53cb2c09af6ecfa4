package server

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ValentinKolb/kvsub/lib/db"
	"github.com/ValentinKolb/kvsub/lib/db/engines/maple"
	"github.com/ValentinKolb/kvsub/lib/store"
	"github.com/ValentinKolb/kvsub/lib/store/lstore"
	storetesting "github.com/ValentinKolb/kvsub/lib/store/testing"
	"github.com/ValentinKolb/kvsub/rpc/client"
	"github.com/ValentinKolb/kvsub/rpc/common"
	"github.com/ValentinKolb/kvsub/rpc/serializer"
	"github.com/ValentinKolb/kvsub/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
)

// loopback connects a client directly to the handler of a server transport
type loopback struct {
	handler transport.ServerHandleFunc
}

func (l *loopback) RegisterHandler(handler transport.ServerHandleFunc) { l.handler = handler }
func (l *loopback) Listen(common.ServerConfig) error                   { return nil }
func (l *loopback) Shutdown() error                                    { return nil }
func (l *loopback) Connect(common.ClientConfig) error                  { return nil }
func (l *loopback) Close() error                                       { return nil }

func (l *loopback) Send(shardId uint64, req []byte) ([]byte, error) {
	return l.handler(shardId, req), nil
}

// startServer initializes a server with one local shard (100) on a loopback transport
func startServer(t *testing.T, ser serializer.IRPCSerializer, dataDir string) (*RPCServer, *loopback) {
	t.Helper()
	lb := &loopback{}
	s := NewRPCServer(common.ServerConfig{
		Shards:   []common.ServerShard{{ShardID: 100, Type: common.ShardTypeLocalIStore}},
		DataDir:  dataDir,
		LogLevel: "error",
	}, lb, ser)
	if err := s.init(); err != nil {
		t.Fatalf("Failed to init server: %v", err)
	}
	return s, lb
}

func newClient(t *testing.T, lb *loopback, shardId uint64, ser serializer.IRPCSerializer) store.IStore {
	t.Helper()
	c, err := client.NewRPCStore(shardId, common.ClientConfig{Endpoints: []string{"loopback"}}, lb, ser)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

// TestRPCStore runs the store conformance suite through client, serializer and server
func TestRPCStore(t *testing.T) {
	for name, ser := range map[string]serializer.IRPCSerializer{
		"Binary": serializer.NewBinarySerializer(),
		"JSON":   serializer.NewJSONSerializer(),
	} {
		storetesting.RunIStoreTests(t, name, func() store.IStore {
			_, lb := startServer(t, ser, "")
			return newClient(t, lb, 100, ser)
		})
	}
}

func TestUnknownShard(t *testing.T) {
	ser := serializer.NewBinarySerializer()
	_, lb := startServer(t, ser, "")
	c := newClient(t, lb, 7, ser)

	err := c.Set("k", []byte("v"))
	if err == nil || !strings.Contains(err.Error(), "shard 7 not found") {
		t.Errorf("Expected shard not found error, got %v", err)
	}
}

func TestInvalidRequest(t *testing.T) {
	ser := serializer.NewBinarySerializer()
	s, _ := startServer(t, ser, "")

	var resp common.Message
	if err := ser.Deserialize(s.handle(100, []byte{1}), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.MsgType != common.MsgTError || !strings.Contains(resp.Err, "deserialize") {
		t.Errorf("Expected deserialize error, got %+v", resp)
	}
}

func TestAdapterUnsupportedType(t *testing.T) {
	adapter := NewIStoreServerAdapter()
	s := lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })

	resp := adapter.Handle(&common.Message{MsgType: common.MsgTSuccess}, s)
	if resp.MsgType != common.MsgTError || resp.Err == "" {
		t.Errorf("Expected error response, got %+v", resp)
	}

	resp = adapter.Handle(&common.Message{MsgType: common.MsgTKVGet}, nil)
	if resp.Err == "" {
		t.Errorf("Expected error for nil store")
	}
}

func TestLocalShardSnapshot(t *testing.T) {
	ser := serializer.NewBinarySerializer()
	dir := t.TempDir()

	s, lb := startServer(t, ser, dir)
	if err := newClient(t, lb, 100, ser).Set("app/users/1", []byte(`{"uid":1}`)); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}
	if err := s.Shutdown(); err != nil {
		t.Fatalf("Unexpected error during Shutdown: %v", err)
	}

	_, lb = startServer(t, ser, dir)
	value, ok, err := newClient(t, lb, 100, ser).Get("app/users/1")
	if err != nil || !ok {
		t.Fatalf("Expected key to survive the restart, ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(value, []byte(`{"uid":1}`)) {
		t.Errorf("Unexpected value %s", value)
	}
}

func TestRequestMetrics(t *testing.T) {
	ser := serializer.NewBinarySerializer()
	_, lb := startServer(t, ser, "")
	c := newClient(t, lb, 100, ser)

	before := requestCounter(common.MsgTKVScan).Get()
	if _, err := c.Scan("app/"); err != nil {
		t.Fatalf("Unexpected error during Scan: %v", err)
	}
	if got := requestCounter(common.MsgTKVScan).Get(); got != before+1 {
		t.Errorf("Expected scan counter %d, got %d", before+1, got)
	}

	var buf bytes.Buffer
	metrics.WritePrometheus(&buf, false)
	if !strings.Contains(buf.String(), `kvsub_rpc_requests_total{type="scan"}`) {
		t.Errorf("Expected request counter in metrics output:\n%s", buf.String())
	}
}

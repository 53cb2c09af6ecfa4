package server

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ValentinKolb/kvsub/lib/db"
	"github.com/ValentinKolb/kvsub/lib/db/engines/maple"
	"github.com/ValentinKolb/kvsub/lib/store"
	"github.com/ValentinKolb/kvsub/lib/store/dstore"
	"github.com/ValentinKolb/kvsub/lib/store/lstore"
	"github.com/ValentinKolb/kvsub/rpc/common"
	"github.com/ValentinKolb/kvsub/rpc/serializer"
	"github.com/ValentinKolb/kvsub/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc")

// serverShard is a shard of the RPC server: the store it encapsulates and
// the adapter that handles requests for the store
type serverShard struct {
	Store   store.IStore
	Adapter IRPCServerAdapter
	// snapshot is the file a local store is persisted to, empty for remote stores
	snapshot string
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		shards:     xsync.NewMapOf[uint64, serverShard](),
	}
}

type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	shards     *xsync.MapOf[uint64, serverShard]
	nodeHost   *dragonboat.NodeHost
}

// handle decodes a request for a shard, lets the shard adapter handle it and
// returns the encoded response
func (s *RPCServer) handle(shardId uint64, req []byte) []byte {
	var msg common.Message
	var respMsg *common.Message

	if shard, ok := s.shards.Load(shardId); !ok {
		respMsg = common.NewErrorResponse(fmt.Sprintf("shard %d not found", shardId))
	} else if err := s.serializer.Deserialize(req, &msg); err != nil {
		respMsg = common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
	} else {
		requestCounter(msg.MsgType).Inc()
		respMsg = shard.Adapter.Handle(&msg, shard.Store)
	}

	if respMsg.Err != "" {
		metrics.GetOrCreateCounter(`kvsub_rpc_errors_total`).Inc()
		Logger.Debugf("shard %d: %s failed: %s", shardId, msg.MsgType, respMsg.Err)
	}

	val, err := s.serializer.Serialize(*respMsg)
	if err != nil {
		Logger.Errorf("failed to serialize response: %v", err)
		val, _ = s.serializer.Serialize(*common.NewErrorResponse(fmt.Sprintf("failed to serialize response: %s", err)))
	}
	return val
}

// requestCounter returns the request counter of a message type in the default metrics set
func requestCounter(t common.MessageType) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`kvsub_rpc_requests_total{type=%q}`, t.String()))
}

func (s *RPCServer) init() error {

	// Init logger
	if err := common.InitLoggers(s.config.LogLevel); err != nil {
		return err
	}

	// Function to create a new database instance
	dbFactory := func() db.KVDB { return maple.NewMapleDB(nil) }

	// Only create the NodeHost if we have remote shards
	if s.config.HasRemoteShard() {
		nodeHost, err := dragonboat.NewNodeHost(s.config.ToNodeHostConfig())
		if err != nil {
			return fmt.Errorf("failed to create node host: %w", err)
		}
		s.nodeHost = nodeHost
	}

	timeout := time.Duration(s.config.TimeoutSecond) * time.Second

	// A single RPC server can hold any number of local and remote shards
	for _, shardConfig := range s.config.Shards {
		switch shardConfig.Type {
		case common.ShardTypeLocalIStore:
			shard := serverShard{Adapter: NewIStoreServerAdapter()}
			local := lstore.NewLocalStore(dbFactory)
			if s.config.DataDir != "" {
				shard.snapshot = filepath.Join(s.config.DataDir, fmt.Sprintf("shard-%d.snapshot", shardConfig.ShardID))
				if err := lstore.LoadFile(local, shard.snapshot); err != nil {
					return fmt.Errorf("failed to load shard %d: %w", shardConfig.ShardID, err)
				}
			}
			shard.Store = local
			s.shards.Store(shardConfig.ShardID, shard)
			Logger.Infof("created local store for shard %d", shardConfig.ShardID)

		case common.ShardTypeRemoteIStore:
			if s.nodeHost == nil {
				return fmt.Errorf("node host is nil, cannot create remote store")
			}

			// Start Raft for the shard
			if err := s.nodeHost.StartConcurrentReplica(s.config.ClusterMembers, false, dstore.CreateStateMaschineFactory(dbFactory), s.config.ToDragonboatConfig(shardConfig.ShardID)); err != nil {
				Logger.Errorf("failed to start shard %v: %v", shardConfig.ShardID, err)
			}

			s.shards.Store(shardConfig.ShardID, serverShard{
				Store:   dstore.NewDistributedStore(s.nodeHost, shardConfig.ShardID, timeout),
				Adapter: NewIStoreServerAdapter(),
			})
			Logger.Infof("created remote store for shard %d", shardConfig.ShardID)

		default:
			return fmt.Errorf("invalid shard type: %s", shardConfig.Type)
		}
	}

	Logger.Infof("kvsub setup completed successfully")

	// Configure the transport layer
	s.transport.RegisterHandler(s.handle)

	return nil
}

// Serve initializes the shards and starts the transport layer.
// It blocks until the transport stops.
func (s *RPCServer) Serve() error {
	if err := s.init(); err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}

// Shutdown stops the transport, writes the snapshots of local shards and
// closes the node host
func (s *RPCServer) Shutdown() error {
	errs := []error{s.transport.Shutdown()}

	s.shards.Range(func(id uint64, shard serverShard) bool {
		if shard.snapshot == "" {
			return true
		}
		if snap, ok := shard.Store.(lstore.Snapshotter); ok {
			if err := lstore.SaveFile(snap, shard.snapshot); err != nil {
				errs = append(errs, fmt.Errorf("failed to save shard %d: %w", id, err))
			} else {
				Logger.Infof("saved shard %d to %s", id, shard.snapshot)
			}
		}
		return true
	})

	if s.nodeHost != nil {
		s.nodeHost.Close()
	}
	return errors.Join(errs...)
}

// Package server implements the RPC server of the key-value store.
//
// A server holds any number of shards. Each shard wraps a store.IStore and an
// IRPCServerAdapter that translates request messages into store calls. Requests
// arrive through an IRPCServerTransport, are decoded with the configured serializer
// and routed to the shard named by the transport.
//
// Shard types:
//
//   - ShardTypeLocalIStore: an lstore on top of the maple engine. With a DataDir
//     configured the shard is restored from {DataDir}/shard-{id}.snapshot on start
//     and written back on Shutdown.
//
//   - ShardTypeRemoteIStore: a dstore replicated with Raft. The RAFT parameters
//     (RTTMillisecond, SnapshotEntries, CompactionOverhead, DataDir, ReplicaID and
//     ClusterMembers) must be set.
//
// Every decoded request increments kvsub_rpc_requests_total{type="..."} and every
// error response increments kvsub_rpc_errors_total in the default VictoriaMetrics set.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Shards: []common.ServerShard{
//	    {ShardID: 100, Type: common.ShardTypeLocalIStore},
//	  },
//	  Endpoint:    "0.0.0.0:8080",
//	  MetricsPath: "/metrics",
//	  LogLevel:    "info",
//	}
//
//	s := server.NewRPCServer(config, http.NewHttpServerTransport(), serializer.NewBinarySerializer())
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Thread Safety:
//
//	Requests are handled concurrently. Serve and Shutdown should be called once.
package server

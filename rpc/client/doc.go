// Package client implements the RPC client of the key-value store.
//
// NewRPCStore returns a store.IStore whose operations are sent to one shard of a
// remote server via the configured transport and serializer. Because the client
// satisfies store.IStore, a cache.Cache can run on top of a remote shard exactly
// as it runs on a local store.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  Endpoints:     []string{"localhost:8080"},
//	  TimeoutSecond: 5,
//	  RetryCount:    3,
//	}
//
//	s, err := client.NewRPCStore(100, config, http.NewHttpClientTransport(), serializer.NewBinarySerializer())
//	if err != nil {
//	  return err
//	}
//
//	c, err := cache.New("app", s, blueprint.NewStorePersister(s, "app"))
//
// Errors reported by the server are returned as errors with the server message.
// A response of another type than the request is treated as a protocol error.
//
// Thread Safety:
//
//	The client is safe for concurrent use.
package client

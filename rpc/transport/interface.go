package transport

import (
	"github.com/ValentinKolb/kvsub/rpc/common"
)

// ServerHandleFunc answers one encoded request addressed to a shard.
// Transports call it for every request they receive and write back the returned bytes.
type ServerHandleFunc func(shardId uint64, req []byte) (resp []byte)

// IRPCServerTransport accepts requests from the network and hands them to a ServerHandleFunc
type IRPCServerTransport interface {
	// RegisterHandler sets the function that answers requests. It must be called before Listen.
	RegisterHandler(handler ServerHandleFunc)
	// Listen serves requests until Shutdown is called
	Listen(config common.ServerConfig) error
	Shutdown() error
}

// IRPCClientTransport delivers encoded requests to a server
type IRPCClientTransport interface {
	Connect(config common.ClientConfig) error
	// Send delivers req to the shard and returns the raw response
	Send(shardId uint64, req []byte) (resp []byte, err error)
	Close() error
}

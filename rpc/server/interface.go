package server

import (
	"github.com/ValentinKolb/kvsub/lib/store"
	"github.com/ValentinKolb/kvsub/rpc/common"
)

// IRPCServerAdapter executes a decoded request against the store of a shard.
// Failures are reported inside the returned message, never as a nil response.
type IRPCServerAdapter interface {
	Handle(req *common.Message, s store.IStore) (resp *common.Message)
}

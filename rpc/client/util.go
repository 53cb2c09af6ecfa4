package client

import (
	"fmt"

	"github.com/ValentinKolb/kvsub/rpc/common"
	"github.com/ValentinKolb/kvsub/rpc/serializer"
	"github.com/ValentinKolb/kvsub/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter binds a transport and a serializer to one shard
type rpcClientAdapter struct {
	shardId    uint64
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// call performs one round trip. Error responses and responses whose
// type differs from the request are turned into errors.
func (a *rpcClientAdapter) call(req *common.Message) (*common.Message, error) {
	payload, err := a.serializer.Serialize(*req)
	if err != nil {
		return nil, fmt.Errorf("rpc client: encode %s: %w", req.MsgType, err)
	}

	raw, err := a.transport.Send(a.shardId, payload)
	if err != nil {
		return nil, fmt.Errorf("rpc client: send %s to shard %d: %w", req.MsgType, a.shardId, err)
	}

	var resp common.Message
	if err := a.serializer.Deserialize(raw, &resp); err != nil {
		return nil, fmt.Errorf("rpc client: invalid response for %s: %w", req.MsgType, err)
	}

	switch {
	case resp.MsgType == common.MsgTError || resp.Err != "":
		return nil, fmt.Errorf("rpc client: %s failed: %s", req.MsgType, resp.Err)
	case resp.MsgType != req.MsgType:
		return nil, fmt.Errorf("rpc client: unexpected message type %s, expected %s", resp.MsgType, req.MsgType)
	}
	return &resp, nil
}

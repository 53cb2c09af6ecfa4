package server

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/kvsub/lib/store"
	"github.com/ValentinKolb/kvsub/rpc/common"
)

func NewIStoreServerAdapter() IRPCServerAdapter {
	return &iStoreServerAdapterImpl{}
}

type iStoreServerAdapterImpl struct{}

func (adapter *iStoreServerAdapterImpl) Handle(req *common.Message, store store.IStore) *common.Message {
	// Check for nil store
	if store == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTKVSet:
		err := store.Set(req.Key, req.Value)
		return common.NewSetResponse(err)
	case common.MsgTKVMSet:
		err := store.MSet(req.Keys, req.Values)
		return common.NewMSetResponse(err)
	case common.MsgTKVDelete:
		deleted, err := store.Delete(req.Key)
		return common.NewDeleteResponse(deleted, err)
	case common.MsgTKVGet:
		val, ok, err := store.Get(req.Key)
		return common.NewGetResponse(val, ok, err)
	case common.MsgTKVMGet:
		vals, oks, err := store.MGet(req.Keys)
		return common.NewMGetResponse(vals, oks, err)
	case common.MsgTKVHas:
		ok, err := store.Has(req.Key)
		return common.NewHasResponse(ok, err)
	case common.MsgTKVScan:
		keys, err := store.Scan(req.Key)
		return common.NewScanResponse(keys, err)
	case common.MsgTKVDBInfo:
		info, err := store.GetDBInfo()
		if err != nil {
			return common.NewDBInfoResponse(nil, err)
		}
		meta, err := json.Marshal(info)
		return common.NewDBInfoResponse(meta, err)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC IStoreAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}

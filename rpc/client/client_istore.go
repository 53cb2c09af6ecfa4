package client

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/kvsub/lib/db"
	"github.com/ValentinKolb/kvsub/lib/store"
	"github.com/ValentinKolb/kvsub/rpc/common"
	"github.com/ValentinKolb/kvsub/rpc/serializer"
	"github.com/ValentinKolb/kvsub/rpc/transport"
)

// NewRPCStore creates a store.IStore that forwards every operation to the given shard
// of a remote server. The transport is connected before the store is returned.
func NewRPCStore(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IStore, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	s := rpcStore{
		rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	Logger.Debugf("created rpc store for shard %d (%s)", shardId, config.String())
	return &s, nil
}

type rpcStore struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcStore) Set(key string, value []byte) (err error) {
	req := common.NewSetRequest(key, value)
	_, err = i.call(req)
	return err
}

func (i *rpcStore) MSet(keys []string, values [][]byte) (err error) {
	if err := store.CheckPairs(keys, values); err != nil {
		return err
	}
	req := common.NewMSetRequest(keys, values)
	_, err = i.call(req)
	return err
}

func (i *rpcStore) Delete(key string) (deleted bool, err error) {
	req := common.NewDeleteRequest(key)
	resp, err := i.call(req)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcStore) Get(key string) (value []byte, loaded bool, err error) {
	req := common.NewGetRequest(key)
	resp, err := i.call(req)
	if err != nil {
		return nil, false, err
	}
	return resp.Value, resp.Ok, nil
}

func (i *rpcStore) MGet(keys []string) (values [][]byte, oks []bool, err error) {
	req := common.NewMGetRequest(keys)
	resp, err := i.call(req)
	if err != nil {
		return nil, nil, err
	}
	if len(resp.Values) != len(keys) || len(resp.Oks) != len(keys) {
		return nil, nil, fmt.Errorf("rpc client: mget returned %d values and %d flags for %d keys", len(resp.Values), len(resp.Oks), len(keys))
	}
	return resp.Values, resp.Oks, nil
}

func (i *rpcStore) Has(key string) (loaded bool, err error) {
	req := common.NewHasRequest(key)
	resp, err := i.call(req)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcStore) Scan(prefix string) (keys []string, err error) {
	req := common.NewScanRequest(prefix)
	resp, err := i.call(req)
	if err != nil {
		return nil, err
	}
	return resp.Keys, nil
}

// GetDBInfo returns the info of the remote database. Metadata is decoded into generic JSON values.
func (i *rpcStore) GetDBInfo() (info db.DatabaseInfo, err error) {
	req := common.NewDBInfoRequest()
	resp, err := i.call(req)
	if err != nil {
		return db.DatabaseInfo{}, err
	}
	if err := json.Unmarshal(resp.Meta, &info); err != nil {
		return db.DatabaseInfo{}, fmt.Errorf("rpc client: invalid db info: %w", err)
	}
	return info, nil
}

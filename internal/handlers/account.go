package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hiero-ledger/relay-gateway/internal/dispatch"
	"github.com/hiero-ledger/relay-gateway/internal/eth"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

func registerAccountMethods(b *dispatch.Builder, s *eth.Service) {
	b.Register(dispatch.MethodDescriptor{
		Name: "eth_getBalance",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamAddress, Required: true, CustomErrMsg: "a valid address is required"},
			{Type: dispatch.ParamBlockNumber, Required: true, CustomErrMsg: "a block number or tag is required"},
		},
		Cache: dispatch.CachePolicy{Enabled: true, TTL: balanceCacheTTL, Uncacheable: uncacheableBlockTag(1)},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			address, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			tag, err := decodeString(rc.RequestID, params, 1)
			if err != nil {
				return nil, err
			}
			return s.GetBalanceAtBlock(ctx, rc, address, tag, time.Now().Unix())
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name: "eth_getCode",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamAddress, Required: true, CustomErrMsg: "a valid address is required"},
			{Type: dispatch.ParamBlockNumber, Required: true, CustomErrMsg: "a block number or tag is required"},
		},
		Cache: dispatch.CachePolicy{Enabled: true, TTL: balanceCacheTTL},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			address, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			return s.GetCode(ctx, rc, address)
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name: "eth_getStorageAt",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamAddress, Required: true, CustomErrMsg: "a valid address is required"},
			{Type: dispatch.ParamHex, Required: true, CustomErrMsg: "a storage slot is required"},
			{Type: dispatch.ParamBlockNumber, Required: true, CustomErrMsg: "a block number or tag is required"},
		},
		Cache: dispatch.CachePolicy{Enabled: true, TTL: balanceCacheTTL},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			address, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			slot, err := decodeString(rc.RequestID, params, 1)
			if err != nil {
				return nil, err
			}
			return s.GetStorageAt(ctx, rc, address, slot)
		},
	})
}

const balanceCacheTTL = 10 * time.Second

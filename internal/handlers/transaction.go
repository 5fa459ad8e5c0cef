package handlers

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/hiero-ledger/relay-gateway/internal/dispatch"
	"github.com/hiero-ledger/relay-gateway/internal/eth"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

func registerTransactionMethods(b *dispatch.Builder, s *eth.Service) {
	b.Register(dispatch.MethodDescriptor{
		Name: "eth_getTransactionByHash",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamTransactionHash, Required: true, CustomErrMsg: "a transaction hash is required"},
		},
		Cache: dispatch.CachePolicy{Enabled: true, TTL: blockCacheTTL},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			hash, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			tx, err := s.GetTransactionByHash(ctx, rc, hash)
			if err != nil {
				return nil, err
			}
			if tx == nil {
				return nil, nil
			}
			return tx, nil
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name: "eth_getTransactionByBlockHashAndIndex",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamHex, Required: true, CustomErrMsg: "a block hash is required"},
			{Type: dispatch.ParamHex, Required: true, CustomErrMsg: "a transaction index is required"},
		},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			hash, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			idxHex, err := decodeString(rc.RequestID, params, 1)
			if err != nil {
				return nil, err
			}
			idx, err := hexutil.DecodeUint64(idxHex)
			if err != nil {
				return nil, invalidIndex(rc.RequestID)
			}
			tx, err := s.GetTransactionByBlockHashAndIndex(ctx, rc, hash, int64(idx))
			if err != nil {
				return nil, err
			}
			if tx == nil {
				return nil, nil
			}
			return tx, nil
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name: "eth_getTransactionByBlockNumberAndIndex",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamBlockNumber, Required: true, CustomErrMsg: "a block number or tag is required"},
			{Type: dispatch.ParamHex, Required: true, CustomErrMsg: "a transaction index is required"},
		},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			tag, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			number, err := s.ResolveBlockNumberOrTag(ctx, rc, tag)
			if err != nil {
				return nil, err
			}
			idxHex, err := decodeString(rc.RequestID, params, 1)
			if err != nil {
				return nil, err
			}
			idx, err := hexutil.DecodeUint64(idxHex)
			if err != nil {
				return nil, invalidIndex(rc.RequestID)
			}
			tx, err := s.GetTransactionByBlockNumberAndIndex(ctx, rc, number, int64(idx))
			if err != nil {
				return nil, err
			}
			if tx == nil {
				return nil, nil
			}
			return tx, nil
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name: "eth_getTransactionCount",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamAddress, Required: true, CustomErrMsg: "a valid address is required"},
			{Type: dispatch.ParamBlockNumber, Required: true, CustomErrMsg: "a block number or tag is required"},
		},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			address, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			tag, err := decodeString(rc.RequestID, params, 1)
			if err != nil {
				return nil, err
			}
			isLatestOrPending := tag == "" || tag == "latest" || tag == "pending" || tag == "safe" || tag == "finalized"
			isEarliest := tag == "earliest"
			var blockNumber int64
			if !isLatestOrPending && !isEarliest {
				n, perr := hexutil.DecodeUint64(tag)
				if perr != nil {
					return nil, invalidBlockParam(rc.RequestID)
				}
				blockNumber = int64(n)
			}
			return s.GetTransactionCount(ctx, rc, address, blockNumber, isLatestOrPending, isEarliest)
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name: "eth_sendRawTransaction",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamHex, Required: true, CustomErrMsg: "signed raw transaction bytes are required"},
		},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			rawHex, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			raw, derr := hexutil.Decode(rawHex)
			if derr != nil {
				return nil, invalidRawTx(rc.RequestID)
			}
			if s.Async() {
				return s.SendRawTransactionAsync(ctx, rc, raw)
			}
			return s.SendRawTransaction(ctx, rc, raw)
		},
	})
}

package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/hiero-ledger/relay-gateway/internal/dispatch"
	"github.com/hiero-ledger/relay-gateway/internal/eth"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

func registerBlockMethods(b *dispatch.Builder, s *eth.Service) {
	b.Register(dispatch.MethodDescriptor{
		Name: "eth_blockNumber",
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			return s.BlockNumber(ctx, rc)
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name:   "eth_chainId",
		Schema: dispatch.Schema{},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			return s.ChainID(), nil
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name: "eth_getBlockByHash",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamHex, Required: true, CustomErrMsg: "a block hash is required"},
			{Type: dispatch.ParamBoolean},
		},
		Cache: dispatch.CachePolicy{Enabled: true, TTL: blockCacheTTL},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			hash, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			showDetails := decodeBool(params, 1, false)
			blk, err := s.GetBlockByHash(ctx, rc, hash, showDetails)
			if err != nil {
				return nil, err
			}
			return nullable(blk), nil
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name: "eth_getBlockByNumber",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamBlockNumber, Required: true, CustomErrMsg: "a block number or tag is required"},
			{Type: dispatch.ParamBoolean},
		},
		Cache: dispatch.CachePolicy{Enabled: true, TTL: blockCacheTTL, Uncacheable: uncacheableBlockTag(0)},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			tag, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			number, err := s.ResolveBlockNumberOrTag(ctx, rc, tag)
			if err != nil {
				return nil, err
			}
			showDetails := decodeBool(params, 1, false)
			blk, err := s.GetBlockByNumber(ctx, rc, number, showDetails)
			if err != nil {
				return nil, err
			}
			return nullable(blk), nil
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name: "eth_getBlockTransactionCountByHash",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamHex, Required: true, CustomErrMsg: "a block hash is required"},
		},
		Cache: dispatch.CachePolicy{Enabled: true, TTL: blockCacheTTL},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			hash, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			count, err := s.GetBlockTransactionCountByHash(ctx, rc, hash)
			if err != nil {
				return nil, err
			}
			return nullableString(count), nil
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name: "eth_getBlockTransactionCountByNumber",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamBlockNumber, Required: true, CustomErrMsg: "a block number or tag is required"},
		},
		Cache: dispatch.CachePolicy{Enabled: true, TTL: blockCacheTTL, Uncacheable: uncacheableBlockTag(0)},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			tag, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			number, err := s.ResolveBlockNumberOrTag(ctx, rc, tag)
			if err != nil {
				return nil, err
			}
			count, err := s.GetBlockTransactionCountByNumber(ctx, rc, number)
			if err != nil {
				return nil, err
			}
			return nullableString(count), nil
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name: "eth_getBlockReceipts",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamBlockNumberOrHash, Required: true, CustomErrMsg: "a block number or hash is required"},
		},
		Cache: dispatch.CachePolicy{Enabled: true, TTL: blockCacheTTL},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			key, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			receipts, err := s.GetBlockReceipts(ctx, rc, key)
			if err != nil {
				return nil, err
			}
			if receipts == nil {
				return nil, nil
			}
			return receipts, nil
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name:   "eth_feeHistory",
		Schema: dispatch.Schema{{Type: dispatch.ParamHex, Required: true}, {Type: dispatch.ParamBlockNumber, Required: true}},
		AllowExtra: true,
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			var blockCount int
			if raw, ok := paramAt(params, 0); ok {
				var bcHex string
				_ = json.Unmarshal(raw, &bcHex)
				n, _ := hexutil.DecodeUint64(bcHex)
				blockCount = int(n)
			}
			tag, err := decodeString(rc.RequestID, params, 1)
			if err != nil {
				return nil, err
			}
			newest, err := s.ResolveBlockNumberOrTag(ctx, rc, tag)
			if err != nil {
				return nil, err
			}
			var percentiles []float64
			if raw, ok := paramAt(params, 2); ok {
				_ = json.Unmarshal(raw, &percentiles)
			}
			return s.FeeHistory(ctx, rc, blockCount, newest, percentiles)
		},
	})
}

const blockCacheTTL = 20 * time.Second

// uncacheableBlockTag returns a CachePolicy.Uncacheable predicate that
// disables caching whenever the block-number-shaped parameter at index i
// is a non-numeric tag (latest/pending/safe/finalized); earliest and
// concrete numbers stay cacheable since they name an immutable block.
func uncacheableBlockTag(i int) func([]json.RawMessage) bool {
	return func(params []json.RawMessage) bool {
		raw, ok := paramAt(params, i)
		if !ok {
			return true
		}
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return true
		}
		return s == "" || s == "latest" || s == "pending" || s == "safe" || s == "finalized"
	}
}

func nullable(b *rpctypes.Block) interface{} {
	if b == nil {
		return nil
	}
	return b
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}


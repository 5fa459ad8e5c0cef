package handlers

import (
	"context"
	"encoding/json"

	"github.com/hiero-ledger/relay-gateway/internal/dispatch"
	"github.com/hiero-ledger/relay-gateway/internal/eth"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

func registerReceiptMethods(b *dispatch.Builder, s *eth.Service) {
	b.Register(dispatch.MethodDescriptor{
		Name: "eth_getTransactionReceipt",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamTransactionHash, Required: true, CustomErrMsg: "a transaction hash is required"},
		},
		Cache: dispatch.CachePolicy{Enabled: true, TTL: blockCacheTTL},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			hash, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			receipt, err := s.GetTransactionReceipt(ctx, rc, hash)
			if err != nil {
				return nil, err
			}
			if receipt == nil {
				return nil, nil
			}
			return receipt, nil
		},
	})
}

package handlers

import (
	"context"
	"encoding/json"

	"github.com/hiero-ledger/relay-gateway/internal/dispatch"
	"github.com/hiero-ledger/relay-gateway/internal/eth"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

func registerGasPriceMethods(b *dispatch.Builder, s *eth.Service) {
	b.Register(dispatch.MethodDescriptor{
		Name: "eth_gasPrice",
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			return s.GasPrice(ctx, rc)
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name: "eth_maxPriorityFeePerGas",
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			return s.MaxPriorityFeePerGas(), nil
		},
	})
}

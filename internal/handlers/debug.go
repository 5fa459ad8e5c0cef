package handlers

import (
	"context"
	"encoding/json"

	"github.com/hiero-ledger/relay-gateway/internal/debugapi"
	"github.com/hiero-ledger/relay-gateway/internal/dispatch"
	"github.com/hiero-ledger/relay-gateway/internal/eth"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

func tracerConfigFrom(obj tracerConfigObject) debugapi.TracerConfig {
	cfg := debugapi.TracerConfig{
		Tracer:         debugapi.TracerKind(obj.Tracer),
		OnlyTopCall:    obj.OnlyTopCall || obj.TracerConfig.OnlyTopCall,
		EnableMemory:   obj.EnableMemory || obj.TracerConfig.EnableMemory,
		DisableStack:   obj.DisableStack || obj.TracerConfig.DisableStack,
		DisableStorage: obj.DisableStorage || obj.TracerConfig.DisableStorage,
	}
	return cfg
}

func registerDebugMethods(b *dispatch.Builder, s *eth.Service, d *debugapi.Service) {
	b.Register(dispatch.MethodDescriptor{
		Name: "debug_traceTransaction",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamTransactionHashOrID, Required: true, CustomErrMsg: "a transaction hash or id is required"},
			{Type: dispatch.ParamTracerConfig},
		},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			txHashOrID, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			cfg := tracerConfigFrom(decodeTracerConfig(params, 1))
			return d.TraceTransaction(ctx, rc, txHashOrID, cfg)
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name: "debug_traceBlockByNumber",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamBlockNumber, Required: true, CustomErrMsg: "a block number or tag is required"},
			{Type: dispatch.ParamTracerConfig},
		},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			tag, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			block, isConcrete, rerr := d.ResolveBlockParam(ctx, rc, tag, func(p string) (int64, error) {
				return s.ResolveBlockNumberOrTag(ctx, rc, p)
			})
			if rerr != nil {
				return nil, rerr
			}
			cfg := tracerConfigFrom(decodeTracerConfig(params, 1))
			return d.TraceBlockByNumber(ctx, rc, block, cfg, isConcrete)
		},
	})
}

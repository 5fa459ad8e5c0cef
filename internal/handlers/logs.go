package handlers

import (
	"context"
	"encoding/json"

	"github.com/hiero-ledger/relay-gateway/internal/dispatch"
	"github.com/hiero-ledger/relay-gateway/internal/eth"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

func registerLogsMethods(b *dispatch.Builder, s *eth.Service) {
	b.Register(dispatch.MethodDescriptor{
		Name: "eth_getLogs",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamGetLogsParams, Required: true, CustomErrMsg: "a filter object is required"},
		},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			obj, err := decodeGetLogsObject(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}

			filter := eth.LogsFilter{
				BlockHash: obj.BlockHash,
				Address:   addressList(obj.Address),
				Topics:    flattenTopics(obj.Topics),
			}

			if obj.BlockHash == "" {
				if obj.FromBlock != "" {
					from, rerr := s.ResolveBlockNumberOrTag(ctx, rc, obj.FromBlock)
					if rerr != nil {
						return nil, rerr
					}
					filter.FromBlockNumber = &from
				}
				if obj.ToBlock != "" {
					to, rerr := s.ResolveBlockNumberOrTag(ctx, rc, obj.ToBlock)
					if rerr != nil {
						return nil, rerr
					}
					filter.ToBlockNumber = &to
				}
			}

			logs, err := s.GetLogs(ctx, rc, filter)
			if err != nil {
				return nil, err
			}
			if logs == nil {
				return []rpctypes.Log{}, nil
			}
			return logs, nil
		},
	})
}

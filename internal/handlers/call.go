package handlers

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/hiero-ledger/relay-gateway/internal/dispatch"
	"github.com/hiero-ledger/relay-gateway/internal/eth"
	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

func decodeCallRequest(requestID string, params []json.RawMessage, i int) (eth.CallRequest, error) {
	obj, err := decodeTxCallObject(requestID, params, i)
	if err != nil {
		return eth.CallRequest{}, err
	}
	var tinybar int64
	if obj.Value != "" {
		weibar, verr := hexutil.DecodeBig(obj.Value)
		if verr != nil {
			return eth.CallRequest{}, invalidBlockParam(requestID)
		}
		tinybar = eth.WeibarToTinybar(weibar)
	}
	req, err := eth.NormalizeCallRequest(obj.From, obj.To, obj.Data, obj.Input, tinybar)
	if err != nil {
		return eth.CallRequest{}, gatewayerrors.InvalidParams(requestID, "invalid address in call object")
	}
	req.GasPrice = obj.GasPrice
	if obj.Gas != "" {
		g, gerr := decodeHexQuantity(obj.Gas)
		if gerr == nil {
			req.Gas = g
		}
	}
	return req, nil
}

func registerCallMethods(b *dispatch.Builder, s *eth.Service) {
	b.Register(dispatch.MethodDescriptor{
		Name: "eth_call",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamTransactionCall, Required: true, CustomErrMsg: "a transaction call object is required"},
			{Type: dispatch.ParamBlockNumber},
		},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			req, err := decodeCallRequest(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			block, err := decodeString(rc.RequestID, params, 1)
			if err != nil {
				return nil, err
			}
			if block != "" {
				number, rerr := s.ResolveBlockNumberOrTag(ctx, rc, block)
				if rerr != nil {
					return nil, rerr
				}
				req.Block = strconv.FormatInt(number, 10)
			}
			return s.Call(ctx, rc, req)
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name: "eth_estimateGas",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamTransactionCall, Required: true, CustomErrMsg: "a transaction call object is required"},
			{Type: dispatch.ParamBlockNumber},
		},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			req, err := decodeCallRequest(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			recipientExists := false
			if req.To != "" {
				recipientExists, err = s.RecipientExists(ctx, rc, req.To)
				if err != nil {
					return nil, err
				}
			}
			return s.EstimateGas(ctx, rc, req, recipientExists)
		},
	})
}

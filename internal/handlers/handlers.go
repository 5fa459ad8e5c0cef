package handlers

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hiero-ledger/relay-gateway/internal/debugapi"
	"github.com/hiero-ledger/relay-gateway/internal/dispatch"
	"github.com/hiero-ledger/relay-gateway/internal/eth"
	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

// ClientVersion is the value eth clients see from web3_clientVersion,
// following the teacher's "name/version/runtime" convention.
const ClientVersion = "relay-gateway/0.1.0"

// unsupportedMethods is the set of Ethereum Execution API methods this
// gateway deliberately never implements (no local signing key, no
// mining/PoW surface), per the supported-method table's explicit
// exclusions.
var unsupportedMethods = []string{
	"eth_sendTransaction",
	"eth_sign",
	"eth_signTransaction",
	"eth_coinbase",
	"eth_getWork",
	"eth_submitWork",
	"eth_submitHashrate",
	"eth_protocolVersion",
	"eth_newPendingTransactionFilter",
}

// Build constructs the frozen method registry binding s and d's methods
// into the JSON-RPC surface this gateway exposes.
func Build(s *eth.Service, d *debugapi.Service) *dispatch.Registry {
	b := dispatch.NewBuilder()

	registerBlockMethods(b, s)
	registerTransactionMethods(b, s)
	registerReceiptMethods(b, s)
	registerLogsMethods(b, s)
	registerAccountMethods(b, s)
	registerCallMethods(b, s)
	registerGasPriceMethods(b, s)
	registerDebugMethods(b, s, d)

	registerConstantMethods(b, s)
	registerUnsupportedMethods(b)

	return b.Build()
}

// contextOnlyLayout tags a method that never reads its params, per
// spec.md §9's "drop all user params" dynamic-rearrangement variant.
var contextOnlyLayout = dispatch.ParamLayout{Kind: dispatch.LayoutContextOnly}

func registerUnsupportedMethods(b *dispatch.Builder) {
	for _, name := range unsupportedMethods {
		name := name
		b.Register(dispatch.MethodDescriptor{
			Name:   name,
			Layout: contextOnlyLayout,
			Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
				return nil, gatewayerrors.UnsupportedMethod(rc.RequestID)
			},
		})
	}
}

func registerConstantMethods(b *dispatch.Builder, s *eth.Service) {
	b.Register(dispatch.MethodDescriptor{
		Name:   "web3_clientVersion",
		Layout: contextOnlyLayout,
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			return ClientVersion, nil
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name: "web3_sha3",
		Schema: dispatch.Schema{
			{Type: dispatch.ParamHex, Required: true, CustomErrMsg: "input data is required"},
		},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			data, err := decodeString(rc.RequestID, params, 0)
			if err != nil {
				return nil, err
			}
			raw, derr := hexutil.Decode(data)
			if derr != nil {
				return nil, gatewayerrors.InvalidParams(rc.RequestID, "invalid hex data")
			}
			return hexutil.Encode(crypto.Keccak256(raw)), nil
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name:   "net_listening",
		Layout: contextOnlyLayout,
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			return false, nil
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name:   "net_version",
		Layout: contextOnlyLayout,
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			n, err := hexutil.DecodeUint64(s.ChainID())
			if err != nil {
				return nil, gatewayerrors.Internal(rc.RequestID, err)
			}
			return strconv.FormatUint(n, 10), nil
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name:   "eth_syncing",
		Layout: contextOnlyLayout,
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			return false, nil
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name:   "eth_mining",
		Layout: contextOnlyLayout,
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			return false, nil
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name:   "eth_hashrate",
		Layout: contextOnlyLayout,
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			return rpctypes.ZeroHex, nil
		},
	})

	b.Register(dispatch.MethodDescriptor{
		Name:   "eth_accounts",
		Layout: contextOnlyLayout,
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			return []string{}, nil
		},
	})

	for _, name := range []string{"eth_getUncleCountByBlockNumber", "eth_getUncleCountByBlockHash"} {
		name := name
		b.Register(dispatch.MethodDescriptor{
			Name:   name,
			Layout: contextOnlyLayout,
			Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
				return rpctypes.ZeroHex, nil
			},
		})
	}

	for _, name := range []string{"eth_getUncleByBlockHashAndIndex", "eth_getUncleByBlockNumberAndIndex"} {
		name := name
		b.Register(dispatch.MethodDescriptor{
			Name:   name,
			Layout: contextOnlyLayout,
			Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
				return nil, nil
			},
		})
	}
}

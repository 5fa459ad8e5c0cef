package dispatch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	gwcache "github.com/hiero-ledger/relay-gateway/internal/cache"
	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
	"github.com/hiero-ledger/relay-gateway/internal/ratelimit"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

func newTestDispatcher(t *testing.T, reg *Registry, limit ratelimit.Limit) *Dispatcher {
	t.Helper()
	c := gwcache.New(gwcache.NewL1(64, time.Minute), nil, log.NewNopLogger())
	l := ratelimit.New(ratelimit.NewInMemoryStore(), log.NewNopLogger(), nil, limit)
	return New(reg, c, l, log.NewNopLogger())
}

func rawParams(vals ...interface{}) []json.RawMessage {
	out := make([]json.RawMessage, len(vals))
	for i, v := range vals {
		b, _ := json.Marshal(v)
		out[i] = b
	}
	return out
}

func TestDispatchUnregisteredMethodClassification(t *testing.T) {
	reg := NewBuilder().Build()
	d := newTestDispatcher(t, reg, ratelimit.Limit{Max: 100, Window: time.Minute})
	rc := &rpctypes.RequestContext{RequestID: "r1", IP: "1.1.1.1"}

	_, err := d.Dispatch(context.Background(), "engine_newPayload", nil, rc)
	var gwErr *gatewayerrors.GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, gatewayerrors.CodeUnsupportedMethod, gwErr.Code)

	_, err = d.Dispatch(context.Background(), "trace_call", nil, rc)
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, gatewayerrors.CodeNotYetImplemented, gwErr.Code)

	_, err = d.Dispatch(context.Background(), "eth_totallyMadeUp", nil, rc)
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, gatewayerrors.CodeMethodNotFound, gwErr.Code)
}

func TestDispatchValidatesRequiredParams(t *testing.T) {
	reg := NewBuilder().Register(MethodDescriptor{
		Name:   "eth_getBalance",
		Schema: Schema{{Type: ParamAddress, Required: true, CustomErrMsg: "missing address"}},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			return "0x0", nil
		},
	}).Build()

	d := newTestDispatcher(t, reg, ratelimit.Limit{Max: 100, Window: time.Minute})
	rc := &rpctypes.RequestContext{RequestID: "r1", IP: "1.1.1.1"}

	_, err := d.Dispatch(context.Background(), "eth_getBalance", nil, rc)
	var gwErr *gatewayerrors.GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, gatewayerrors.CodeInvalidParams, gwErr.Code)
}

func TestDispatchCachesResult(t *testing.T) {
	calls := 0
	reg := NewBuilder().Register(MethodDescriptor{
		Name: "eth_chainId",
		Cache: CachePolicy{Enabled: true, TTL: time.Minute},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			calls++
			return "0x12a", nil
		},
	}).Build()

	d := newTestDispatcher(t, reg, ratelimit.Limit{Max: 100, Window: time.Minute})
	rc := &rpctypes.RequestContext{RequestID: "r1", IP: "1.1.1.1"}

	first, err := d.Dispatch(context.Background(), "eth_chainId", nil, rc)
	require.NoError(t, err)
	require.Equal(t, "0x12a", first)

	second, err := d.Dispatch(context.Background(), "eth_chainId", nil, rc)
	require.NoError(t, err)
	require.Equal(t, "0x12a", second)
	require.Equal(t, 1, calls, "second call should be served from cache")
}

func TestDispatchRateLimitsAfterThreshold(t *testing.T) {
	reg := NewBuilder().Register(MethodDescriptor{
		Name: "eth_chainId",
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			return "0x12a", nil
		},
	}).Build()

	d := newTestDispatcher(t, reg, ratelimit.Limit{Max: 3, Window: time.Minute})
	rc := &rpctypes.RequestContext{RequestID: "r1", IP: "9.9.9.9"}

	for i := 0; i < 3; i++ {
		_, err := d.Dispatch(context.Background(), "eth_chainId", nil, rc)
		require.NoError(t, err)
	}
	_, err := d.Dispatch(context.Background(), "eth_chainId", nil, rc)
	var gwErr *gatewayerrors.GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, gatewayerrors.CodeRateLimit, gwErr.Code)
}

func TestDispatchHandlerErrorIsNormalizedOnce(t *testing.T) {
	reg := NewBuilder().Register(MethodDescriptor{
		Name: "eth_getTransactionByHash",
		Schema: Schema{{Type: ParamTransactionHash, Required: true}},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			return nil, gatewayerrors.ResourceNotFound(rc.RequestID, "transaction")
		},
	}).Build()

	d := newTestDispatcher(t, reg, ratelimit.Limit{Max: 100, Window: time.Minute})
	rc := &rpctypes.RequestContext{RequestID: "req-abc", IP: "1.1.1.1"}

	_, err := d.Dispatch(context.Background(), "eth_getTransactionByHash", rawParams("0xdead"), rc)
	require.Error(t, err)
	require.Equal(t, 1, countOccurrences(err.Error(), "[Request ID:"))
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}

func TestDispatchContextOnlyLayoutDropsParams(t *testing.T) {
	var seen []json.RawMessage
	reg := NewBuilder().Register(MethodDescriptor{
		Name:   "eth_accounts",
		Layout: ParamLayout{Kind: LayoutContextOnly},
		Handler: func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
			seen = params
			return []string{}, nil
		},
	}).Build()

	d := newTestDispatcher(t, reg, ratelimit.Limit{Max: 100, Window: time.Minute})
	rc := &rpctypes.RequestContext{RequestID: "r1", IP: "1.1.1.1"}

	_, err := d.Dispatch(context.Background(), "eth_accounts", rawParams("ignored"), rc)
	require.NoError(t, err)
	require.Nil(t, seen)
}

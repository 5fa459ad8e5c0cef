package debugapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	gwcache "github.com/hiero-ledger/relay-gateway/internal/cache"
	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
	"github.com/hiero-ledger/relay-gateway/internal/mirror"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

type route struct {
	body interface{}
	code int
}

func newTestServiceWithClient(t *testing.T, routes map[string]route, debugEnabled, opcodeEnabled bool) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path + "?" + r.URL.RawQuery
		rt, ok := routes[key]
		if !ok {
			rt, ok = routes[r.URL.Path]
		}
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if rt.code != 0 {
			w.WriteHeader(rt.code)
		}
		_ = json.NewEncoder(w).Encode(rt.body)
	}))

	m := mirror.New(mirror.Config{
		BaseURL:       srv.URL,
		MaxRetries:    1,
		RetryDeadline: time.Second,
		BackoffBase:   time.Millisecond,
		BackoffCap:    time.Millisecond,
	}, srv.Client(), log.NewNopLogger())

	c := gwcache.New(gwcache.NewL1(64, time.Minute), nil, log.NewNopLogger())
	s := New(m, c, log.NewNopLogger(), debugEnabled, opcodeEnabled)
	return s, srv
}

func TestTraceTransactionReturnsUnsupportedWhenDebugAPIDisabled(t *testing.T) {
	s, srv := newTestServiceWithClient(t, nil, false, false)
	defer srv.Close()

	rc := &rpctypes.RequestContext{RequestID: "r1"}
	_, err := s.TraceTransaction(context.Background(), rc, "0xabc", TracerConfig{})
	require.Error(t, err)
	gwErr, ok := err.(*gatewayerrors.GatewayError)
	require.True(t, ok)
	require.Equal(t, gatewayerrors.CodeUnsupportedMethod, gwErr.Code)
}

func TestTraceTransactionOpcodeDisabledReturnsUnsupported(t *testing.T) {
	s, srv := newTestServiceWithClient(t, nil, true, false)
	defer srv.Close()

	rc := &rpctypes.RequestContext{RequestID: "r1"}
	_, err := s.TraceTransaction(context.Background(), rc, "0xabc", TracerConfig{Tracer: OpcodeLogger})
	require.Error(t, err)
}

func TestTraceTransactionCallTracerBuildsFrameFromActions(t *testing.T) {
	s, srv := newTestServiceWithClient(t, map[string]route{
		"/api/v1/contracts/results/0xabc/actions": {body: map[string]interface{}{
			"actions": []mirror.Action{
				{CallType: "CALL", From: "0x1", To: "0x2", Gas: 100, GasUsed: 50, Value: "0x0"},
			},
		}},
		"/api/v1/contracts/results/0xabc": {body: mirror.ContractResult{
			Hash: "0xabc", Status: "0x1", FunctionParameters: "0xdead", CallResult: "0xbeef",
		}},
	}, true, true)
	defer srv.Close()

	rc := &rpctypes.RequestContext{RequestID: "r1"}
	frame, err := s.TraceTransaction(context.Background(), rc, "0xabc", TracerConfig{Tracer: CallTracer})
	require.NoError(t, err)
	cf, ok := frame.(*rpctypes.CallFrame)
	require.True(t, ok)
	require.Equal(t, "CALL", cf.Type)
	require.Equal(t, "0xdead", cf.Input)
	require.Empty(t, cf.Error)
}

func TestTraceTransactionMissingActionsReturnsNotFound(t *testing.T) {
	s, srv := newTestServiceWithClient(t, nil, true, true)
	defer srv.Close()

	rc := &rpctypes.RequestContext{RequestID: "r1"}
	_, err := s.TraceTransaction(context.Background(), rc, "0xabc", TracerConfig{Tracer: CallTracer})
	require.Error(t, err)
}

func TestTraceTransactionPrestateUnsupportedForSingleTx(t *testing.T) {
	s, srv := newTestServiceWithClient(t, nil, true, true)
	defer srv.Close()

	rc := &rpctypes.RequestContext{RequestID: "r1"}
	_, err := s.TraceTransaction(context.Background(), rc, "0xabc", TracerConfig{Tracer: PrestateTracer})
	require.Error(t, err)
	gwErr, ok := err.(*gatewayerrors.GatewayError)
	require.True(t, ok)
	require.Equal(t, gatewayerrors.CodeInvalidParams, gwErr.Code)
}

func TestResolveBlockParamConcreteNumberIsCacheable(t *testing.T) {
	s, srv := newTestServiceWithClient(t, map[string]route{
		"/api/v1/blocks/42": {body: mirror.Block{Number: 42, Hash: "0xblock42"}},
	}, true, true)
	defer srv.Close()

	rc := &rpctypes.RequestContext{RequestID: "r1"}
	toNumber := func(s string) (int64, error) { return 42, nil }
	b, concrete, err := s.ResolveBlockParam(context.Background(), rc, "0x2a", toNumber)
	require.NoError(t, err)
	require.True(t, concrete)
	require.Equal(t, "0xblock42", b.Hash)
}

func TestResolveBlockParamTagIsNotConcrete(t *testing.T) {
	s, srv := newTestServiceWithClient(t, map[string]route{
		"/api/v1/blocks/100": {body: mirror.Block{Number: 100, Hash: "0xlatest"}},
	}, true, true)
	defer srv.Close()

	rc := &rpctypes.RequestContext{RequestID: "r1"}
	toNumber := func(s string) (int64, error) { return 100, nil }
	b, concrete, err := s.ResolveBlockParam(context.Background(), rc, "latest", toNumber)
	require.NoError(t, err)
	require.False(t, concrete)
	require.Equal(t, "0xlatest", b.Hash)
}

func TestResolveBlockParamUnknownBlockReturnsNotFound(t *testing.T) {
	s, srv := newTestServiceWithClient(t, nil, true, true)
	defer srv.Close()

	rc := &rpctypes.RequestContext{RequestID: "r1"}
	toNumber := func(s string) (int64, error) { return 999, nil }
	_, _, err := s.ResolveBlockParam(context.Background(), rc, "0x3e7", toNumber)
	require.Error(t, err)
}

func TestTraceBlockByNumberFiltersWrongNonceResults(t *testing.T) {
	s, srv := newTestServiceWithClient(t, map[string]route{
		"/api/v1/contracts/results?block.hash=0xblock&limit=100&order=asc": {body: map[string]interface{}{
			"results": []mirror.ContractResult{
				{Hash: "0xgood", Result: "SUCCESS", Status: "0x1"},
				{Hash: "0xbad", Result: "WRONG_NONCE"},
			},
		}},
		"/api/v1/contracts/results/0xgood/actions": {body: map[string]interface{}{
			"actions": []mirror.Action{{CallType: "CALL", From: "0x1", To: "0x2"}},
		}},
		"/api/v1/contracts/results/0xgood": {body: mirror.ContractResult{Hash: "0xgood", Status: "0x1"}},
	}, true, true)
	defer srv.Close()

	rc := &rpctypes.RequestContext{RequestID: "r1"}
	block := mirror.Block{Hash: "0xblock", Number: 1}
	entries, err := s.TraceBlockByNumber(context.Background(), rc, block, TracerConfig{}, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "0xgood", entries[0].TxHash)
}

func TestTraceBlockByNumberDisabledReturnsUnsupported(t *testing.T) {
	s, srv := newTestServiceWithClient(t, nil, false, false)
	defer srv.Close()

	rc := &rpctypes.RequestContext{RequestID: "r1"}
	_, err := s.TraceBlockByNumber(context.Background(), rc, mirror.Block{Hash: "0xblock"}, TracerConfig{}, false)
	require.Error(t, err)
}

package httpshell

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	gwcache "github.com/hiero-ledger/relay-gateway/internal/cache"
	"github.com/hiero-ledger/relay-gateway/internal/dispatch"
	"github.com/hiero-ledger/relay-gateway/internal/ratelimit"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	b := dispatch.NewBuilder()
	b.Register(dispatch.MethodDescriptor{
		Name: "eth_chainId",
		Handler: func(_ context.Context, _ []json.RawMessage, _ *rpctypes.RequestContext) (interface{}, error) {
			return "0x128", nil
		},
	})
	b.Register(dispatch.MethodDescriptor{
		Name: "eth_sendRawTransaction",
		Handler: func(_ context.Context, _ []json.RawMessage, _ *rpctypes.RequestContext) (interface{}, error) {
			return "0xabc", nil
		},
	})
	registry := b.Build()

	c := gwcache.New(gwcache.NewL1(64, time.Minute), nil, log.NewNopLogger())
	limiter := ratelimit.New(ratelimit.NewInMemoryStore(), log.NewNopLogger(), nil, ratelimit.Limit{Max: 1000, Window: time.Minute})
	d := dispatch.New(registry, c, limiter, log.NewNopLogger())

	return New(cfg, d, log.NewNopLogger())
}

func postJSON(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.handleHTTP(rec, req)
	return rec
}

func TestHandleHTTPSingleRequest(t *testing.T) {
	s := newTestServer(t, Config{BatchRequestsEnabled: true, BatchRequestsMaxSize: 10})
	rec := postJSON(t, s, `{"jsonrpc":"2.0","id":1,"method":"eth_chainId","params":[]}`)

	require.Equal(t, 200, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "0x128", resp.Result)
	require.Nil(t, resp.Error)
}

func TestHandleHTTPUnknownMethodReturns400(t *testing.T) {
	s := newTestServer(t, Config{BatchRequestsEnabled: true, BatchRequestsMaxSize: 10})
	rec := postJSON(t, s, `{"jsonrpc":"2.0","id":1,"method":"eth_noSuchMethod","params":[]}`)

	require.Equal(t, 400, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
}

func TestHandleHTTPBatchAlwaysReturns200(t *testing.T) {
	s := newTestServer(t, Config{BatchRequestsEnabled: true, BatchRequestsMaxSize: 10})
	rec := postJSON(t, s, `[{"jsonrpc":"2.0","id":1,"method":"eth_chainId","params":[]},{"jsonrpc":"2.0","id":2,"method":"eth_noSuchMethod","params":[]}]`)

	require.Equal(t, 200, rec.Code)
	var resps []Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resps))
	require.Len(t, resps, 2)
	require.Nil(t, resps[0].Error)
	require.NotNil(t, resps[1].Error)
}

func TestHandleHTTPBatchDisabled(t *testing.T) {
	s := newTestServer(t, Config{BatchRequestsEnabled: false})
	rec := postJSON(t, s, `[{"jsonrpc":"2.0","id":1,"method":"eth_chainId","params":[]}]`)

	require.Equal(t, 200, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
}

func TestHandleHTTPBatchRejectsSendRawTransaction(t *testing.T) {
	s := newTestServer(t, Config{BatchRequestsEnabled: true, BatchRequestsMaxSize: 10})
	rec := postJSON(t, s, `[{"jsonrpc":"2.0","id":1,"method":"eth_sendRawTransaction","params":["0x01"]}]`)

	require.Equal(t, 200, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
}

func TestHandleHTTPBatchTooLarge(t *testing.T) {
	s := newTestServer(t, Config{BatchRequestsEnabled: true, BatchRequestsMaxSize: 1})
	rec := postJSON(t, s, `[{"jsonrpc":"2.0","id":1,"method":"eth_chainId","params":[]},{"jsonrpc":"2.0","id":2,"method":"eth_chainId","params":[]}]`)

	require.Equal(t, 200, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
}

package handlers

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
	"github.com/hiero-ledger/relay-gateway/internal/debugapi"
	"github.com/hiero-ledger/relay-gateway/internal/eth"
	"github.com/hiero-ledger/relay-gateway/internal/mirror"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

func newTestRegistry(t *testing.T, routes map[string]interface{}) (*eth.Service, *debugapi.Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path + "?" + r.URL.RawQuery
		body, ok := routes[key]
		if !ok {
			body, ok = routes[r.URL.Path]
		}
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(body)
	}))

	m := mirror.New(mirror.Config{
		BaseURL:       srv.URL,
		MaxRetries:    1,
		RetryDeadline: time.Second,
		BackoffBase:   time.Millisecond,
		BackoffCap:    time.Millisecond,
	}, srv.Client(), log.NewNopLogger())

	c := gwcache.New(gwcache.NewL1(64, time.Minute), nil, log.NewNopLogger())
	ethSvc := eth.New(m, nil, c, log.NewNopLogger(), eth.Config{ChainID: 296})
	debugSvc := debugapi.New(m, c, log.NewNopLogger(), true, true)
	return ethSvc, debugSvc, srv
}

func callMethod(t *testing.T, s *eth.Service, d *debugapi.Service, method string, params ...json.RawMessage) (interface{}, error) {
	t.Helper()
	registry := Build(s, d)
	desc, ok := registry.Lookup(method)
	require.True(t, ok, "method %s not registered", method)
	rc := &rpctypes.RequestContext{RequestID: "r1"}
	return desc.Handler(context.Background(), params, rc)
}

func TestBuildRegistersClientVersion(t *testing.T) {
	s, d, srv := newTestRegistry(t, nil)
	defer srv.Close()

	result, err := callMethod(t, s, d, "web3_clientVersion")
	require.NoError(t, err)
	require.Equal(t, ClientVersion, result)
}

func TestBuildRegistersWeb3Sha3(t *testing.T) {
	s, d, srv := newTestRegistry(t, nil)
	defer srv.Close()

	param, _ := json.Marshal("0x68656c6c6f")
	result, err := callMethod(t, s, d, "web3_sha3", param)
	require.NoError(t, err)
	require.Equal(t, "0x1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac", result)
}

func TestBuildRegistersNetVersionFromChainID(t *testing.T) {
	s, d, srv := newTestRegistry(t, nil)
	defer srv.Close()

	result, err := callMethod(t, s, d, "net_version")
	require.NoError(t, err)
	require.Equal(t, "296", result)
}

func TestBuildRegistersUnsupportedMethodsAsErrors(t *testing.T) {
	s, d, srv := newTestRegistry(t, nil)
	defer srv.Close()

	_, err := callMethod(t, s, d, "eth_sendTransaction")
	require.Error(t, err)
}

func TestBuildRegistersEthChainId(t *testing.T) {
	s, d, srv := newTestRegistry(t, nil)
	defer srv.Close()

	result, err := callMethod(t, s, d, "eth_chainId")
	require.NoError(t, err)
	require.Equal(t, "0x128", result)
}

func TestBuildRegistersConstantFalsesAndZeroes(t *testing.T) {
	s, d, srv := newTestRegistry(t, nil)
	defer srv.Close()

	for _, tc := range []struct {
		method string
		want   interface{}
	}{
		{"net_listening", false},
		{"eth_syncing", false},
		{"eth_mining", false},
		{"eth_hashrate", rpctypes.ZeroHex},
	} {
		result, err := callMethod(t, s, d, tc.method)
		require.NoError(t, err)
		require.Equal(t, tc.want, result)
	}
}

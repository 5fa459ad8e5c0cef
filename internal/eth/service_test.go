package eth

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
	"github.com/hiero-ledger/relay-gateway/internal/mirror"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

type route struct {
	path string
	body interface{}
	code int
}

func newTestService(t *testing.T, routes map[string]route) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rt, ok := routes[r.URL.Path+"?"+r.URL.RawQuery]
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
	s := New(m, nil, c, log.NewNopLogger(), Config{ChainID: 296})
	return s, srv
}

func TestChainID(t *testing.T) {
	s, srv := newTestService(t, nil)
	defer srv.Close()

	require.Equal(t, "0x128", s.ChainID())
}

func TestBlockNumberReturnsLatestBlock(t *testing.T) {
	s, srv := newTestService(t, map[string]route{
		"/api/v1/blocks": {body: map[string]interface{}{
			"blocks": []mirror.Block{{Number: 42}},
		}},
	})
	defer srv.Close()

	rc := &rpctypes.RequestContext{RequestID: "r1"}
	n, err := s.BlockNumber(context.Background(), rc)
	require.NoError(t, err)
	require.Equal(t, "0x2a", n)
}

func TestBlockNumberNoBlocksReturnsZero(t *testing.T) {
	s, srv := newTestService(t, nil)
	defer srv.Close()

	rc := &rpctypes.RequestContext{RequestID: "r1"}
	n, err := s.BlockNumber(context.Background(), rc)
	require.NoError(t, err)
	require.Equal(t, rpctypes.ZeroHex, n)
}

func TestGetBalanceLatestConvertsTinybarToWeibar(t *testing.T) {
	s, srv := newTestService(t, map[string]route{
		"/api/v1/accounts/0xabc": {body: mirror.Account{
			Balance: mirror.Balance{Balance: 100},
		}},
	})
	defer srv.Close()

	rc := &rpctypes.RequestContext{RequestID: "r1"}
	bal, err := s.GetBalance(context.Background(), rc, "0xabc", true, "")
	require.NoError(t, err)

	weibar := TinybarToWeibar(100)
	require.Equal(t, "0x"+weibar.Text(16), bal)
}

func TestGetBalanceUnknownAccountReturnsZero(t *testing.T) {
	s, srv := newTestService(t, nil)
	defer srv.Close()

	rc := &rpctypes.RequestContext{RequestID: "r1"}
	bal, err := s.GetBalance(context.Background(), rc, "0xdead", true, "")
	require.NoError(t, err)
	require.Equal(t, rpctypes.ZeroHex, bal)
}

func TestRecipientExistsReflectsMirrorAccountPresence(t *testing.T) {
	s, srv := newTestService(t, map[string]route{
		"/api/v1/accounts/0xabc": {body: mirror.Account{Account: "0.0.100"}},
	})
	defer srv.Close()

	rc := &rpctypes.RequestContext{RequestID: "r1"}
	exists, err := s.RecipientExists(context.Background(), rc, "0xabc")
	require.NoError(t, err)
	require.True(t, exists)

	missing, err := s.RecipientExists(context.Background(), rc, "0xdead")
	require.NoError(t, err)
	require.False(t, missing)
}

package mirror

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	cfg := Config{
		BaseURL:       srv.URL,
		MaxRetries:    3,
		RetryDeadline: time.Second,
		BackoffBase:   time.Millisecond,
		BackoffCap:    10 * time.Millisecond,
	}
	return New(cfg, srv.Client(), log.NewNopLogger()), srv
}

func TestGetBlockByHashFound(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "req-1", r.Header.Get(RequestIDHeader))
		_ = json.NewEncoder(w).Encode(Block{Number: 5, Hash: "0xabc"})
	})
	defer srv.Close()

	b, err := c.GetBlockByHash(context.Background(), "req-1", "0xabc")
	require.NoError(t, err)
	require.NotNil(t, b)
	require.Equal(t, int64(5), b.Number)
}

func TestGetBlockByHash404ReturnsNilNil(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	b, err := c.GetBlockByHash(context.Background(), "req-1", "0xdead")
	require.NoError(t, err)
	require.Nil(t, b)
}

func TestGetRetriesOn503ThenSucceeds(t *testing.T) {
	attempts := 0
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(Block{Number: 1})
	})
	defer srv.Close()

	b, err := c.GetBlockByNumber(context.Background(), "req-1", 1)
	require.NoError(t, err)
	require.NotNil(t, b)
	require.Equal(t, 3, attempts)
}

func TestGetExhaustsRetriesAndReturnsUpstreamError(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := c.GetBlockByNumber(context.Background(), "req-1", 1)
	require.Error(t, err)
	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	require.Equal(t, http.StatusInternalServerError, upstreamErr.StatusCode)
}

func TestGetNonRetryable4xxFailsImmediately(t *testing.T) {
	attempts := 0
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	})
	defer srv.Close()

	_, err := c.GetBlockByNumber(context.Background(), "req-1", 1)
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

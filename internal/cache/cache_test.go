package cache

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"
)

func newTestCache(l2 Store) *Cache {
	l1 := NewL1(16, time.Minute)
	return New(l1, l2, log.NewNopLogger())
}

func TestCacheL1RoundTrip(t *testing.T) {
	c := newTestCache(nil)
	c.Set("k", []byte("v"), time.Minute)

	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("v"), v)
}

func TestCacheMissWithoutL2(t *testing.T) {
	c := newTestCache(nil)
	_, ok := c.Get("missing")
	require.False(t, ok)
}

func TestCacheFallsThroughToL2AndRepopulatesL1(t *testing.T) {
	l2 := NewInMemoryL2()
	l2.Set("k", []byte("from-l2"), time.Minute)

	c := newTestCache(l2)

	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("from-l2"), v)

	// L1 should now hold the value without touching L2 again.
	l2.Delete("k")
	v, ok = c.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("from-l2"), v)
}

func TestCacheSetJSONGetJSON(t *testing.T) {
	c := newTestCache(nil)
	type payload struct {
		Foo string `json:"foo"`
	}

	require.NoError(t, c.SetJSON("key", payload{Foo: "bar"}, time.Minute))

	var out payload
	ok, err := c.GetJSON("key", &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "bar", out.Foo)
}

func TestBuildKeyHashesLongSegments(t *testing.T) {
	short := BuildKey("eth_getBalance", "0xabc", "latest")
	require.Equal(t, "eth_getBalance:0xabc:latest", short)

	long := BuildKey("eth_call", "0x"+string(make([]byte, 200)))
	require.NotContains(t, long, string(make([]byte, 200)))
}

func TestInMemoryL2TTLExpires(t *testing.T) {
	l2 := NewInMemoryL2()
	l2.Set("k", []byte("v"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := l2.Get("k")
	require.False(t, ok)
}

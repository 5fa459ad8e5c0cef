package ratelimit

import (
	"errors"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"
)

func TestAllowWithinBudget(t *testing.T) {
	l := New(NewInMemoryStore(), log.NewNopLogger(), nil, Limit{Max: 2, Window: time.Minute})

	require.True(t, l.Allow("1.2.3.4", "eth_chainId"))
	require.True(t, l.Allow("1.2.3.4", "eth_chainId"))
	require.False(t, l.Allow("1.2.3.4", "eth_chainId"))
}

func TestAllowIsPerIPAndMethod(t *testing.T) {
	l := New(NewInMemoryStore(), log.NewNopLogger(), nil, Limit{Max: 1, Window: time.Minute})

	require.True(t, l.Allow("1.2.3.4", "eth_chainId"))
	require.True(t, l.Allow("5.6.7.8", "eth_chainId"), "different ip gets its own budget")
	require.True(t, l.Allow("1.2.3.4", "eth_blockNumber"), "different method gets its own budget")
	require.False(t, l.Allow("1.2.3.4", "eth_chainId"))
}

func TestAllowZeroMaxMeansUnlimited(t *testing.T) {
	l := New(NewInMemoryStore(), log.NewNopLogger(), nil, Limit{Max: 0, Window: time.Minute})
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow("1.2.3.4", "eth_chainId"))
	}
}

func TestAllowPerMethodOverride(t *testing.T) {
	limits := map[string]Limit{"eth_sendRawTransaction": {Max: 1, Window: time.Minute}}
	l := New(NewInMemoryStore(), log.NewNopLogger(), limits, Limit{Max: 100, Window: time.Minute})

	require.True(t, l.Allow("1.2.3.4", "eth_sendRawTransaction"))
	require.False(t, l.Allow("1.2.3.4", "eth_sendRawTransaction"))
}

type failingStore struct{}

func (failingStore) Increment(string, time.Time, time.Duration) (uint64, error) {
	return 0, errors.New("store unavailable")
}

func TestAllowFailsOpenOnStoreError(t *testing.T) {
	l := New(failingStore{}, log.NewNopLogger(), nil, Limit{Max: 1, Window: time.Minute})
	require.True(t, l.Allow("1.2.3.4", "eth_chainId"))
	require.True(t, l.Allow("1.2.3.4", "eth_chainId"))
}

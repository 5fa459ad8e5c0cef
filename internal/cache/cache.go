// Package cache implements the two-tier cache substrate (C2): a bounded,
// per-entry-TTL in-process L1 backed by hashicorp/golang-lru's expirable
// variant, and an optional shared L2 behind the same interface. Reads are
// L1-first; on an L2-enabled miss the L2 is consulted and used to
// repopulate L1. L2 failures are logged and treated as misses.
package cache

import (
	"crypto/sha1" //nolint:gosec // used only to bound cache-key length, not for security
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"cosmossdk.io/log"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// maxRawKeySegment is the longest a single colon-separated key segment may
// be before it gets hashed down to a fixed-width SHA-1 digest.
const maxRawKeySegment = 64

// Store is the shared interface both tiers implement.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
	Clear()
}

// entry pairs a value with its absolute expiry, giving both L1 and the
// in-memory L2 stand-in a per-Set TTL independent of the underlying
// store's own eviction policy.
type entry struct {
	value  []byte
	expiry time.Time
}

// L1 is the process-local bounded cache. The underlying expirable LRU
// only bounds entries by defaultTTL and size; L1 additionally stamps
// every entry with its own policy TTL and honors it on Get, so a
// shorter-lived entry (e.g. a 5s eth_call result) is never served stale
// just because the LRU's own instance-wide TTL is longer.
type L1 struct {
	inner      *lru.LRU[string, entry]
	defaultTTL time.Duration
}

// NewL1 builds an L1 cache holding up to size entries, bounded by the
// underlying expirable LRU's own instance-wide defaultTTL; Set's ttl
// argument (when positive) further shortens a given entry's lifetime,
// enforced on Get.
func NewL1(size int, defaultTTL time.Duration) *L1 {
	return &L1{inner: lru.NewLRU[string, entry](size, nil, defaultTTL), defaultTTL: defaultTTL}
}

func (l *L1) Get(key string) ([]byte, bool) {
	e, ok := l.inner.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiry) {
		l.inner.Remove(key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under its own absolute expiry; ttl <= 0 (e.g.
// Cache.Get's L1-repopulate-from-L2 write) falls back to the instance's
// default TTL rather than expiring the entry immediately.
func (l *L1) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = l.defaultTTL
	}
	l.inner.Add(key, entry{value: value, expiry: time.Now().Add(ttl)})
}

func (l *L1) Delete(key string) { l.inner.Remove(key) }

func (l *L1) Clear() { l.inner.Purge() }

// InMemoryL2 is a second-tier cache with the same Store interface as L1.
// In production this sits behind a network round trip to a shared store;
// this implementation keeps the interface boundary real while avoiding a
// fabricated client for a store no example repo in the corpus depends on
// (see DESIGN.md).
type InMemoryL2 struct {
	mu   sync.Mutex
	data map[string]entry
}

func NewInMemoryL2() *InMemoryL2 {
	return &InMemoryL2{data: make(map[string]entry)}
}

func (l *InMemoryL2) Get(key string) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.data[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiry) {
		delete(l.data, key)
		return nil, false
	}
	return e.value, true
}

func (l *InMemoryL2) Set(key string, value []byte, ttl time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data[key] = entry{value: value, expiry: time.Now().Add(ttl)}
}

func (l *InMemoryL2) Delete(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.data, key)
}

func (l *InMemoryL2) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = make(map[string]entry)
}

// Cache is the two-tier facade the dispatcher and services consult.
type Cache struct {
	l1     Store
	l2     Store // nil when L2 is disabled
	logger log.Logger
}

func New(l1 Store, l2 Store, logger log.Logger) *Cache {
	return &Cache{l1: l1, l2: l2, logger: logger}
}

// Get reads key, preferring L1; on an L1 miss with L2 enabled it consults
// L2 and, on an L2 hit, repopulates L1 with the default TTL.
func (c *Cache) Get(key string) ([]byte, bool) {
	if v, ok := c.l1.Get(key); ok {
		return v, true
	}
	if c.l2 == nil {
		return nil, false
	}
	v, ok := func() (val []byte, found bool) {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("L2 cache get panicked, treating as miss", "error", r)
				val, found = nil, false
			}
		}()
		val, found = c.l2.Get(key)
		return
	}()
	if !ok {
		return nil, false
	}
	c.l1.Set(key, v, 0)
	return v, true
}

// Set writes key to L1, then L2 when enabled. L2 failures never fail the
// call; they are logged and the write is treated as L1-only.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) {
	c.l1.Set(key, value, ttl)
	if c.l2 == nil {
		return
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("L2 cache set failed, entry only cached in L1", "error", r)
			}
		}()
		c.l2.Set(key, value, ttl)
	}()
}

func (c *Cache) Delete(key string) {
	c.l1.Delete(key)
	if c.l2 != nil {
		c.l2.Delete(key)
	}
}

// GetJSON and SetJSON are convenience wrappers for JSON-serializable
// values, the common case for cached RPC results.
func (c *Cache) GetJSON(key string, out interface{}) (bool, error) {
	raw, ok := c.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) SetJSON(key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.Set(key, raw, ttl)
	return nil
}

// BuildKey joins a method-scoped prefix with its call arguments,
// colon-separated, hashing any segment long enough to risk unbounded key
// growth (binary blobs, long hex calldata) down to a fixed SHA-1 digest.
func BuildKey(prefix string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, prefix)
	for _, a := range args {
		if len(a) > maxRawKeySegment {
			sum := sha1.Sum([]byte(a)) //nolint:gosec
			parts = append(parts, hex.EncodeToString(sum[:]))
			continue
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, ":")
}

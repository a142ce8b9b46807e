package chainrpc

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// NullifierStatus is the cached result of an on-chain isConsumed check.
type NullifierStatus int

const (
	StatusUnknown NullifierStatus = iota
	StatusUnclaimed
	StatusClaimed
)

func (s NullifierStatus) String() string {
	switch s {
	case StatusUnclaimed:
		return "unclaimed"
	case StatusClaimed:
		return "claimed"
	default:
		return "unknown"
	}
}

// DefaultNullifierCacheTTL is the default time a cached nullifier status is
// trusted before a fresh eth_call is required.
const DefaultNullifierCacheTTL = 5 * time.Minute

// NullifierCache is the process-local, TTL-based nullifier status cache.
// Built on ristretto's native SetWithTTL rather than a hand-rolled expiry map.
type NullifierCache struct {
	cache *ristretto.Cache
	ttl time.Duration
}

// NewNullifierCache constructs a cache sized for a single operator's
// workspace — at most a few hundred live nullifiers, so modest counters
// suffice.
func NewNullifierCache(ttl time.Duration) (*NullifierCache, error) {
	if ttl <= 0 {
		ttl = DefaultNullifierCacheTTL
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost: 1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &NullifierCache{cache: c, ttl: ttl}, nil
}

// Get returns the cached status for nullifier, or (StatusUnknown, false) on
// a miss or expiry.
func (c *NullifierCache) Get(nullifier [32]byte) (NullifierStatus, bool) {
	v, ok := c.cache.Get(cacheKey(nullifier))
	if !ok {
		return StatusUnknown, false
	}
	return v.(NullifierStatus), true
}

// Set stores status for nullifier with the cache's configured TTL.
func (c *NullifierCache) Set(nullifier [32]byte, status NullifierStatus) {
	c.cache.SetWithTTL(cacheKey(nullifier), status, 1, c.ttl)
	c.cache.Wait()
}

// Clear force-refreshes by evicting a single nullifier's cached entry, or
// the whole cache when called with no argument via ClearAll.
func (c *NullifierCache) Clear(nullifier [32]byte) {
	c.cache.Del(cacheKey(nullifier))
}

// cacheKey renders a nullifier as the string key ristretto hashes — ristretto's
// built-in key hashing only covers a handful of scalar types, not [32]byte arrays.
func cacheKey(nullifier [32]byte) string {
	return string(nullifier[:])
}

// ClearAll drops every cached entry.
func (c *NullifierCache) ClearAll() {
	c.cache.Clear()
}

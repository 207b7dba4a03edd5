package inflight

import (
	"context"
	"time"

	"github.com/coocood/freecache"
)

const (
	// freecache refuses anything smaller
	minCacheSize = 512 * 1024

	heldMarker = "1"
)

// LocalGuard holds in-flight markers in process memory. Markers expire after ttl so
// a crashed or unconfirmed transfer does not pin a token forever.
type LocalGuard struct {
	cache *freecache.Cache
	ttl   time.Duration
}

func NewLocalGuard(sizeBytes int, ttl time.Duration) *LocalGuard {
	if sizeBytes < minCacheSize {
		sizeBytes = minCacheSize
	}

	return &LocalGuard{cache: freecache.NewCache(sizeBytes), ttl: ttl}
}

func (g *LocalGuard) Acquire(ctx context.Context, key string) (bool, error) {
	prev, err := g.cache.GetOrSet([]byte(key), []byte(heldMarker), expireSeconds(g.ttl))
	if err != nil {
		return false, err
	}

	return prev == nil, nil
}

func (g *LocalGuard) Release(ctx context.Context, key string) error {
	g.cache.Del([]byte(key))
	return nil
}

// expireSeconds rounds up so a sub-second ttl does not mean "never expire".
func expireSeconds(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}

	s := int(ttl / time.Second)
	if ttl%time.Second != 0 {
		s++
	}

	return s
}

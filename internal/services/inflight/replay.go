package inflight

import (
	"context"
	"encoding/json"
	"time"

	"github.com/citizenwallet/custody/pkg/custody"
	"github.com/coocood/freecache"
)

// ReplayStore remembers confirmed receipts by idempotency key.
type ReplayStore struct {
	cache *freecache.Cache
}

func NewReplayStore(sizeBytes int) *ReplayStore {
	if sizeBytes < minCacheSize {
		sizeBytes = minCacheSize
	}

	return &ReplayStore{cache: freecache.NewCache(sizeBytes)}
}

func (s *ReplayStore) Get(ctx context.Context, key string) (*custody.Receipt, bool, error) {
	b, err := s.cache.Get([]byte(key))
	if err == freecache.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var r custody.Receipt
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, false, err
	}

	return &r, true, nil
}

func (s *ReplayStore) Put(ctx context.Context, key string, r *custody.Receipt, ttl time.Duration) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return s.cache.Set([]byte(key), b, expireSeconds(ttl))
}

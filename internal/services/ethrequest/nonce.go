package ethrequest

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type nonceSource func(ctx context.Context, account common.Address) (uint64, error)

// nonceSequencer hands out strictly increasing nonces per account. The first nonce
// comes from the node's pending state; after that it is tracked locally until a
// submission fails.
type nonceSequencer struct {
	// 1-slot semaphore, waiting for it respects the caller's context
	sem     chan struct{}
	next    map[common.Address]uint64
	source  nonceSource
	timeout time.Duration
}

func newNonceSequencer(source nonceSource, timeout time.Duration) *nonceSequencer {
	return &nonceSequencer{
		sem:     make(chan struct{}, 1),
		next:    map[common.Address]uint64{},
		source:  source,
		timeout: timeout,
	}
}

// With reserves the next nonce for account and calls fn with it while holding the
// sequencer. fn gets a context bounded by the submit timeout so one hung node call
// cannot hold the sequencer forever. If fn fails the cached nonce is dropped so the
// next call asks the node again.
func (s *nonceSequencer) With(ctx context.Context, account common.Address, fn func(ctx context.Context, nonce uint64) error) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.sem }()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	nonce, ok := s.next[account]
	if !ok {
		n, err := s.source(ctx, account)
		if err != nil {
			return err
		}
		nonce = n
	}

	if err := fn(ctx, nonce); err != nil {
		delete(s.next, account)
		return err
	}

	s.next[account] = nonce + 1
	return nil
}

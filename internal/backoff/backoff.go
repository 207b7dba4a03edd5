package backoff

import (
	"context"
	"math"
	"time"
)

type BackoffStrategy interface {
	GetBackoffDuration(int, time.Duration, time.Duration) time.Duration
}

type Backoff struct {
	LastDuration time.Duration
	NextDuration time.Duration
	start        time.Duration
	limit        time.Duration
	count        int
	strategy     BackoffStrategy
}

func NewBackoff(strategy BackoffStrategy, start time.Duration, limit time.Duration) *Backoff {
	backoff := Backoff{strategy: strategy, start: start, limit: limit}
	backoff.Reset()
	return &backoff
}

func (b *Backoff) Reset() {
	b.count = 0
	b.LastDuration = 0
	b.NextDuration = b.getNextDuration()
}

// Backoff sleeps for NextDuration or until ctx is done.
func (b *Backoff) Backoff(ctx context.Context) error {
	t := time.NewTimer(b.NextDuration)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}

	b.count++
	b.LastDuration = b.NextDuration
	b.NextDuration = b.getNextDuration()

	return nil
}

func (b *Backoff) Count() int {
	return b.count
}

func (b *Backoff) getNextDuration() time.Duration {
	backoff := b.strategy.GetBackoffDuration(b.count, b.start, b.LastDuration)
	if b.limit > 0 && backoff > b.limit {
		backoff = b.limit
	}
	return backoff
}

type exponential struct{}

func (exponential) GetBackoffDuration(backoffCount int, start time.Duration, lastBackoff time.Duration) time.Duration {
	period := int64(math.Pow(2, float64(backoffCount)))
	return time.Duration(period) * start
}

func NewExponential(start time.Duration, limit time.Duration) *Backoff {
	return NewBackoff(exponential{}, start, limit)
}

// Retry calls fn until it succeeds, fn reports the error as permanent, or attempts
// calls have been made. Only use it for operations that are safe to repeat.
func Retry(ctx context.Context, b *Backoff, attempts int, fn func() (permanent bool, err error)) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		var permanent bool
		permanent, err = fn()
		if err == nil || permanent {
			return err
		}

		if i == attempts-1 {
			break
		}

		if berr := b.Backoff(ctx); berr != nil {
			return err
		}
	}

	return err
}

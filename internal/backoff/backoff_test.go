package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponential(t *testing.T) {
	b := NewExponential(time.Millisecond, 4*time.Millisecond)

	expected := []time.Duration{
		time.Millisecond,
		2 * time.Millisecond,
		4 * time.Millisecond,
		4 * time.Millisecond,
	}

	for i, want := range expected {
		assert.Equal(t, want, b.NextDuration, "step %d", i)
		assert.NoError(t, b.Backoff(context.Background()))
	}

	b.Reset()
	assert.Equal(t, time.Millisecond, b.NextDuration)
	assert.Equal(t, 0, b.Count())
}

func TestBackoffCancelled(t *testing.T) {
	b := NewExponential(time.Hour, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, b.Backoff(ctx), context.Canceled)
	assert.Equal(t, 0, b.Count())
}

func TestRetry(t *testing.T) {
	errTransient := errors.New("transient")
	errPermanent := errors.New("permanent")

	t.Run("succeeds after transient errors", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), NewExponential(time.Millisecond, 0), 3, func() (bool, error) {
			calls++
			if calls < 3 {
				return false, errTransient
			}
			return false, nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after attempts", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), NewExponential(time.Millisecond, 0), 2, func() (bool, error) {
			calls++
			return false, errTransient
		})

		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 2, calls)
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), NewExponential(time.Millisecond, 0), 5, func() (bool, error) {
			calls++
			return true, errPermanent
		})

		assert.ErrorIs(t, err, errPermanent)
		assert.Equal(t, 1, calls)
	})
}

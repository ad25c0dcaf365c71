package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")
var errFatal = errors.New("fatal")

func fastPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   4 * time.Millisecond,
		Retryable:  func(err error) bool { return errors.Is(err, errTransient) },
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(4), func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_FatalErrorIsNotRetried(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(4), func(context.Context) error {
		calls++
		return errFatal
	})
	assert.ErrorIs(t, err, errFatal)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(2), func(context.Context) error {
		calls++
		return errTransient
	})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
}

func TestDo_NilPredicateNeverRetries(t *testing.T) {
	calls := 0
	p := Policy{MaxRetries: 4, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	err := Do(context.Background(), p, func(context.Context) error {
		calls++
		return errTransient
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelStopsWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{
		MaxRetries: 4,
		BaseDelay:  time.Hour,
		MaxDelay:   time.Hour,
		Retryable:  func(error) bool { return true },
	}
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, p, func(context.Context) error {
			calls++
			return errTransient
		})
	}()
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, errTransient, "the operation error is surfaced, not the context error")
		assert.Equal(t, 1, calls)
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
}

func TestDelay_ExponentialWithCap(t *testing.T) {
	p := Policy{BaseDelay: 500 * time.Millisecond, MaxDelay: 8 * time.Second}

	assert.Equal(t, 500*time.Millisecond, p.delay(0))
	assert.Equal(t, 1*time.Second, p.delay(1))
	assert.Equal(t, 2*time.Second, p.delay(2))
	assert.Equal(t, 4*time.Second, p.delay(3))
	assert.Equal(t, 8*time.Second, p.delay(4))
	assert.Equal(t, 8*time.Second, p.delay(10), "capped")
}

func TestDelay_JitterStaysInRange(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 8 * time.Second, Jitter: true}
	for i := 0; i < 200; i++ {
		d := p.delay(0)
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.Less(t, d, 1500*time.Millisecond)
	}
}

func TestDefaultPolicies(t *testing.T) {
	read := ReadPolicy(nil)
	write := WritePolicy(nil)
	assert.Greater(t, read.MaxRetries, write.MaxRetries, "reads get a higher retry budget than writes")
	assert.True(t, read.Jitter)
	assert.True(t, write.Jitter)
}

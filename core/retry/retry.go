package retry

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Policy bounds the retry behavior for one class of operations.
type Policy struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the exponential growth.
	MaxDelay time.Duration
	// Jitter multiplies each delay by a uniform random factor in
	// [0.5, 1.5), drawn from a cryptographically strong source so that
	// many concurrent workspace syncs do not produce correlated retry
	// storms.
	Jitter bool
	// Retryable distinguishes transient failures from fatal ones. A nil
	// predicate retries nothing.
	Retryable func(error) bool
}

// ReadPolicy returns the default policy for read operations.
func ReadPolicy(retryable func(error) bool) Policy {
	return Policy{
		MaxRetries: 4,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   8 * time.Second,
		Jitter:     true,
		Retryable:  retryable,
	}
}

// WritePolicy returns the default policy for mutating operations. The budget
// is deliberately smaller: retrying a non-idempotent create risks
// duplication, so callers should prefer find-or-create patterns where that
// matters.
func WritePolicy(retryable func(error) bool) Policy {
	return Policy{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   8 * time.Second,
		Jitter:     true,
		Retryable:  retryable,
	}
}

// Do runs op, retrying transient failures with exponential backoff until the
// policy budget is exhausted. The last error is returned unchanged, so
// callers can still inspect it. Waiting between attempts respects ctx.
func Do(ctx context.Context, p Policy, op func(context.Context) error) error {
	attempt := 0
	for {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if attempt >= p.MaxRetries || p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		if sleepErr := sleep(ctx, p.delay(attempt)); sleepErr != nil {
			return err
		}
		attempt++
	}
}

// delay computes the backoff for attempt n (0-indexed): min(cap, base*2^n),
// optionally jittered.
func (p Policy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt && d < p.MaxDelay; i++ {
		d *= 2
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter {
		d = time.Duration(float64(d) * (0.5 + randomFraction()))
	}
	return d
}

// randomFraction returns a uniform value in [0, 1) from crypto/rand.
func randomFraction() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Entropy exhaustion is effectively impossible; fall back to
		// the midpoint rather than failing the retry path.
		return 0.5
	}
	const mask = 1<<53 - 1
	return float64(binary.BigEndian.Uint64(buf[:])&mask) / (1 << 53)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

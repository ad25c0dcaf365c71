// Package retry wraps remote operations with bounded exponential backoff.
//
// The delay for attempt n (0-indexed) is min(MaxDelay, BaseDelay*2^n),
// optionally multiplied by a uniform random factor in [0.5, 1.5) drawn from
// crypto/rand. Which failures are worth retrying is the caller's call,
// supplied as a predicate; everything else is returned immediately.
//
// Reads get a larger budget than writes because writes are side-effecting.
package retry

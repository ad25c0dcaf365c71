package gtm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// APIError is a non-2xx response from the Tag Manager API.
type APIError struct {
	// StatusCode is the HTTP status.
	StatusCode int
	// Message is the error message from the response payload, if any.
	Message string
	// Reasons are the machine-readable reason codes from the payload.
	Reasons []string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gtm api error: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gtm api error: status %d", e.StatusCode)
}

// rateLimitReasons are the payload reason codes under which a 403 is a
// throttle rather than a permission denial.
var rateLimitReasons = map[string]struct{}{
	"rateLimitExceeded":     {},
	"userRateLimitExceeded": {},
	"quotaExceeded":         {},
	"dailyLimitExceeded":    {},
}

// IsRetryable reports whether an error is likely transient. Retryable: HTTP
// 429/500/502/503/504, transient network failures, and 403 only when the
// payload names a rate-limit reason — a plain 403 is a permission denial and
// fatal. Stale-fingerprint conflicts are never retryable.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		case http.StatusForbidden:
			for _, reason := range apiErr.Reasons {
				if _, ok := rateLimitReasons[reason]; ok {
					return true
				}
			}
			return false
		default:
			return false
		}
	}
	return isTransientNetError(err)
}

// IsNotAvailable reports whether an error means the requested resource
// category does not exist for this container type. The allowlist is kept
// narrow deliberately so unrelated failures still propagate.
func IsNotAvailable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusNotFound
}

// IsStaleFingerprint reports whether an update was rejected because the
// entity changed since its fingerprint was read. Such conflicts are fatal:
// rebasing and retrying would silently overwrite concurrent edits.
func IsStaleFingerprint(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == http.StatusPreconditionFailed {
		return true
	}
	for _, reason := range apiErr.Reasons {
		if reason == "conditionNotMet" {
			return true
		}
	}
	return false
}

func isTransientNetError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE)
}

// parseAPIError builds an APIError from a response body of the standard
// Google error envelope; a non-JSON body yields a bare status error.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Errors  []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Message = envelope.Error.Message
		for _, item := range envelope.Error.Errors {
			if item.Reason != "" {
				apiErr.Reasons = append(apiErr.Reasons, item.Reason)
			}
		}
	}
	return apiErr
}

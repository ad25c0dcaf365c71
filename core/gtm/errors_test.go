package gtm

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable_StatusCodes(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{504, true},
		{400, false},
		{401, false},
		{403, false},
		{404, false},
		{412, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			err := &APIError{StatusCode: tt.status}
			assert.Equal(t, tt.want, IsRetryable(err))
		})
	}
}

func TestIsRetryable_ForbiddenOnlyWithRateLimitReason(t *testing.T) {
	throttled := &APIError{StatusCode: 403, Reasons: []string{"rateLimitExceeded"}}
	assert.True(t, IsRetryable(throttled))

	denied := &APIError{StatusCode: 403, Reasons: []string{"insufficientPermissions"}}
	assert.False(t, IsRetryable(denied))

	bare := &APIError{StatusCode: 403}
	assert.False(t, IsRetryable(bare))
}

func TestIsRetryable_TransientNetworkErrors(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("write: %w", syscall.ECONNRESET)))
	assert.True(t, IsRetryable(fmt.Errorf("dial: %w", syscall.ECONNREFUSED)))
	assert.False(t, IsRetryable(errors.New("parse failure")))
}

func TestIsNotAvailable(t *testing.T) {
	assert.True(t, IsNotAvailable(&APIError{StatusCode: 400}))
	assert.True(t, IsNotAvailable(&APIError{StatusCode: 404}))
	assert.False(t, IsNotAvailable(&APIError{StatusCode: 403}))
	assert.False(t, IsNotAvailable(&APIError{StatusCode: 500}))
	assert.False(t, IsNotAvailable(errors.New("boom")))
}

func TestIsStaleFingerprint(t *testing.T) {
	assert.True(t, IsStaleFingerprint(&APIError{StatusCode: 412}))
	assert.True(t, IsStaleFingerprint(&APIError{StatusCode: 400, Reasons: []string{"conditionNotMet"}}))
	assert.False(t, IsStaleFingerprint(&APIError{StatusCode: 400}))
	assert.False(t, IsStaleFingerprint(errors.New("boom")))
}

func TestParseAPIError(t *testing.T) {
	body := []byte(`{"error":{"code":403,"message":"Quota exceeded","errors":[{"reason":"rateLimitExceeded"}]}}`)
	apiErr := parseAPIError(403, body)

	assert.Equal(t, 403, apiErr.StatusCode)
	assert.Equal(t, "Quota exceeded", apiErr.Message)
	assert.Equal(t, []string{"rateLimitExceeded"}, apiErr.Reasons)
	assert.Contains(t, apiErr.Error(), "Quota exceeded")
}

func TestParseAPIError_NonJSONBody(t *testing.T) {
	apiErr := parseAPIError(502, []byte("Bad Gateway"))
	assert.Equal(t, 502, apiErr.StatusCode)
	assert.Empty(t, apiErr.Message)
}

package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash computes the stable SHA-256 hex digest of a value. The value is
// stripped of dynamic fields and serialized to canonical JSON (object keys
// sorted) first, so the digest depends only on the logical content.
//
// Desired-state entities use this to pin externally-sourced content: when the
// declared pin no longer matches the live content at apply time, the update
// fails fast instead of silently overwriting.
func Hash(value any) (string, error) {
	canonical, err := json.Marshal(StripDynamic(value))
	if err != nil {
		return "", fmt.Errorf("cannot serialize value for hashing: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

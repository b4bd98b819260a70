package security

import "time"

// NewTestTokenProvider returns a TokenProvider with a fixed secret and short
// TTLs. For unit tests only.
func NewTestTokenProvider() *TokenProvider {
	return NewTokenProvider([]byte("unit-test-signing-secret"), "test-issuer", time.Hour, 168*time.Hour)
}

package auth

import (
	"crypto/rand"
	"encoding/hex"
)

const (
	DefaultAccessTokenExpiry  = 900    // 15 min
	DefaultRefreshTokenExpiry = 604800 // 7 days
)

// newRefreshToken returns an opaque, cryptographically random token.
// 32 bytes of entropy, hex encoded; all authority is looked up in the
// session registry.
func newRefreshToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

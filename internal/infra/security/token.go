package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// RandomTokenGenerator issues opaque session tokens from the OS entropy
// pool. Bytes is the raw length before encoding; zero means 32.
type RandomTokenGenerator struct {
	Bytes int
}

func (g RandomTokenGenerator) NewToken() (string, error) {
	n := g.Bytes
	if n <= 0 {
		n = 32
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token: entropy read failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

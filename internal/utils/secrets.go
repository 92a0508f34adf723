package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// SigningKeyPair holds freshly generated JWT signing keys. Access and
// refresh tokens must never share a key.
type SigningKeyPair struct {
	Access  string
	Refresh string
}

// RandomHex returns n random bytes, hex-encoded, from crypto/rand
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewSigningKeyPair generates a 256-bit key per token type
func NewSigningKeyPair() (SigningKeyPair, error) {
	access, err := RandomHex(32)
	if err != nil {
		return SigningKeyPair{}, fmt.Errorf("failed to generate access key: %w", err)
	}

	refresh, err := RandomHex(32)
	if err != nil {
		return SigningKeyPair{}, fmt.Errorf("failed to generate refresh key: %w", err)
	}

	return SigningKeyPair{Access: access, Refresh: refresh}, nil
}

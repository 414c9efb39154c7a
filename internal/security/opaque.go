package security

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateOpaqueToken returns 16 bytes of cryptographic randomness as a hex
// string. Used for invitation tokens and JWT jti values; unguessable but not
// meant to encode anything.
func GenerateOpaqueToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
